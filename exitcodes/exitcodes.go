// Package exitcodes defines the standard exit codes used by testgate.
package exitcodes

// Exit code constants used by testgate
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when all suites and quality gates pass
// * GateFailure (1): Used when one or more suites or quality gates fail
// * RuntimeErr (2): Used for runtime errors such as panics, bad configuration or other failures
const (
	Success     = 0 // All suites and gates pass
	GateFailure = 1 // Suite or gate failures
	RuntimeErr  = 2 // Runtime or configuration errors
)
