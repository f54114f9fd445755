// Package runner executes suites as isolated external processes and
// schedules them either serially or across a bounded worker pool. The
// executor never lets a suite failure escape as an error; every execution
// produces exactly one SuiteResult.
package runner
