// Package preflight checks that the machine can run tmbliss before a long
// walk or a service install.
//
// The package validates:
//   - every root is a readable directory
//   - the marker store can set, read back and clear a mark
//   - the tmutil binary is present when the tmutil store is used
//   - the file descriptor limit (minimum 1024)
//   - the inotify watch limit when watching on Linux
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, preflight.Target{Roots: roots, Store: store})
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
