// Package registry attaches extension bundles to classes.
//
// Register is the single entry point: it takes a target class and a
// bundle, computes the bundle's own members, converts each declaration
// into its installed form with the receiver re-bound for its kind, and
// writes the whole batch into the target's member table at once.
//
// The only defined failure is the protected-target violation: builtin
// classes reject registration before the bundle is even inspected, so
// the failure is deterministic for every bundle, including nil. Once
// the guard passes there is no failure point left - a registration
// either happens completely or not at all.
//
// Registering the same bundle twice is idempotent. Registering two
// bundles that declare the same member name leaves the later one in
// the table (last registration wins). An empty bundle, or one whose
// declarations all shadow its root, installs nothing.
//
// Each successful installation is recorded in a journal stamped by a
// monotonic logical clock; Applied returns the records for inspection.
package registry
