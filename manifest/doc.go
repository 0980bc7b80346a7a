// Package manifest compiles bundle manifests written in CUE and binds
// them to Go implementations.
//
// A manifest declares what a bundle installs - member names, kinds, doc
// strings, property mutability - without any implementation:
//
//	bundle: UserExtras: {
//		doc: "Members a user gains after onboarding."
//		member: make_older: {kind: "method"}
//		member: display: {kind: "property", readonly: true}
//		member: create_adult: {kind: "classmethod"}
//		member: validate_age: {kind: "staticmethod"}
//	}
//
// Compile turns the CUE into a Manifest; Bind joins the Manifest with
// an Impls table into a ready trait.Bundle, erroring on any mismatch
// between declaration and implementation: declared-but-unbound members,
// bound-but-undeclared implementations, implementations supplied under
// the wrong kind, and setters on read-only properties.
//
// Manifests are compiled from source strings. Reading manifest files
// from disk is the caller's concern; test fixtures keep theirs under
// testdata.
package manifest
