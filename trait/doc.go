// Package trait declares extension bundles: named collections of
// members waiting to be attached to a class by the registry.
//
// A bundle is a declaration-time manifest. Each member is declared with
// an explicit kind - instance method, property, classmethod, or
// staticmethod - as one of the sealed MemberDecl variants, so the
// registry never has to infer a member's kind from its runtime shape,
// and a member can never sit in two kinds at once.
//
// A bundle may extend a root bundle. The root's declarations are not
// part of the bundle's own members: OwnMembers returns the asymmetric
// difference, which is exactly the set a registration transplants.
// One edge follows from the difference being name-based: a name
// declared on both the bundle and its root is excluded from
// OwnMembers, so redeclaring a root member does not transplant the
// override.
//
// Bundles are built with Builder and are immutable after Build.
// Validation collects all errors rather than failing fast.
package trait
