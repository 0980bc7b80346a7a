// Package object provides the dynamic object model: values, classes,
// instances, and installed members.
//
// This package is the foundational layer. All other packages import
// object; object imports nothing else in this module. Classes own a
// mutable member table shared with the registry layer, which is why the
// table and instance attributes carry their own locks.
//
// Key design constraints:
//   - Value and Member are sealed interfaces; the variant sets are closed
//   - Member names are NFC-normalized at declaration and lookup
//   - Builtin classes are protected: their member tables reject writes
//     before any mutation occurs
//   - Logical identity (instance IDs) comes from an IdentityGenerator,
//     never from wall-clock state
package object
