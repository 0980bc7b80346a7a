package trait

import "github.com/roach88/graft/object"

// Bundle is an immutable, validated collection of member declarations,
// optionally extending a root bundle. Build one with Builder.
type Bundle struct {
	name  string
	root  *Bundle
	decls []MemberDecl // declaration order
}

// Name returns the bundle name.
func (b *Bundle) Name() string {
	return b.name
}

// Root returns the bundle this one extends, or nil.
func (b *Bundle) Root() *Bundle {
	return b.root
}

// Len returns the number of declared members, own or not.
func (b *Bundle) Len() int {
	return len(b.decls)
}

// Members returns all declarations in declaration order, including
// any that shadow the root. The slice is a fresh copy.
func (b *Bundle) Members() []MemberDecl {
	out := make([]MemberDecl, len(b.decls))
	copy(out, b.decls)
	return out
}

// Member looks up a declaration by name (NFC-normalized comparison).
func (b *Bundle) Member(name string) (MemberDecl, bool) {
	key := object.CanonicalName(name)
	for _, d := range b.decls {
		if object.CanonicalName(d.DeclName()) == key {
			return d, true
		}
	}
	return nil, false
}

// OwnMembers returns the bundle's own declarations in declaration
// order: those whose names are not declared anywhere on the root
// chain. This is the set a registration transplants.
//
// The difference is asymmetric by name: a declaration that shares its
// name with a root declaration is excluded even though the bundle
// redeclares it. Overrides of root members therefore do not transplant.
func (b *Bundle) OwnMembers() []MemberDecl {
	if b.root == nil {
		return b.Members()
	}

	inherited := b.root.visibleNames()
	own := make([]MemberDecl, 0, len(b.decls))
	for _, d := range b.decls {
		if !inherited[object.CanonicalName(d.DeclName())] {
			own = append(own, d)
		}
	}
	return own
}

// visibleNames collects the normalized names declared on this bundle
// and its whole root chain.
func (b *Bundle) visibleNames() map[string]bool {
	names := make(map[string]bool)
	for cur := b; cur != nil; cur = cur.root {
		for _, d := range cur.decls {
			names[object.CanonicalName(d.DeclName())] = true
		}
	}
	return names
}
