package trait

import "github.com/roach88/graft/object"

// MemberDecl is a sealed interface over bundle member declarations.
// Only MethodDecl, PropertyDecl, ClassMethodDecl, and StaticMethodDecl
// implement this. The kind is part of the declaration itself, never
// derived from the implementation's runtime shape.
type MemberDecl interface {
	// DeclName returns the declared member name (not normalized).
	DeclName() string

	// DeclKind returns the member kind this declaration installs as.
	DeclKind() object.MemberKind

	memberDecl() // Sealed - only these types implement it
}

// MethodDecl declares an instance operation.
type MethodDecl struct {
	Name string
	Doc  string
	Fn   object.MethodFunc
}

func (MethodDecl) memberDecl() {}

// DeclName returns the declared member name.
func (d MethodDecl) DeclName() string { return d.Name }

// DeclKind returns KindMethod.
func (MethodDecl) DeclKind() object.MemberKind { return object.KindMethod }

// PropertyDecl declares a computed attribute. Get is required; a nil
// Set declares the property read-only.
type PropertyDecl struct {
	Name string
	Doc  string
	Get  object.GetterFunc
	Set  object.SetterFunc
}

func (PropertyDecl) memberDecl() {}

// DeclName returns the declared member name.
func (d PropertyDecl) DeclName() string { return d.Name }

// DeclKind returns KindProperty.
func (PropertyDecl) DeclKind() object.MemberKind { return object.KindProperty }

// ClassMethodDecl declares a type-bound operation. At installation the
// registry re-binds the receiver to the registration target, so the
// implementation always sees the class it was installed on (or a
// subclass it was accessed through), never the bundle.
type ClassMethodDecl struct {
	Name string
	Doc  string
	Fn   object.ClassFunc
}

func (ClassMethodDecl) memberDecl() {}

// DeclName returns the declared member name.
func (d ClassMethodDecl) DeclName() string { return d.Name }

// DeclKind returns KindClassMethod.
func (ClassMethodDecl) DeclKind() object.MemberKind { return object.KindClassMethod }

// StaticMethodDecl declares a type-level operation with no receiver.
type StaticMethodDecl struct {
	Name string
	Doc  string
	Fn   object.StaticFunc
}

func (StaticMethodDecl) memberDecl() {}

// DeclName returns the declared member name.
func (d StaticMethodDecl) DeclName() string { return d.Name }

// DeclKind returns KindStaticMethod.
func (StaticMethodDecl) DeclKind() object.MemberKind { return object.KindStaticMethod }
