package object

import "golang.org/x/text/unicode/norm"

// Function signatures for member implementations. Each member kind binds
// its receiver differently, which is why the kinds carry distinct
// signatures instead of one generic shape.
type (
	// MethodFunc is an instance operation: receives the instance it was
	// invoked on.
	MethodFunc func(self *Instance, args []Value) (Value, error)

	// GetterFunc computes a property value from an instance.
	GetterFunc func(self *Instance) (Value, error)

	// SetterFunc applies an assignment through a property.
	SetterFunc func(self *Instance, value Value) error

	// ClassFunc is a type-bound operation: receives the class it was
	// accessed through, which may be a subclass of the declaring class.
	ClassFunc func(recv *Class, args []Value) (Value, error)

	// StaticFunc is a type-level operation: no receiver at all.
	StaticFunc func(args []Value) (Value, error)

	// InitFunc initializes a freshly created instance from constructor args.
	InitFunc func(self *Instance, args []Value) error
)

// MemberKind categorizes installed members.
type MemberKind string

const (
	// KindMethod is a plain instance operation.
	KindMethod MemberKind = "method"

	// KindProperty is a computed attribute with a getter and optional setter.
	KindProperty MemberKind = "property"

	// KindClassMethod is a type-bound operation (receiver is a class).
	KindClassMethod MemberKind = "classmethod"

	// KindStaticMethod is a type-level operation (no receiver).
	KindStaticMethod MemberKind = "staticmethod"
)

// ValidKinds defines the allowed member kind strings.
var ValidKinds = map[MemberKind]bool{
	KindMethod:       true,
	KindProperty:     true,
	KindClassMethod:  true,
	KindStaticMethod: true,
}

// Member is a sealed interface over installed member-table entries.
// Only Method, Property, ClassMethod, and StaticMethod implement this.
// An entry carries everything needed to dispatch an access; classification
// never has to be re-derived after installation.
type Member interface {
	Kind() MemberKind
	member() // Sealed - only these types implement it
}

// Method is an installed instance operation.
type Method struct {
	Fn MethodFunc
}

func (Method) member() {}

// Kind returns KindMethod.
func (Method) Kind() MemberKind { return KindMethod }

// Property is an installed computed attribute. Set == nil means the
// property is read-only and assignment through it fails.
type Property struct {
	Get GetterFunc
	Set SetterFunc
}

func (Property) member() {}

// Kind returns KindProperty.
func (Property) Kind() MemberKind { return KindProperty }

// ReadOnly reports whether the property rejects assignment.
func (p Property) ReadOnly() bool { return p.Set == nil }

// ClassMethod is an installed type-bound operation.
type ClassMethod struct {
	Fn ClassFunc
}

func (ClassMethod) member() {}

// Kind returns KindClassMethod.
func (ClassMethod) Kind() MemberKind { return KindClassMethod }

// StaticMethod is an installed type-level operation.
type StaticMethod struct {
	Fn StaticFunc
}

func (StaticMethod) member() {}

// Kind returns KindStaticMethod.
func (StaticMethod) Kind() MemberKind { return KindStaticMethod }

// NamedMember pairs a member with its table name, for ordered bulk installs.
type NamedMember struct {
	Name   string
	Member Member
}

// CanonicalName returns the NFC-normalized form of a member or attribute
// name. All member-table keys and lookups go through this, so composed
// and decomposed spellings of the same name cannot create distinct entries.
func CanonicalName(name string) string {
	return norm.NFC.String(name)
}
