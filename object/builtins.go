package object

// Builtin classes are the protected identities of the value model. Each
// Value variant maps to exactly one of these singletons. Their member
// tables are permanently empty: SetMember and SetMembers fail with a
// PROTECTED_TYPE error before touching the table, and New refuses to
// instantiate them.
var (
	NullClass  = newBuiltin("Null")
	BoolClass  = newBuiltin("Bool")
	IntClass   = newBuiltin("Int")
	FloatClass = newBuiltin("Float")
	StrClass   = newBuiltin("Str")
	BytesClass = newBuiltin("Bytes")
	ListClass  = newBuiltin("List")
	MapClass   = newBuiltin("Map")
)

func newBuiltin(name string) *Class {
	return &Class{
		name:     name,
		builtin:  true,
		identity: UUIDGenerator{},
		members:  make(map[string]Member),
	}
}

// Builtins returns the protected builtin classes in a fixed order.
// The slice is a fresh copy each call.
func Builtins() []*Class {
	return []*Class{
		NullClass,
		BoolClass,
		IntClass,
		FloatClass,
		StrClass,
		BytesClass,
		ListClass,
		MapClass,
	}
}

// ClassOf returns the class of any Value. Instances report their own
// class; every other variant maps to its builtin singleton.
func ClassOf(v Value) *Class {
	switch val := v.(type) {
	case Null:
		return NullClass
	case Bool:
		return BoolClass
	case Int:
		return IntClass
	case Float:
		return FloatClass
	case Str:
		return StrClass
	case Bytes:
		return BytesClass
	case List:
		return ListClass
	case Map:
		return MapClass
	case *Instance:
		return val.Class()
	default:
		return nil
	}
}
