package object

import (
	"fmt"
	"slices"
	"sync"
)

// Class is a named type whose behavior lives in a mutable member table.
//
// The member table is shared state: the registry layer installs new
// members into it after the class is defined. All reads and writes of
// the table go through the class's RWMutex.
//
// Thread-safety model:
//   - Member/ResolveMember/MemberNames: safe from any goroutine (RLock)
//   - SetMember/SetMembers: safe from any goroutine (Lock); bulk installs
//     hold one write lock for the whole batch
//   - New/Call: safe from any goroutine
//
// INVARIANTS:
//   - builtin classes never accept member-table writes
//   - member names are NFC-normalized before they become table keys
//   - the base chain is fixed at construction and never mutated
type Class struct {
	name     string
	base     *Class
	builtin  bool
	init     InitFunc
	identity IdentityGenerator

	mu      sync.RWMutex
	members map[string]Member
}

// ClassOption allows configuration of class construction.
type ClassOption func(*Class)

// WithBase sets the immediate base class. Member lookups that miss on
// this class continue up the base chain.
func WithBase(base *Class) ClassOption {
	return func(c *Class) {
		c.base = base
	}
}

// WithInit sets the initializer run by New.
func WithInit(fn InitFunc) ClassOption {
	return func(c *Class) {
		c.init = fn
	}
}

// WithIdentity sets the instance ID generator.
//
// Default: UUIDGenerator (UUIDv7).
// Tests use a deterministic sequential generator for reproducible IDs.
func WithIdentity(gen IdentityGenerator) ClassOption {
	return func(c *Class) {
		c.identity = gen
	}
}

// WithMethod declares a native instance operation on the class.
func WithMethod(name string, fn MethodFunc) ClassOption {
	return func(c *Class) {
		c.members[CanonicalName(name)] = Method{Fn: fn}
	}
}

// WithProperty declares a native property on the class. set may be nil
// for a read-only property.
func WithProperty(name string, get GetterFunc, set SetterFunc) ClassOption {
	return func(c *Class) {
		c.members[CanonicalName(name)] = Property{Get: get, Set: set}
	}
}

// WithClassMethod declares a native type-bound operation on the class.
func WithClassMethod(name string, fn ClassFunc) ClassOption {
	return func(c *Class) {
		c.members[CanonicalName(name)] = ClassMethod{Fn: fn}
	}
}

// WithStaticMethod declares a native type-level operation on the class.
func WithStaticMethod(name string, fn StaticFunc) ClassOption {
	return func(c *Class) {
		c.members[CanonicalName(name)] = StaticMethod{Fn: fn}
	}
}

// NewClass creates a user-defined class.
//
// Options declare native members, the base class, the initializer, and
// the identity generator. Classes created here are never builtin; the
// protected builtin classes are package-level singletons.
func NewClass(name string, opts ...ClassOption) *Class {
	c := &Class{
		name:     name,
		identity: UUIDGenerator{},
		members:  make(map[string]Member),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the class name.
func (c *Class) Name() string {
	return c.name
}

// Base returns the immediate base class, or nil.
func (c *Class) Base() *Class {
	return c.base
}

// Builtin reports whether the class is a protected builtin.
func (c *Class) Builtin() bool {
	return c.builtin
}

// IsSubclassOf reports whether other is c or appears on c's base chain.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.base {
		if cur == other {
			return true
		}
	}
	return false
}

// Member looks up a member on this class only (no base chain).
func (c *Class) Member(name string) (Member, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.members[CanonicalName(name)]
	return m, ok
}

// ResolveMember looks up a member on this class and then up the base
// chain. Returns the member and the class that defines it.
func (c *Class) ResolveMember(name string) (Member, *Class, bool) {
	key := CanonicalName(name)
	for cur := c; cur != nil; cur = cur.base {
		cur.mu.RLock()
		m, ok := cur.members[key]
		cur.mu.RUnlock()
		if ok {
			return m, cur, true
		}
	}
	return nil, nil, false
}

// MemberNames returns this class's own member names in sorted order.
func (c *Class) MemberNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.members))
	for name := range c.members {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SetMember installs or replaces a single member. Installing over an
// existing name replaces it (last write wins).
//
// Fails with a PROTECTED_TYPE error before any mutation if the class is
// a builtin.
func (c *Class) SetMember(name string, m Member) error {
	if c.builtin {
		return NewProtectedTypeError(c.name)
	}
	if m == nil {
		return fmt.Errorf("nil member for %q", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.members[CanonicalName(name)] = m
	return nil
}

// SetMembers installs a batch of members under one write lock, in slice
// order. The batch is checked up front; after the check passes, the
// whole batch is installed with no intermediate failure point.
func (c *Class) SetMembers(members []NamedMember) error {
	if c.builtin {
		return NewProtectedTypeError(c.name)
	}
	for i, nm := range members {
		if nm.Member == nil {
			return fmt.Errorf("nil member at index %d (%q)", i, nm.Name)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, nm := range members {
		c.members[CanonicalName(nm.Name)] = nm.Member
	}
	return nil
}

// resolveInit returns the initializer for this class: its own, or the
// nearest one up the base chain.
func (c *Class) resolveInit() InitFunc {
	for cur := c; cur != nil; cur = cur.base {
		if cur.init != nil {
			return cur.init
		}
	}
	return nil
}

// New creates an instance of the class and runs the initializer with
// the given args. Initializers are inherited: a subclass without its
// own uses the nearest one up the base chain. Builtin classes are not
// instantiable; their values exist independently of any instance.
func (c *Class) New(args ...Value) (*Instance, error) {
	if c.builtin {
		return nil, NewNotInstantiableError(c.name, "builtin class is not instantiable")
	}

	init := c.resolveInit()
	if init == nil && len(args) > 0 {
		return nil, NewNotInstantiableError(c.name,
			fmt.Sprintf("class has no initializer; got %d constructor args", len(args)))
	}

	inst := &Instance{
		id:    c.identity.NewID(),
		class: c,
		attrs: make(map[string]Value),
	}

	if init != nil {
		if err := init(inst, args); err != nil {
			return nil, fmt.Errorf("init %s: %w", c.name, err)
		}
	}
	return inst, nil
}

// Call invokes a member through the class itself.
//
// Type-bound operations receive this class as their receiver, even when
// the member is defined on a base: the receiver follows the access
// path, not the declaration site. Type-level operations receive no
// receiver. Instance operations and properties are instance-accessed
// and fail here.
func (c *Class) Call(name string, args ...Value) (Value, error) {
	m, _, ok := c.ResolveMember(name)
	if !ok {
		return nil, NewUnknownMemberError(c.name, name)
	}

	switch m := m.(type) {
	case ClassMethod:
		return m.Fn(c, args)
	case StaticMethod:
		return m.Fn(args)
	case Method:
		return nil, NewBadReceiverError(c.name, name, "instance operation requires an instance receiver")
	case Property:
		return nil, NewBadReceiverError(c.name, name, "property is read through an instance")
	default:
		return nil, fmt.Errorf("unknown member type: %T", m)
	}
}
