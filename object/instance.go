package object

import (
	"fmt"
	"slices"
	"sync"
)

// Instance is an object of a user-defined class: an identity plus an
// attribute map. Behavior comes from the class's member table, so
// members installed after the instance was created are visible to it
// immediately.
//
// Thread-safety: the attribute map carries its own RWMutex. Member
// dispatch reads the class table under the class's lock.
type Instance struct {
	id    string
	class *Class

	mu    sync.RWMutex
	attrs map[string]Value
}

func (*Instance) value() {}

// ID returns the instance identity.
func (i *Instance) ID() string {
	return i.id
}

// Class returns the class the instance was created from.
func (i *Instance) Class() *Class {
	return i.class
}

// Attr reads a raw attribute, bypassing properties.
func (i *Instance) Attr(name string) (Value, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	v, ok := i.attrs[CanonicalName(name)]
	return v, ok
}

// SetAttr writes a raw attribute, bypassing properties.
func (i *Instance) SetAttr(name string, v Value) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.attrs[CanonicalName(name)] = v
}

// AttrNames returns the attribute names in sorted order.
func (i *Instance) AttrNames() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	names := make([]string, 0, len(i.attrs))
	for name := range i.attrs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// snapshotAttrs copies the attribute map for deterministic encoding.
func (i *Instance) snapshotAttrs() Map {
	i.mu.RLock()
	defer i.mu.RUnlock()

	snap := make(Map, len(i.attrs))
	for k, v := range i.attrs {
		snap[k] = v
	}
	return snap
}

// Get reads an attribute or property.
//
// Resolution order: a property on the class chain wins over a stored
// attribute; otherwise the stored attribute is returned. A name that
// resolves only to an operation member fails with NOT_A_PROPERTY -
// operations are invoked with Call, not read as fields.
func (i *Instance) Get(name string) (Value, error) {
	if m, _, ok := i.class.ResolveMember(name); ok {
		if p, isProp := m.(Property); isProp {
			v, err := p.Get(i)
			if err != nil {
				return nil, fmt.Errorf("get %s.%s: %w", i.class.Name(), name, err)
			}
			return v, nil
		}
		if v, ok := i.Attr(name); ok {
			return v, nil
		}
		return nil, NewNotAPropertyError(i.class.Name(), name)
	}

	if v, ok := i.Attr(name); ok {
		return v, nil
	}
	return nil, NewUnknownAttributeError(i.class.Name(), name)
}

// Set writes an attribute or assigns through a property.
//
// A property on the class chain intercepts the write: its setter runs,
// or the assignment fails with READ_ONLY_PROPERTY when it has none.
// Any other name writes a plain attribute, shadowing operation members
// of the same name for Get (not for Call, which resolves members only).
func (i *Instance) Set(name string, v Value) error {
	if m, _, ok := i.class.ResolveMember(name); ok {
		if p, isProp := m.(Property); isProp {
			if p.Set == nil {
				return NewReadOnlyPropertyError(i.class.Name(), name)
			}
			if err := p.Set(i, v); err != nil {
				return fmt.Errorf("set %s.%s: %w", i.class.Name(), name, err)
			}
			return nil
		}
	}

	i.SetAttr(name, v)
	return nil
}

// Call invokes an operation member through the instance.
//
// Instance operations receive this instance. Type-bound operations
// receive the instance's class - the dynamic type, so an instance of a
// subclass binds the subclass. Type-level operations receive nothing;
// invoking them through an instance is allowed and behaves identically
// to invoking them through the class. Properties are not callable.
func (i *Instance) Call(name string, args ...Value) (Value, error) {
	m, _, ok := i.class.ResolveMember(name)
	if !ok {
		return nil, NewUnknownMemberError(i.class.Name(), name)
	}

	switch m := m.(type) {
	case Method:
		return m.Fn(i, args)
	case ClassMethod:
		return m.Fn(i.class, args)
	case StaticMethod:
		return m.Fn(args)
	case Property:
		return nil, NewNotCallableError(i.class.Name(), name)
	default:
		return nil, fmt.Errorf("unknown member type: %T", m)
	}
}
