package manifest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/graft/object"
	"github.com/roach88/graft/trait"
)

// Impls supplies Go implementations for a manifest's members, keyed by
// member name under the member's kind. Setters ride alongside getters
// for writable properties.
type Impls struct {
	Methods       map[string]object.MethodFunc
	Getters       map[string]object.GetterFunc
	Setters       map[string]object.SetterFunc
	ClassMethods  map[string]object.ClassFunc
	StaticMethods map[string]object.StaticFunc
}

// BindError represents one declaration/implementation mismatch.
type BindError struct {
	Member  string
	Message string
}

func (e BindError) Error() string {
	return fmt.Sprintf("%s: %s", e.Member, e.Message)
}

// Bind joins a compiled manifest with implementations into a ready
// bundle. root supplies the bundle named by the manifest's root field
// and must be nil when the manifest declares none.
//
// Every mismatch is reported, not just the first: members declared but
// not implemented, implementations for undeclared members or under the
// wrong kind, setters on read-only properties, and missing setters on
// writable ones.
func Bind(m *Manifest, root *trait.Bundle, impls Impls) (*trait.Bundle, error) {
	if m == nil {
		return nil, fmt.Errorf("nil manifest")
	}

	var errs []BindError

	switch {
	case m.Root == "" && root != nil:
		errs = append(errs, BindError{
			Member:  "root",
			Message: fmt.Sprintf("manifest declares no root but bundle %q was supplied", root.Name()),
		})
	case m.Root != "" && root == nil:
		errs = append(errs, BindError{
			Member:  "root",
			Message: fmt.Sprintf("manifest declares root %q but no root bundle was supplied", m.Root),
		})
	case m.Root != "" && root.Name() != m.Root:
		errs = append(errs, BindError{
			Member:  "root",
			Message: fmt.Sprintf("manifest declares root %q but bundle %q was supplied", m.Root, root.Name()),
		})
	}

	builder := trait.NewBuilder(m.Name)
	if root != nil {
		builder.Extends(root)
	}

	// Track which implementations get consumed; leftovers are errors.
	used := struct {
		methods, getters, setters, classMethods, staticMethods map[string]bool
	}{
		methods:       make(map[string]bool),
		getters:       make(map[string]bool),
		setters:       make(map[string]bool),
		classMethods:  make(map[string]bool),
		staticMethods: make(map[string]bool),
	}

	for _, sig := range m.Members {
		switch sig.Kind {
		case object.KindMethod:
			fn, ok := impls.Methods[sig.Name]
			if !ok {
				errs = append(errs, BindError{
					Member:  sig.Name,
					Message: "declared as method but no method implementation bound",
				})
				continue
			}
			used.methods[sig.Name] = true
			builder.Add(trait.MethodDecl{Name: sig.Name, Doc: sig.Doc, Fn: fn})

		case object.KindProperty:
			get, ok := impls.Getters[sig.Name]
			if !ok {
				errs = append(errs, BindError{
					Member:  sig.Name,
					Message: "declared as property but no getter bound",
				})
				continue
			}
			used.getters[sig.Name] = true

			set, hasSet := impls.Setters[sig.Name]
			switch {
			case sig.ReadOnly && hasSet:
				errs = append(errs, BindError{
					Member:  sig.Name,
					Message: "declared readonly but a setter was bound",
				})
				continue
			case !sig.ReadOnly && !hasSet:
				errs = append(errs, BindError{
					Member:  sig.Name,
					Message: "declared writable but no setter bound (declare readonly: true or bind a setter)",
				})
				continue
			}
			if hasSet {
				used.setters[sig.Name] = true
			}
			builder.Add(trait.PropertyDecl{Name: sig.Name, Doc: sig.Doc, Get: get, Set: set})

		case object.KindClassMethod:
			fn, ok := impls.ClassMethods[sig.Name]
			if !ok {
				errs = append(errs, BindError{
					Member:  sig.Name,
					Message: "declared as classmethod but no classmethod implementation bound",
				})
				continue
			}
			used.classMethods[sig.Name] = true
			builder.Add(trait.ClassMethodDecl{Name: sig.Name, Doc: sig.Doc, Fn: fn})

		case object.KindStaticMethod:
			fn, ok := impls.StaticMethods[sig.Name]
			if !ok {
				errs = append(errs, BindError{
					Member:  sig.Name,
					Message: "declared as staticmethod but no staticmethod implementation bound",
				})
				continue
			}
			used.staticMethods[sig.Name] = true
			builder.Add(trait.StaticMethodDecl{Name: sig.Name, Doc: sig.Doc, Fn: fn})
		}
	}

	errs = append(errs, leftoverErrors("method", keysNotIn(impls.Methods, used.methods))...)
	errs = append(errs, leftoverErrors("getter", keysNotIn(impls.Getters, used.getters))...)
	errs = append(errs, leftoverErrors("setter", keysNotIn(impls.Setters, used.setters))...)
	errs = append(errs, leftoverErrors("classmethod", keysNotIn(impls.ClassMethods, used.classMethods))...)
	errs = append(errs, leftoverErrors("staticmethod", keysNotIn(impls.StaticMethods, used.staticMethods))...)

	if len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("bind %q: %w", m.Name, errors.Join(joined...))
	}

	bundle, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("bind %q: %w", m.Name, err)
	}
	return bundle, nil
}

// keysNotIn returns the map's keys that were not consumed, sorted for
// deterministic error output.
func keysNotIn[V any](impls map[string]V, used map[string]bool) []string {
	var leftover []string
	for name := range impls {
		if !used[name] {
			leftover = append(leftover, name)
		}
	}
	slices.Sort(leftover)
	return leftover
}

func leftoverErrors(role string, names []string) []BindError {
	errs := make([]BindError, 0, len(names))
	for _, name := range names {
		errs = append(errs, BindError{
			Member:  name,
			Message: fmt.Sprintf("%s implementation bound but not declared in the manifest (or declared under another kind)", role),
		})
	}
	return errs
}
