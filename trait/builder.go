package trait

import (
	"errors"
	"fmt"

	"github.com/roach88/graft/object"
)

// ValidationError represents a builder validation error with field path
// and message.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Builder accumulates member declarations for a bundle.
//
// Declarations are kind-explicit: each chainable method declares one
// member of one kind. Add accepts a fully populated MemberDecl when a
// doc string or other field is needed.
//
// Build validates everything at once and returns an immutable Bundle.
type Builder struct {
	name  string
	root  *Bundle
	decls []MemberDecl
}

// NewBuilder creates a builder for a bundle with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Extends sets the root bundle. Members declared on the root chain are
// not part of the built bundle's own members.
func (b *Builder) Extends(root *Bundle) *Builder {
	b.root = root
	return b
}

// Add appends any member declaration.
func (b *Builder) Add(decl MemberDecl) *Builder {
	b.decls = append(b.decls, decl)
	return b
}

// Method declares an instance operation.
func (b *Builder) Method(name string, fn object.MethodFunc) *Builder {
	return b.Add(MethodDecl{Name: name, Fn: fn})
}

// Property declares a computed attribute. set may be nil for a
// read-only property.
func (b *Builder) Property(name string, get object.GetterFunc, set object.SetterFunc) *Builder {
	return b.Add(PropertyDecl{Name: name, Get: get, Set: set})
}

// ClassMethod declares a type-bound operation.
func (b *Builder) ClassMethod(name string, fn object.ClassFunc) *Builder {
	return b.Add(ClassMethodDecl{Name: name, Fn: fn})
}

// StaticMethod declares a type-level operation.
func (b *Builder) StaticMethod(name string, fn object.StaticFunc) *Builder {
	return b.Add(StaticMethodDecl{Name: name, Fn: fn})
}

// Validate checks the accumulated declarations against bundle rules.
// Returns all errors (not fail-fast) for better developer experience.
func (b *Builder) Validate() []ValidationError {
	var errs []ValidationError

	if b.name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "bundle name is required",
		})
	}

	seen := make(map[string]bool)
	for i, d := range b.decls {
		field := fmt.Sprintf("members[%d]", i)

		name := d.DeclName()
		if name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "member name is required",
			})
		} else {
			key := object.CanonicalName(name)
			if seen[key] {
				errs = append(errs, ValidationError{
					Field:   field + ".name",
					Message: fmt.Sprintf("duplicate member name: %q", name),
				})
			}
			seen[key] = true
		}

		switch decl := d.(type) {
		case MethodDecl:
			if decl.Fn == nil {
				errs = append(errs, ValidationError{
					Field:   field + ".fn",
					Message: fmt.Sprintf("method %q has no implementation", name),
				})
			}
		case PropertyDecl:
			if decl.Get == nil {
				errs = append(errs, ValidationError{
					Field:   field + ".get",
					Message: fmt.Sprintf("property %q requires a getter", name),
				})
			}
		case ClassMethodDecl:
			if decl.Fn == nil {
				errs = append(errs, ValidationError{
					Field:   field + ".fn",
					Message: fmt.Sprintf("classmethod %q has no implementation", name),
				})
			}
		case StaticMethodDecl:
			if decl.Fn == nil {
				errs = append(errs, ValidationError{
					Field:   field + ".fn",
					Message: fmt.Sprintf("staticmethod %q has no implementation", name),
				})
			}
		}
	}

	return errs
}

// Build validates the declarations and returns the immutable bundle.
// An empty bundle (no declarations) is valid; registering it is a no-op.
func (b *Builder) Build() (*Bundle, error) {
	if errs := b.Validate(); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("bundle %q: %w", b.name, errors.Join(joined...))
	}

	decls := make([]MemberDecl, len(b.decls))
	copy(decls, b.decls)

	return &Bundle{
		name:  b.name,
		root:  b.root,
		decls: decls,
	}, nil
}
