package registry

import (
	"fmt"

	"github.com/roach88/graft/object"
	"github.com/roach88/graft/trait"
)

// classify maps a declaration to the member kind it installs as.
//
// Precedence: type-bound first, then type-level, then property, then
// instance method as the default. The sealed declaration variants make
// the arms mutually exclusive, so the order cannot change the outcome;
// it is kept as the canonical reading order for the four kinds.
func classify(decl trait.MemberDecl) (object.MemberKind, error) {
	switch decl.(type) {
	case trait.ClassMethodDecl:
		return object.KindClassMethod, nil
	case trait.StaticMethodDecl:
		return object.KindStaticMethod, nil
	case trait.PropertyDecl:
		return object.KindProperty, nil
	case trait.MethodDecl:
		return object.KindMethod, nil
	default:
		return "", fmt.Errorf("unknown member declaration type: %T", decl)
	}
}

// bind converts a declaration into its installed form for the given
// target, re-binding the receiver per kind:
//
//   - instance methods and properties install as declared; their
//     receiver is always the instance they are accessed through
//   - type-bound operations are wrapped so the receiver can never be
//     anything but the target or the class the access came through
//   - type-level operations install as declared; they have no receiver
func bind(target *object.Class, decl trait.MemberDecl) (object.Member, error) {
	switch d := decl.(type) {
	case trait.ClassMethodDecl:
		return object.ClassMethod{Fn: rebindClassMethod(target, d.Fn)}, nil
	case trait.StaticMethodDecl:
		return object.StaticMethod{Fn: d.Fn}, nil
	case trait.PropertyDecl:
		return object.Property{Get: d.Get, Set: d.Set}, nil
	case trait.MethodDecl:
		return object.Method{Fn: d.Fn}, nil
	default:
		return nil, fmt.Errorf("unknown member declaration type: %T", decl)
	}
}

// rebindClassMethod captures the registration target as the fallback
// receiver. Dispatch through a class passes that class (a subclass of
// the target binds the subclass); a direct invocation with no class
// context binds the target itself. The declaring bundle is never a
// receiver.
func rebindClassMethod(target *object.Class, fn object.ClassFunc) object.ClassFunc {
	return func(recv *object.Class, args []object.Value) (object.Value, error) {
		if recv == nil {
			recv = target
		}
		return fn(recv, args)
	}
}

// buildPlan converts the bundle's own declarations into an ordered
// install batch. Nothing is written here: a plan either builds
// completely or the registration fails with the table untouched.
func buildPlan(target *object.Class, decls []trait.MemberDecl) ([]object.NamedMember, []InstalledMember, error) {
	plan := make([]object.NamedMember, 0, len(decls))
	installed := make([]InstalledMember, 0, len(decls))

	for _, d := range decls {
		kind, err := classify(d)
		if err != nil {
			return nil, nil, err
		}
		m, err := bind(target, d)
		if err != nil {
			return nil, nil, err
		}
		name := object.CanonicalName(d.DeclName())
		plan = append(plan, object.NamedMember{Name: name, Member: m})
		installed = append(installed, InstalledMember{Name: name, Kind: kind})
	}
	return plan, installed, nil
}
