package harness

import (
	"fmt"

	"github.com/roach88/graft/object"
	"github.com/roach88/graft/trait"
)

// Fixtures holds the classes and bundles one scenario runs against.
// Scenarios reference both by name.
type Fixtures struct {
	Classes map[string]*object.Class
	Bundles map[string]*trait.Bundle
}

// Catalog maps fixture-set names to constructors.
//
// Each Run builds a fresh fixture set through the constructor, so
// registrations in one scenario never leak into another. The identity
// generator parameter lets the harness substitute deterministic
// instance IDs for golden comparison.
type Catalog map[string]func(ids object.IdentityGenerator) (*Fixtures, error)

// DefaultCatalog returns the standard conformance vocabulary: a User
// class with a native years_until_death property, an Admin subclass,
// and the bundles referenced by the scenarios under testdata/scenarios.
//
// Builtin classes (Int, Str, ...) need no catalog entry; class names
// resolve against them when the fixture set has no match.
func DefaultCatalog() Catalog {
	return Catalog{
		"user": userFixtures,
	}
}

// userFixtures builds the User fixture set.
//
// User(name, age) stores both arguments as attributes and answers
// years_until_death as 100 - age. The bundles override or extend it:
//
//   - ExtendedLifespan: years_until_death becomes 200 - age
//   - UserExtras: one member of every kind
//   - EmptyBundle: no members, registers as a no-op
func userFixtures(ids object.IdentityGenerator) (*Fixtures, error) {
	user := object.NewClass("User",
		object.WithIdentity(ids),
		object.WithInit(func(self *object.Instance, args []object.Value) error {
			if len(args) != 2 {
				return fmt.Errorf("User(name, age) takes 2 arguments, got %d", len(args))
			}
			self.SetAttr("name", args[0])
			self.SetAttr("age", args[1])
			return nil
		}),
		object.WithProperty("years_until_death", func(self *object.Instance) (object.Value, error) {
			return object.NewInt(100 - attrInt(self, "age")), nil
		}, nil),
	)

	admin := object.NewClass("Admin",
		object.WithBase(user),
		object.WithIdentity(ids),
	)

	lifespan, err := trait.NewBuilder("ExtendedLifespan").
		Property("years_until_death", func(self *object.Instance) (object.Value, error) {
			return object.NewInt(200 - attrInt(self, "age")), nil
		}, nil).
		Build()
	if err != nil {
		return nil, err
	}

	extras, err := trait.NewBuilder("UserExtras").
		Method("make_older", func(self *object.Instance, args []object.Value) (object.Value, error) {
			years := int64(1)
			if len(args) > 0 {
				if n, ok := object.AsInt(args[0]); ok {
					years = n
				}
			}
			self.SetAttr("age", object.NewInt(attrInt(self, "age")+years))
			return object.Null{}, nil
		}).
		Method("display", func(self *object.Instance, args []object.Value) (object.Value, error) {
			name := ""
			if v, ok := self.Attr("name"); ok {
				name, _ = object.AsStr(v)
			}
			return object.NewStr(fmt.Sprintf("%s, %d", name, attrInt(self, "age"))), nil
		}).
		Property("is_adult", func(self *object.Instance) (object.Value, error) {
			return object.NewBool(attrInt(self, "age") >= 18), nil
		}, nil).
		Property("years_until_graduation",
			func(self *object.Instance) (object.Value, error) {
				years := 22 - attrInt(self, "age")
				if years < 0 {
					years = 0
				}
				return object.NewInt(years), nil
			},
			func(self *object.Instance, value object.Value) error {
				years, ok := object.AsInt(value)
				if !ok {
					return fmt.Errorf("years_until_graduation takes an int")
				}
				self.SetAttr("age", object.NewInt(22-years))
				return nil
			}).
		ClassMethod("create_adult", func(recv *object.Class, args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("create_adult(name) takes 1 argument, got %d", len(args))
			}
			inst, err := recv.New(args[0], object.NewInt(18))
			if err != nil {
				return nil, err
			}
			return inst, nil
		}).
		StaticMethod("validate_age", func(args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("validate_age(age) takes 1 argument, got %d", len(args))
			}
			age, ok := object.AsInt(args[0])
			if !ok {
				return object.NewBool(false), nil
			}
			return object.NewBool(age >= 0 && age <= 120), nil
		}).
		Build()
	if err != nil {
		return nil, err
	}

	empty, err := trait.NewBuilder("EmptyBundle").Build()
	if err != nil {
		return nil, err
	}

	return &Fixtures{
		Classes: map[string]*object.Class{
			"User":  user,
			"Admin": admin,
		},
		Bundles: map[string]*trait.Bundle{
			"ExtendedLifespan": lifespan,
			"UserExtras":       extras,
			"EmptyBundle":      empty,
		},
	}, nil
}

// attrInt reads an int attribute, defaulting to 0 when unset.
func attrInt(self *object.Instance, name string) int64 {
	v, ok := self.Attr(name)
	if !ok {
		return 0
	}
	n, _ := object.AsInt(v)
	return n
}
