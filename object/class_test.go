package object

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graft/internal/testutil"
)

// attrInt reads an attribute that must hold an Int.
func attrInt(self *Instance, name string) (int64, error) {
	v, ok := self.Attr(name)
	if !ok {
		return 0, fmt.Errorf("missing attr %q", name)
	}
	n, ok := AsInt(v)
	if !ok {
		return 0, fmt.Errorf("attr %q is not an Int", name)
	}
	return n, nil
}

func userInit(self *Instance, args []Value) error {
	if len(args) != 2 {
		return fmt.Errorf("User init wants (name, age), got %d args", len(args))
	}
	self.SetAttr("name", args[0])
	self.SetAttr("age", args[1])
	return nil
}

// newUserClass builds the User fixture: attrs name/age, one native
// instance operation, one native mutator.
func newUserClass(ids IdentityGenerator) *Class {
	opts := []ClassOption{
		WithInit(userInit),
		WithMethod("years_until_death", func(self *Instance, args []Value) (Value, error) {
			age, err := attrInt(self, "age")
			if err != nil {
				return nil, err
			}
			return Int(100 - age), nil
		}),
		WithMethod("make_older", func(self *Instance, args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("make_older wants 1 arg, got %d", len(args))
			}
			years, ok := AsInt(args[0])
			if !ok {
				return nil, fmt.Errorf("make_older wants an Int")
			}
			age, err := attrInt(self, "age")
			if err != nil {
				return nil, err
			}
			self.SetAttr("age", Int(age+years))
			return Null{}, nil
		}),
	}
	if ids != nil {
		opts = append(opts, WithIdentity(ids))
	}
	return NewClass("User", opts...)
}

func TestNewClass_DeclaresNativeMembers(t *testing.T) {
	cls := newUserClass(nil)

	assert.Equal(t, "User", cls.Name())
	assert.Nil(t, cls.Base())
	assert.False(t, cls.Builtin())

	m, ok := cls.Member("years_until_death")
	require.True(t, ok)
	assert.Equal(t, KindMethod, m.Kind())

	assert.Equal(t, []string{"make_older", "years_until_death"}, cls.MemberNames())
}

func TestClass_ResolveMember_WalksBaseChain(t *testing.T) {
	base := NewClass("Base",
		WithMethod("greet", func(self *Instance, args []Value) (Value, error) {
			return Str("hello"), nil
		}))
	child := NewClass("Child", WithBase(base))

	m, owner, ok := child.ResolveMember("greet")
	require.True(t, ok)
	assert.Equal(t, KindMethod, m.Kind())
	assert.Same(t, base, owner)

	// Own members shadow the base
	require.NoError(t, child.SetMember("greet", Method{Fn: func(self *Instance, args []Value) (Value, error) {
		return Str("hi"), nil
	}}))
	_, owner, ok = child.ResolveMember("greet")
	require.True(t, ok)
	assert.Same(t, child, owner)
}

func TestClass_ResolveMember_Missing(t *testing.T) {
	cls := NewClass("Empty")
	_, _, ok := cls.ResolveMember("nothing")
	assert.False(t, ok)
}

func TestClass_SetMember_LastWriteWins(t *testing.T) {
	cls := newUserClass(nil)
	inst, err := cls.New(Str("A"), Int(18))
	require.NoError(t, err)

	require.NoError(t, cls.SetMember("years_until_death", Method{Fn: func(self *Instance, args []Value) (Value, error) {
		age, err := attrInt(self, "age")
		if err != nil {
			return nil, err
		}
		return Int(200 - age), nil
	}}))

	// Existing instances see the replacement immediately
	got, err := inst.Call("years_until_death")
	require.NoError(t, err)
	assert.Equal(t, Int(182), got)
}

func TestClass_SetMember_NilMember(t *testing.T) {
	cls := NewClass("C")
	err := cls.SetMember("x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil member")
}

func TestClass_SetMembers_InstallsBatch(t *testing.T) {
	cls := NewClass("C")

	err := cls.SetMembers([]NamedMember{
		{Name: "a", Member: StaticMethod{Fn: func(args []Value) (Value, error) { return Int(1), nil }}},
		{Name: "b", Member: StaticMethod{Fn: func(args []Value) (Value, error) { return Int(2), nil }}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cls.MemberNames())
}

func TestClass_SetMembers_RejectsNilBeforeInstalling(t *testing.T) {
	cls := NewClass("C")

	err := cls.SetMembers([]NamedMember{
		{Name: "ok", Member: StaticMethod{Fn: func(args []Value) (Value, error) { return Null{}, nil }}},
		{Name: "bad", Member: nil},
	})
	require.Error(t, err)

	// Nothing installed
	assert.Empty(t, cls.MemberNames())
}

func TestClass_New_RunsInit(t *testing.T) {
	cls := newUserClass(testutil.NewSequentialIdentity("user"))

	inst, err := cls.New(Str("Vasi"), Int(25))
	require.NoError(t, err)

	assert.Equal(t, "user-1", inst.ID())
	assert.Same(t, cls, inst.Class())

	name, ok := inst.Attr("name")
	require.True(t, ok)
	assert.Equal(t, Str("Vasi"), name)
}

func TestClass_New_InitErrorPropagates(t *testing.T) {
	cls := newUserClass(nil)

	_, err := cls.New(Str("only-one-arg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init User")
}

func TestClass_New_InheritsInitFromBase(t *testing.T) {
	base := newUserClass(nil)
	child := NewClass("Admin", WithBase(base))

	inst, err := child.New(Str("Root"), Int(40))
	require.NoError(t, err)

	assert.Same(t, child, inst.Class())
	age, err := attrInt(inst, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(40), age)
}

func TestClass_New_ArgsWithoutInit(t *testing.T) {
	cls := NewClass("Bare")

	_, err := cls.New(Int(1))
	require.Error(t, err)

	var me *ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeNotInstantiable, me.Code)
}

func TestClass_Call_ClassMethodBindsAccessClass(t *testing.T) {
	base := NewClass("Base",
		WithClassMethod("whoami", func(recv *Class, args []Value) (Value, error) {
			return Str(recv.Name()), nil
		}))
	child := NewClass("Child", WithBase(base))

	got, err := base.Call("whoami")
	require.NoError(t, err)
	assert.Equal(t, Str("Base"), got)

	// Accessed through the subclass, the receiver is the subclass even
	// though the member lives on the base.
	got, err = child.Call("whoami")
	require.NoError(t, err)
	assert.Equal(t, Str("Child"), got)
}

func TestClass_Call_StaticMethod(t *testing.T) {
	cls := NewClass("Checks",
		WithStaticMethod("validate_age", func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("validate_age wants 1 arg")
			}
			age, ok := AsInt(args[0])
			if !ok {
				return nil, fmt.Errorf("validate_age wants an Int")
			}
			return Bool(age >= 0 && age <= 120), nil
		}))

	got, err := cls.Call("validate_age", Int(25))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), got)

	got, err = cls.Call("validate_age", Int(150))
	require.NoError(t, err)
	assert.Equal(t, Bool(false), got)
}

func TestClass_Call_InstanceMemberFails(t *testing.T) {
	cls := newUserClass(nil)

	_, err := cls.Call("years_until_death")
	require.Error(t, err)

	var me *ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeBadReceiver, me.Code)
}

func TestClass_Call_Unknown(t *testing.T) {
	cls := NewClass("C")

	_, err := cls.Call("nope")
	assert.True(t, IsUnknownMember(err))
}

func TestClass_IsSubclassOf(t *testing.T) {
	a := NewClass("A")
	b := NewClass("B", WithBase(a))
	c := NewClass("C", WithBase(b))
	other := NewClass("Other")

	assert.True(t, c.IsSubclassOf(c))
	assert.True(t, c.IsSubclassOf(b))
	assert.True(t, c.IsSubclassOf(a))
	assert.False(t, a.IsSubclassOf(c))
	assert.False(t, c.IsSubclassOf(other))
}

func TestCanonicalName_NFCNormalization(t *testing.T) {
	cls := NewClass("C")

	decomposed := "cafe\u0301" // e + combining acute
	composed := "caf\u00e9"    // precomposed e with acute

	require.NoError(t, cls.SetMember(decomposed, StaticMethod{Fn: func(args []Value) (Value, error) {
		return Int(1), nil
	}}))

	// Both spellings hit the same entry
	_, ok := cls.Member(composed)
	assert.True(t, ok)
	assert.Len(t, cls.MemberNames(), 1)
}
