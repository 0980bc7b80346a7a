package object

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, name string, age int64) (*Class, *Instance) {
	t.Helper()
	cls := newUserClass(nil)
	inst, err := cls.New(Str(name), Int(age))
	require.NoError(t, err)
	return cls, inst
}

func TestInstance_AttrRoundTrip(t *testing.T) {
	_, inst := newUser(t, "Vasi", 25)

	inst.SetAttr("nickname", Str("V"))

	v, ok := inst.Attr("nickname")
	require.True(t, ok)
	assert.Equal(t, Str("V"), v)

	assert.Equal(t, []string{"age", "name", "nickname"}, inst.AttrNames())
}

func TestInstance_Get_AttrFallback(t *testing.T) {
	_, inst := newUser(t, "Vasi", 25)

	v, err := inst.Get("name")
	require.NoError(t, err)
	assert.Equal(t, Str("Vasi"), v)
}

func TestInstance_Get_PropertyWinsOverAttr(t *testing.T) {
	cls, inst := newUser(t, "Vasi", 25)

	require.NoError(t, cls.SetMember("display", Property{
		Get: func(self *Instance) (Value, error) {
			name, _ := self.Attr("name")
			age, err := attrInt(self, "age")
			if err != nil {
				return nil, err
			}
			s, _ := AsStr(name)
			return Str(fmt.Sprintf("%s, %d", s, age)), nil
		},
	}))

	// A stored attr under the property's name does not shadow it
	inst.SetAttr("display", Str("shadowed"))

	v, err := inst.Get("display")
	require.NoError(t, err)
	assert.Equal(t, Str("Vasi, 25"), v)
}

func TestInstance_Get_OperationIsNotAProperty(t *testing.T) {
	_, inst := newUser(t, "Vasi", 25)

	_, err := inst.Get("years_until_death")
	require.Error(t, err)

	var me *ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeNotAProperty, me.Code)
}

func TestInstance_Get_AttrShadowsOperationMember(t *testing.T) {
	_, inst := newUser(t, "Vasi", 25)

	// An operation member with a stored attr of the same name reads as
	// the attr; Call still dispatches the member.
	inst.SetAttr("years_until_death", Int(9))

	v, err := inst.Get("years_until_death")
	require.NoError(t, err)
	assert.Equal(t, Int(9), v)

	got, err := inst.Call("years_until_death")
	require.NoError(t, err)
	assert.Equal(t, Int(75), got)
}

func TestInstance_Get_Unknown(t *testing.T) {
	_, inst := newUser(t, "Vasi", 25)

	_, err := inst.Get("missing")
	assert.True(t, IsUnknownAttribute(err))
}

func TestInstance_Set_PropertySetter(t *testing.T) {
	cls, inst := newUser(t, "Vasi", 25)

	require.NoError(t, cls.SetMember("years_until_graduation", Property{
		Get: func(self *Instance) (Value, error) {
			age, err := attrInt(self, "age")
			if err != nil {
				return nil, err
			}
			years := 22 - age
			if years < 0 {
				years = 0
			}
			return Int(years), nil
		},
		Set: func(self *Instance, value Value) error {
			years, ok := AsInt(value)
			if !ok {
				return fmt.Errorf("years_until_graduation wants an Int")
			}
			self.SetAttr("age", Int(22-years))
			return nil
		},
	}))

	require.NoError(t, inst.Set("years_until_graduation", Int(2)))

	age, err := attrInt(inst, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(20), age)

	v, err := inst.Get("years_until_graduation")
	require.NoError(t, err)
	assert.Equal(t, Int(2), v)
}

func TestInstance_Set_ReadOnlyProperty(t *testing.T) {
	cls, inst := newUser(t, "Vasi", 25)

	require.NoError(t, cls.SetMember("is_adult", Property{
		Get: func(self *Instance) (Value, error) {
			age, err := attrInt(self, "age")
			if err != nil {
				return nil, err
			}
			return Bool(age >= 18), nil
		},
	}))

	err := inst.Set("is_adult", Bool(false))
	assert.True(t, IsReadOnlyProperty(err))

	// The failed assignment left no attr behind
	_, ok := inst.Attr("is_adult")
	assert.False(t, ok)
}

func TestInstance_Set_PlainAttr(t *testing.T) {
	_, inst := newUser(t, "Vasi", 25)

	require.NoError(t, inst.Set("age", Int(30)))

	age, err := attrInt(inst, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(30), age)
}

func TestInstance_Call_Method(t *testing.T) {
	_, inst := newUser(t, "Vasi", 25)

	got, err := inst.Call("years_until_death")
	require.NoError(t, err)
	assert.Equal(t, Int(75), got)
}

func TestInstance_Call_MutatesOnlyReceiver(t *testing.T) {
	cls := newUserClass(nil)
	a, err := cls.New(Str("A"), Int(20))
	require.NoError(t, err)
	b, err := cls.New(Str("B"), Int(30))
	require.NoError(t, err)

	_, err = a.Call("make_older", Int(5))
	require.NoError(t, err)

	ageA, err := attrInt(a, "age")
	require.NoError(t, err)
	ageB, err := attrInt(b, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(25), ageA)
	assert.Equal(t, int64(30), ageB)
}

func TestInstance_Call_ClassMethodBindsDynamicClass(t *testing.T) {
	base := NewClass("Base",
		WithInit(func(self *Instance, args []Value) error { return nil }),
		WithClassMethod("whoami", func(recv *Class, args []Value) (Value, error) {
			return Str(recv.Name()), nil
		}))
	child := NewClass("Child", WithBase(base),
		WithInit(func(self *Instance, args []Value) error { return nil }))

	inst, err := child.New()
	require.NoError(t, err)

	got, err := inst.Call("whoami")
	require.NoError(t, err)
	assert.Equal(t, Str("Child"), got)
}

func TestInstance_Call_StaticMethodMatchesClassAccess(t *testing.T) {
	cls := NewClass("Checks",
		WithInit(func(self *Instance, args []Value) error { return nil }),
		WithStaticMethod("validate_age", func(args []Value) (Value, error) {
			age, ok := AsInt(args[0])
			if !ok {
				return nil, fmt.Errorf("validate_age wants an Int")
			}
			return Bool(age >= 0 && age <= 120), nil
		}))

	inst, err := cls.New()
	require.NoError(t, err)

	viaInstance, err := inst.Call("validate_age", Int(50))
	require.NoError(t, err)
	viaClass, err := cls.Call("validate_age", Int(50))
	require.NoError(t, err)

	assert.Equal(t, viaClass, viaInstance)
}

func TestInstance_Call_PropertyNotCallable(t *testing.T) {
	cls, inst := newUser(t, "Vasi", 25)

	require.NoError(t, cls.SetMember("display", Property{
		Get: func(self *Instance) (Value, error) { return Str("x"), nil },
	}))

	_, err := inst.Call("display")
	require.Error(t, err)

	var me *ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeNotCallable, me.Code)
}

func TestInstance_Call_Unknown(t *testing.T) {
	_, inst := newUser(t, "Vasi", 25)

	_, err := inst.Call("missing")
	assert.True(t, IsUnknownMember(err))
}
