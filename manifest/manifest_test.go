package manifest

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graft/object"
)

func TestCompileBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		bundle: UserExtras: {
			doc: "Members a user gains after onboarding."

			member: make_older: {kind: "method", doc: "Adds years to age."}
			member: display: {kind: "property", readonly: true}
			member: years_until_graduation: {kind: "property"}
			member: create_adult: {kind: "classmethod"}
			member: validate_age: {kind: "staticmethod"}
		}
	`)

	require.NoError(t, v.Err())
	bundleVal := v.LookupPath(cue.ParsePath("bundle.UserExtras"))

	m, err := Compile(bundleVal)
	require.NoError(t, err)

	assert.Equal(t, "UserExtras", m.Name)
	assert.Equal(t, "Members a user gains after onboarding.", m.Doc)
	assert.Empty(t, m.Root)

	require.Len(t, m.Members, 5)
	assert.Equal(t, MemberSig{Name: "make_older", Kind: object.KindMethod, Doc: "Adds years to age."}, m.Members[0])
	assert.Equal(t, MemberSig{Name: "display", Kind: object.KindProperty, ReadOnly: true}, m.Members[1])
	assert.Equal(t, MemberSig{Name: "years_until_graduation", Kind: object.KindProperty}, m.Members[2])
	assert.Equal(t, MemberSig{Name: "create_adult", Kind: object.KindClassMethod}, m.Members[3])
	assert.Equal(t, MemberSig{Name: "validate_age", Kind: object.KindStaticMethod}, m.Members[4])
}

func TestCompileWithRoot(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		bundle: Child: {
			root: "Base"
			member: own: {kind: "method"}
		}
	`)

	require.NoError(t, v.Err())
	m, err := Compile(v.LookupPath(cue.ParsePath("bundle.Child")))
	require.NoError(t, err)

	assert.Equal(t, "Base", m.Root)
}

func TestCompileMissingKind(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		bundle: Bad: {
			member: broken: {doc: "no kind here"}
		}
	`)

	require.NoError(t, v.Err())
	_, err := Compile(v.LookupPath(cue.ParsePath("bundle.Bad")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle.Bad.member.broken.kind")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileInvalidKind(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		bundle: Bad: {
			member: broken: {kind: "constructor"}
		}
	`)

	require.NoError(t, v.Err())
	_, err := Compile(v.LookupPath(cue.ParsePath("bundle.Bad")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid kind")
	assert.Contains(t, err.Error(), "constructor")
}

func TestCompileReadonlyOnNonProperty(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		bundle: Bad: {
			member: broken: {kind: "method", readonly: true}
		}
	`)

	require.NoError(t, v.Err())
	_, err := Compile(v.LookupPath(cue.ParsePath("bundle.Bad")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "readonly applies to properties only")
}

func TestCompileErrorCarriesPosition(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		bundle: Bad: {
			member: broken: {kind: "nope"}
		}
	`)

	require.NoError(t, v.Err())
	_, err := Compile(v.LookupPath(cue.ParsePath("bundle.Bad")))

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Pos.IsValid())
}

func TestCompileSourceMultipleBundles(t *testing.T) {
	manifests, err := CompileSource(`
		bundle: First: {
			member: a: {kind: "method"}
		}
		bundle: Second: {
			member: b: {kind: "staticmethod"}
		}
	`)
	require.NoError(t, err)

	require.Len(t, manifests, 2)
	assert.Equal(t, "First", manifests[0].Name)
	assert.Equal(t, "Second", manifests[1].Name)
}

func TestCompileSourceNoBundles(t *testing.T) {
	_, err := CompileSource(`other: {x: 1}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no bundles declared")
}

func TestCompileSourceSyntaxError(t *testing.T) {
	_, err := CompileSource(`bundle: {{{`)
	require.Error(t, err)
}

func TestManifestMember(t *testing.T) {
	m := &Manifest{
		Name: "B",
		Members: []MemberSig{
			{Name: "x", Kind: object.KindMethod},
		},
	}

	sig, ok := m.Member("x")
	assert.True(t, ok)
	assert.Equal(t, object.KindMethod, sig.Kind)

	_, ok = m.Member("missing")
	assert.False(t, ok)
}

func TestCompileEmptyBundle(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`bundle: Empty: {doc: "nothing declared"}`)

	require.NoError(t, v.Err())
	m, err := Compile(v.LookupPath(cue.ParsePath("bundle.Empty")))
	require.NoError(t, err)
	assert.Empty(t, m.Members)
}
