package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/graft/object"
)

// MemberSig is one declared member: a name, a kind, and for properties
// whether assignment is allowed.
type MemberSig struct {
	Name     string
	Kind     object.MemberKind
	Doc      string
	ReadOnly bool // properties only
}

// Manifest is a compiled bundle declaration: what the bundle installs,
// with no implementations attached yet.
type Manifest struct {
	Name    string
	Doc     string
	Root    string      // name of the root bundle, or ""
	Members []MemberSig // declaration order
}

// Member looks up a declared member by name.
func (m *Manifest) Member(name string) (MemberSig, bool) {
	key := object.CanonicalName(name)
	for _, sig := range m.Members {
		if object.CanonicalName(sig.Name) == key {
			return sig, true
		}
	}
	return MemberSig{}, false
}

// Compile parses a CUE value into a Manifest.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the bundle struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`bundle: UserExtras: { ... }`)
//	m, err := manifest.Compile(v.LookupPath(cue.ParsePath("bundle.UserExtras")))
func Compile(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// Bundle name comes from the struct label (the path selector)
	var name string
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}

	return compileBundle(name, v)
}

// CompileSource compiles CUE source and returns every bundle declared
// under the top-level "bundle" field, in declaration order.
func CompileSource(src string) ([]*Manifest, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	bundlesVal := v.LookupPath(cue.ParsePath("bundle"))
	if !bundlesVal.Exists() {
		return nil, &CompileError{
			Field:   "bundle",
			Message: "no bundles declared (expected a top-level bundle field)",
			Pos:     v.Pos(),
		}
	}

	iter, err := bundlesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var manifests []*Manifest
	for iter.Next() {
		m, err := compileBundle(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}

	if len(manifests) == 0 {
		return nil, &CompileError{
			Field:   "bundle",
			Message: "no bundles declared",
			Pos:     bundlesVal.Pos(),
		}
	}
	return manifests, nil
}

func compileBundle(name string, v cue.Value) (*Manifest, error) {
	m := &Manifest{Name: name}

	docVal := v.LookupPath(cue.ParsePath("doc"))
	if docVal.Exists() {
		doc, err := docVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		m.Doc = doc
	}

	rootVal := v.LookupPath(cue.ParsePath("root"))
	if rootVal.Exists() {
		root, err := rootVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		m.Root = root
	}

	memberVal := v.LookupPath(cue.ParsePath("member"))
	if memberVal.Exists() {
		iter, err := memberVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}

		for iter.Next() {
			sig, err := compileMemberSig(name, iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			m.Members = append(m.Members, sig)
		}
	}

	// An empty member set is legal: the bundle registers as a no-op.
	return m, nil
}

func compileMemberSig(bundleName, memberName string, v cue.Value) (MemberSig, error) {
	sig := MemberSig{Name: memberName}
	fieldPath := fmt.Sprintf("bundle.%s.member.%s", bundleName, memberName)

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return sig, &CompileError{
			Field:   fieldPath + ".kind",
			Message: "kind is required",
			Pos:     v.Pos(),
		}
	}
	kindStr, err := kindVal.String()
	if err != nil {
		return sig, formatCUEError(err)
	}
	kind := object.MemberKind(kindStr)
	if !object.ValidKinds[kind] {
		return sig, &CompileError{
			Field:   fieldPath + ".kind",
			Message: fmt.Sprintf("invalid kind %q, must be one of: method, property, classmethod, staticmethod", kindStr),
			Pos:     kindVal.Pos(),
		}
	}
	sig.Kind = kind

	docVal := v.LookupPath(cue.ParsePath("doc"))
	if docVal.Exists() {
		doc, err := docVal.String()
		if err != nil {
			return sig, formatCUEError(err)
		}
		sig.Doc = doc
	}

	roVal := v.LookupPath(cue.ParsePath("readonly"))
	if roVal.Exists() {
		if kind != object.KindProperty {
			return sig, &CompileError{
				Field:   fieldPath + ".readonly",
				Message: "readonly applies to properties only",
				Pos:     roVal.Pos(),
			}
		}
		ro, err := roVal.Bool()
		if err != nil {
			return sig, formatCUEError(err)
		}
		sig.ReadOnly = ro
	}

	return sig, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
