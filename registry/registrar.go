package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/graft/object"
	"github.com/roach88/graft/trait"
)

// InstalledMember records one transplanted member in a journal entry.
type InstalledMember struct {
	Name string
	Kind object.MemberKind
}

// Registration is one journal record: a bundle applied to a target.
// Members are in install order.
type Registration struct {
	Seq     int64
	Bundle  string
	Target  string
	Members []InstalledMember
}

// Registrar applies bundles to classes and journals what it installed.
//
// Thread-safety model:
//   - Register: safe from any goroutine; each call installs its whole
//     batch under the target's member-table write lock
//   - Applied: safe from any goroutine
//
// Concurrent Register calls against the same target are serialized by
// the target's lock; the journal seq gives the order they landed in.
type Registrar struct {
	logger *slog.Logger
	clock  *Clock

	mu      sync.Mutex
	journal []Registration
}

// Option allows configuration of registrar parameters.
type Option func(*Registrar)

// WithLogger sets the logger for registration events.
//
// Default: slog.Default().
// The conformance harness passes a discard logger to keep traces clean.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) {
		r.logger = logger
	}
}

// New creates a Registrar.
func New(opts ...Option) *Registrar {
	r := &Registrar{
		logger: slog.Default(),
		clock:  NewClock(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register attaches the bundle's own members to the target class.
//
// The protected-target guard runs before the bundle is inspected:
// registering anything - a populated bundle, an empty one, or nil -
// against a builtin class fails with the same PROTECTED_TYPE error and
// mutates nothing.
//
// Past the guard, a nil bundle, an empty bundle, or a bundle whose
// declarations all shadow its root installs nothing and succeeds.
// Otherwise the bundle's own declarations are converted into installed
// members (receivers re-bound per kind) and written to the target's
// member table as one batch. Same-name members already on the target
// are replaced; re-registering a bundle is idempotent.
func (r *Registrar) Register(target *object.Class, bundle *trait.Bundle) error {
	if target == nil {
		return fmt.Errorf("nil target class")
	}
	if target.Builtin() {
		return fmt.Errorf("register on class %s: %w",
			target.Name(), object.NewProtectedTypeError(target.Name()))
	}

	if bundle == nil || bundle.Len() == 0 {
		r.logger.Debug("empty bundle, nothing to install", "target", target.Name())
		return nil
	}

	own := bundle.OwnMembers()
	if len(own) == 0 {
		r.logger.Debug("bundle declares no own members, nothing to install",
			"bundle", bundle.Name(),
			"target", target.Name(),
		)
		return nil
	}

	plan, installed, err := buildPlan(target, own)
	if err != nil {
		return fmt.Errorf("register %s on class %s: %w", bundle.Name(), target.Name(), err)
	}

	if err := target.SetMembers(plan); err != nil {
		return fmt.Errorf("install %s onto class %s: %w", bundle.Name(), target.Name(), err)
	}

	for _, m := range installed {
		r.logger.Debug("member installed",
			"bundle", bundle.Name(),
			"target", target.Name(),
			"member", m.Name,
			"kind", string(m.Kind),
		)
	}

	rec := Registration{
		Seq:     r.clock.Next(),
		Bundle:  bundle.Name(),
		Target:  target.Name(),
		Members: installed,
	}

	r.mu.Lock()
	r.journal = append(r.journal, rec)
	r.mu.Unlock()

	r.logger.Info("bundle applied",
		"bundle", bundle.Name(),
		"target", target.Name(),
		"members", len(installed),
		"seq", rec.Seq,
	)

	return nil
}

// Applied returns the journal of successful registrations in seq order.
// The slice is a fresh copy.
func (r *Registrar) Applied() []Registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Registration, len(r.journal))
	copy(out, r.journal)
	return out
}

// defaultRegistrar backs the package-level Register.
var (
	defaultRegistrar     *Registrar
	defaultRegistrarOnce sync.Once
)

// Register attaches the bundle to the target using a shared default
// Registrar. Library code that wants its own journal or logger creates
// a Registrar with New.
func Register(target *object.Class, bundle *trait.Bundle) error {
	defaultRegistrarOnce.Do(func() {
		defaultRegistrar = New()
	})
	return defaultRegistrar.Register(target, bundle)
}
