package routingrules

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
)

// Snapshot is an immutable, ordered view of the active rule set. A single
// resolution always runs against one snapshot.
type Snapshot struct {
	rules []Rule
}

// NewSnapshot keeps the active rules and orders them by priority descending,
// then creation sequence ascending.
func NewSnapshot(rules []Rule) *Snapshot {
	active := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			r.Keywords = slices.Clone(r.Keywords)
			active = append(active, r)
		}
	}

	slices.SortStableFunc(active, func(a, b Rule) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})

	return &Snapshot{rules: active}
}

// Resolve returns the first rule, in snapshot order, whose conditions all
// hold for a. No match is a valid outcome, not an error.
func (s *Snapshot) Resolve(a Attributes) (*Decision, bool) {
	terms := termSet(a.Keywords)
	for _, r := range s.rules {
		if r.Matches(a, terms) {
			return &Decision{
				RuleID:   r.ID,
				RuleName: r.Name,
				Priority: r.Priority,
				AssignTo: r.AssignTo,
			}, true
		}
	}
	return nil, false
}

// Rules returns the snapshot's rules in evaluation order.
func (s *Snapshot) Rules() []Rule {
	return slices.Clone(s.rules)
}

// Len returns the number of active rules.
func (s *Snapshot) Len() int {
	return len(s.rules)
}

// Loader fetches the full rule set.
type Loader func(ctx context.Context) ([]Rule, error)

// Engine serves resolutions from the current snapshot and swaps in a new one
// on Reload.
type Engine struct {
	current atomic.Pointer[Snapshot]
	load    Loader
	logger  *slog.Logger
}

// NewEngine creates an Engine with an empty snapshot.
func NewEngine(load Loader, logger *slog.Logger) *Engine {
	e := &Engine{load: load, logger: logger.With("system", "routing-engine")}
	e.current.Store(NewSnapshot(nil))
	return e
}

// Snapshot returns the current snapshot.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Resolve resolves a against the current snapshot.
func (e *Engine) Resolve(a Attributes) (*Decision, bool) {
	return e.Snapshot().Resolve(a)
}

// Reload loads the rule set and replaces the current snapshot. On failure the
// previous snapshot stays in place.
func (e *Engine) Reload(ctx context.Context) error {
	rules, err := e.load(ctx)
	if err != nil {
		return fmt.Errorf("load routing rules: %w", err)
	}

	snap := NewSnapshot(rules)
	e.current.Store(snap)
	e.logger.Info("routing rules loaded", "active", snap.Len(), "total", len(rules))
	return nil
}
