// Package stats counts key presses and renders history reports.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/store"
)

// Persister stores the lifetime counts of a user.
type Persister interface {
	SaveCounts(user string, counts model.KeyCounts) error
}

// HistoryRecorder stores per-day press deltas.
type HistoryRecorder interface {
	AddCounts(ctx context.Context, user, day string, counts model.KeyCounts) error
}

// Aggregator owns the in-memory key counts of the active user. The in-memory
// map is authoritative; a failed flush is logged and retried by the next one.
type Aggregator struct {
	// flushMu serializes writers so a flush returns only after its data
	// reached the persister.
	flushMu sync.Mutex

	mu      sync.Mutex
	user    string
	counts  model.KeyCounts
	pending map[string]model.KeyCounts
	dirty   bool

	persister Persister
	history   HistoryRecorder
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewAggregator starts from counts loaded for user. p may be nil.
func NewAggregator(user string, counts model.KeyCounts, p Persister, log logrus.FieldLogger) *Aggregator {
	if counts == nil {
		counts = model.KeyCounts{}
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Aggregator{
		user:      user,
		counts:    counts.Clone(),
		pending:   map[string]model.KeyCounts{},
		persister: p,
		log:       log.WithField("user", user),
		now:       time.Now,
	}
}

// SetHistory enables daily history recording.
func (a *Aggregator) SetHistory(h HistoryRecorder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = h
}

// User returns the user whose keys are counted.
func (a *Aggregator) User() string { return a.user }

// Record counts one press of name.
func (a *Aggregator) Record(name string) {
	if name == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counts[name]++
	day := a.now().Format(store.DayLayout)
	delta, ok := a.pending[day]
	if !ok {
		delta = model.KeyCounts{}
		a.pending[day] = delta
	}
	delta[name]++
	a.dirty = true
}

// Snapshot returns a copy of the counts.
func (a *Aggregator) Snapshot() model.KeyCounts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts.Clone()
}

// Totals returns the number of presses and of distinct keys.
func (a *Aggregator) Totals() (presses, distinct int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, n := range a.counts {
		presses += n
	}
	return presses, len(a.counts)
}

// Clear resets all counts and persists the empty map at once.
func (a *Aggregator) Clear() error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	a.counts = model.KeyCounts{}
	a.pending = map[string]model.KeyCounts{}
	a.dirty = false
	p := a.persister
	a.mu.Unlock()

	if p == nil {
		return nil
	}
	if err := p.SaveCounts(a.user, model.KeyCounts{}); err != nil {
		a.log.WithError(err).Warn("failed to persist cleared stats")
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// Flush persists counts and pending history deltas if anything changed. What
// fails to persist stays pending for the next call.
func (a *Aggregator) Flush(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return nil
	}
	counts := a.counts.Clone()
	pending := a.pending
	a.pending = map[string]model.KeyCounts{}
	a.dirty = false
	p, h := a.persister, a.history
	a.mu.Unlock()

	var errs []error
	if p != nil {
		if err := p.SaveCounts(a.user, counts); err != nil {
			a.log.WithError(err).Warn("failed to persist stats")
			errs = append(errs, fmt.Errorf("failed to save stats: %w", err))
			a.markDirty()
		}
	}
	if h != nil {
		for day, delta := range pending {
			if err := h.AddCounts(ctx, a.user, day, delta); err != nil {
				a.log.WithError(err).WithField("day", day).Warn("failed to record key history")
				errs = append(errs, fmt.Errorf("failed to record history: %w", err))
				a.requeue(day, delta)
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.log.WithField("keys", len(counts)).Debug("stats flushed")
	return nil
}

func (a *Aggregator) markDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dirty = true
}

// requeue merges an unwritten day delta back into pending.
func (a *Aggregator) requeue(day string, delta model.KeyCounts) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cur, ok := a.pending[day]
	if !ok {
		cur = model.KeyCounts{}
		a.pending[day] = cur
	}
	for k, n := range delta {
		cur[k] += n
	}
	a.dirty = true
}
