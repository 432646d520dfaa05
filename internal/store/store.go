package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

var ErrNotFound = errors.New("package not found")

type EventType string

const (
	EventAdmitted      EventType = "package_admitted"
	EventStatusChanged EventType = "package_status_changed"
	EventReopened      EventType = "package_reopened"
)

// Event describes a committed store mutation. The package carried by the
// event is a copy; listeners may keep it.
type Event struct {
	Type    EventType
	Package *model.Package
	Change  model.StatusChange
}

type Listener func(Event)

// Store holds the driver's manifest for the session. Mutations are
// serialized; listeners are notified synchronously after a mutation commits
// and before the next one is processed. Listeners must not call back into
// the store.
type Store struct {
	mu        sync.Mutex
	packages  map[string]*model.Package
	order     []string
	history   []model.StatusChange
	listeners []Listener
	log       *zap.Logger
}

func New(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		packages: make(map[string]*model.Package),
		log:      log,
	}
}

// Subscribe registers a change listener for the rest of the session.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Admit adds dispatch-assigned packages to the store, preserving input order.
// A package that fails validation or collides with an existing id rejects the
// whole batch.
func (s *Store) Admit(pkgs []*model.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range pkgs {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, exists := s.packages[p.ID]; exists {
			return fmt.Errorf("package %s already admitted", p.ID)
		}
	}
	for _, p := range pkgs {
		cp := p.Clone()
		s.packages[cp.ID] = cp
		s.order = append(s.order, cp.ID)
		s.notify(Event{Type: EventAdmitted, Package: cp.Clone()})
	}
	s.log.Info("packages admitted", zap.Int("count", len(pkgs)))
	return nil
}

// Get returns a copy of the package with the given id.
func (s *Store) Get(id string) (*model.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.packages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.Clone(), nil
}

// List returns copies of all packages in admission order.
func (s *Store) List() []*model.Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Package, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.packages[id].Clone())
	}
	return out
}

// ListByDate returns packages whose operational day equals date (local
// calendar date comparison).
func (s *Store) ListByDate(date time.Time) []*model.Package {
	y, m, d := date.Date()
	var out []*model.Package
	for _, p := range s.List() {
		py, pm, pd := p.DeliveryDate.Date()
		if py == y && pm == m && pd == d {
			out = append(out, p)
		}
	}
	return out
}

// Apply mutates one package under the store lock. The mutation receives a
// working copy; the result is validated before commit and the original is
// left untouched on error. A status change is recorded in the history and
// broadcast to listeners.
func (s *Store) Apply(id string, mutate func(p *model.Package) error) (*model.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.packages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("mutation left package invalid: %w", err)
	}

	from := current.Status
	s.packages[id] = next

	if next.Status != from {
		change := model.StatusChange{
			PackageID: id,
			From:      from,
			To:        next.Status,
			ChangedAt: time.Now(),
		}
		s.history = append(s.history, change)
		s.log.Info("package status changed",
			zap.String("package_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(next.Status)))
		s.notify(Event{Type: EventStatusChanged, Package: next.Clone(), Change: change})
	}
	return next.Clone(), nil
}

// Reopen returns a Failed package to Pending for the next attempt. This is a
// dispatch-system action, not reachable from any driver-facing surface, and
// only valid while attempts remain.
func (s *Store) Reopen(id string) (*model.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.packages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if current.Status != model.StatusFailed {
		return nil, fmt.Errorf("package %s is %s, only failed packages reopen", id, current.Status)
	}
	if current.AttemptNumber >= current.MaxAttempts {
		return nil, fmt.Errorf("package %s exhausted its %d attempts", id, current.MaxAttempts)
	}

	next := current.Clone()
	next.Status = model.StatusPending
	next.Failure = nil
	next.AttemptNumber++

	change := model.StatusChange{
		PackageID: id,
		From:      current.Status,
		To:        next.Status,
		ChangedAt: time.Now(),
	}
	s.packages[id] = next
	s.history = append(s.history, change)
	s.notify(Event{Type: EventReopened, Package: next.Clone(), Change: change})
	return next.Clone(), nil
}

// History returns the most recent n status changes, newest first. n <= 0
// returns everything.
func (s *Store) History(n int) []model.StatusChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.StatusChange, len(s.history))
	copy(out, s.history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChangedAt.After(out[j].ChangedAt)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *Store) notify(ev Event) {
	for _, l := range s.listeners {
		l(ev)
	}
}
