package notes

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"example.com/notes-app/internal/idgen"
	"example.com/notes-app/internal/logging"
)

// Mode selects how the Store reacts to persistence failures.
type Mode int

const (
	// ModeLocal keeps memory authoritative: storage errors are logged and
	// the in-memory change is applied anyway.
	ModeLocal Mode = iota
	// ModeRemote applies a change only once the backend confirmed it.
	ModeRemote
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local"
}

type EventType string

const (
	EventLoad   EventType = "load"
	EventCreate EventType = "create"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
	EventError  EventType = "error"
)

// Event tells subscribers the note list or error state changed.
type Event struct {
	Type EventType `json:"type"`
	ID   string    `json:"id,omitempty"`
	Err  error     `json:"-"`
}

type StoreOption func(*Store)

func WithMode(m Mode) StoreOption {
	return func(s *Store) { s.mode = m }
}

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithIDGen(g *idgen.Generator) StoreOption {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// Store owns the authoritative in-memory note list and keeps it in step with
// a Persistence backend.
type Store struct {
	p      Persistence
	mode   Mode
	logger *slog.Logger
	ids    *idgen.Generator
	locks  *keyLock

	mu        sync.Mutex
	notes     []Note
	loading   bool
	loaded    bool
	lastError error

	subMu   sync.Mutex
	subs    map[uint64]*subscription
	nextSub uint64
}

type subscription struct {
	fn     func(Event)
	closed atomic.Bool
}

func NewStore(p Persistence, opts ...StoreOption) *Store {
	s := &Store{
		p:      p,
		logger: logging.Discard(),
		ids:    idgen.Default,
		locks:  newKeyLock(),
		notes:  []Note{},
		subs:   make(map[uint64]*subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Mode() Mode { return s.mode }

// Load performs the initial List. In local mode an empty or corrupt store is
// seeded with a welcome note; storage errors are logged and swallowed.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.p.List(ctx)

	if s.mode == ModeRemote {
		if err != nil {
			s.mu.Lock()
			s.loading = false
			s.loaded = true
			s.mu.Unlock()
			s.fail("load", "", err)
			return err
		}
		s.finishLoad(items)
		return nil
	}

	seed := false
	switch {
	case errors.Is(err, ErrDataCorrupt):
		s.logger.Warn("stored notes are corrupt, starting over", "error", err)
		items, seed = nil, true
	case err != nil:
		s.logger.Warn("load notes", "error", err)
		items = nil
	case len(items) == 0:
		seed = !s.hasData(ctx)
	}
	if seed {
		n := s.createLocal(ctx, welcomeDraft)
		items = []Note{n}
		s.logger.Info("seeded welcome note", "id", n.ID)
	}
	s.finishLoad(items)
	return nil
}

func (s *Store) hasData(ctx context.Context) bool {
	pc, ok := s.p.(presenceChecker)
	if !ok {
		return false
	}
	present, err := pc.HasData(ctx)
	if err != nil {
		// An unreadable store counts as populated.
		s.logger.Warn("check stored notes", "error", err)
		return true
	}
	return present
}

func (s *Store) finishLoad(items []Note) {
	seen := make(map[string]struct{}, len(items))
	notes := make([]Note, 0, len(items))
	for _, n := range items {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		notes = append(notes, n)
	}

	s.mu.Lock()
	s.notes = notes
	s.loading = false
	s.loaded = true
	if s.mode == ModeRemote {
		s.lastError = nil
	}
	s.mu.Unlock()

	s.logger.Debug("notes loaded", "count", len(notes), "mode", s.mode)
	s.publish(Event{Type: EventLoad})
}

// AddNote creates a note from d and returns its id. In remote mode nothing is
// added unless the backend confirms the create.
func (s *Store) AddNote(ctx context.Context, d Draft) (string, error) {
	d = d.Normalize()

	var n Note
	if s.mode == ModeRemote {
		created, err := s.p.Create(ctx, d)
		if err != nil {
			s.fail("create", "", err)
			return "", err
		}
		n = created
	} else {
		n = s.createLocal(ctx, d)
	}

	s.mu.Lock()
	s.notes = prepend(s.notes, n)
	s.mu.Unlock()

	s.publish(Event{Type: EventCreate, ID: n.ID})
	return n.ID, nil
}

func (s *Store) createLocal(ctx context.Context, d Draft) Note {
	n, err := s.p.Create(ctx, d)
	if err != nil {
		s.logger.Warn("persist new note", "error", err)
		return Note{ID: s.ids.NewID()}.apply(d, s.ids.Now())
	}
	return n
}

// UpdateNote replaces the fields of note id. In local mode an unknown id is a
// no-op.
func (s *Store) UpdateNote(ctx context.Context, id string, d Draft) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	d = d.Normalize()

	if s.mode == ModeRemote {
		updated, err := s.p.Update(ctx, id, d)
		if err != nil {
			s.fail("update", id, err)
			return err
		}
		s.mu.Lock()
		s.notes = replace(s.notes, updated)
		s.mu.Unlock()
		s.publish(Event{Type: EventUpdate, ID: id})
		return nil
	}

	prev, ok := s.Get(id)
	if !ok {
		s.logger.Debug("update of unknown note ignored", "id", id)
		return nil
	}
	updated, err := s.p.Update(ctx, id, d)
	if err != nil {
		s.logger.Warn("persist note update", "id", id, "error", err)
		updated = prev.apply(d, s.ids.Now())
	}
	s.mu.Lock()
	s.notes = replace(s.notes, updated)
	s.mu.Unlock()
	s.publish(Event{Type: EventUpdate, ID: id})
	return nil
}

// DeleteNote removes note id. Local mode removes it from memory whatever the
// storage outcome.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.p.Delete(ctx, id); err != nil {
		if s.mode == ModeRemote {
			s.fail("delete", id, err)
			return err
		}
		s.logger.Warn("persist note delete", "id", id, "error", err)
	}

	s.mu.Lock()
	s.notes = remove(s.notes, id)
	s.mu.Unlock()
	s.publish(Event{Type: EventDelete, ID: id})
	return nil
}

// Notes returns a copy of the list in insertion/update order.
func (s *Store) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Note(nil), s.notes...)
}

func (s *Store) Get(id string) (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}

// Categories is recomputed from the current notes on every call.
func (s *Store) Categories() []string {
	return Categories(s.Notes())
}

// Loading is true until the initial Load has settled, successfully or not.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading || !s.loaded
}

func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastError = nil
	s.mu.Unlock()
}

// Subscribe registers fn for change events. After unsubscribe returns fn is
// not called again.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	s.subMu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = sub
	s.subMu.Unlock()

	return func() {
		sub.closed.Store(true)
		s.subMu.Lock()
		delete(s.subs, key)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(e Event) {
	s.subMu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		if sub.closed.Load() {
			continue
		}
		sub.fn(e)
	}
}

func (s *Store) fail(op, id string, err error) {
	s.mu.Lock()
	s.lastError = err
	s.mu.Unlock()
	s.logger.Error("notes "+op+" failed", "id", id, "error", err)
	s.publish(Event{Type: EventError, ID: id, Err: err})
}

func prepend(notes []Note, n Note) []Note {
	out := make([]Note, 0, len(notes)+1)
	out = append(out, n)
	for _, existing := range notes {
		if existing.ID != n.ID {
			out = append(out, existing)
		}
	}
	return out
}

// replace swaps in n at its current position, keeping updatedAt from going
// backwards. Unknown ids are prepended.
func replace(notes []Note, n Note) []Note {
	out := append([]Note(nil), notes...)
	for i, existing := range out {
		if existing.ID == n.ID {
			n.UpdatedAt = max(n.UpdatedAt, existing.UpdatedAt)
			out[i] = n
			return out
		}
	}
	return prepend(out, n)
}

func remove(notes []Note, id string) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}
