package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/detailing-backoffice/internal/logging"
)

// Backend stores raw named payloads. Implementations must return ErrNotFound
// from Get when nothing is stored under the name.
type Backend interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, payload []byte) error
}

// ChangeFunc is invoked after a collection has been replaced.
type ChangeFunc = func(ctx context.Context, name string)

type loadStatus int

const (
	statusLoaded loadStatus = iota
	statusMissing
	statusCorrupt
)

// Store serializes named values as JSON on top of a Backend and broadcasts a
// change notification after every successful write.
type Store struct {
	backend Backend
	logger  *slog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	subsMu  sync.RWMutex
	subs    map[int]subscription
	nextSub int
}

type subscription struct {
	name string
	fn   ChangeFunc
}

// NewStore wraps backend. A nil logger falls back to slog.Default.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
		subs:    make(map[int]subscription),
	}
}

// Load decodes the value stored under name into dest. found is false when
// nothing is stored or when the stored payload cannot be decoded; the latter
// is logged and never returned as an error.
func (s *Store) Load(ctx context.Context, name string, dest any) (found bool, err error) {
	status, err := s.load(ctx, name, dest)
	if err != nil {
		return false, err
	}
	return status == statusLoaded, nil
}

// Save encodes value and replaces whatever was stored under name.
func (s *Store) Save(ctx context.Context, name string, value any) error {
	if err := s.put(ctx, name, value); err != nil {
		return err
	}
	s.notify(ctx, name)
	return nil
}

// OnChange registers fn for writes to name. An empty name subscribes to every
// collection. The returned function cancels the subscription.
func (s *Store) OnChange(name string, fn ChangeFunc) func() {
	if fn == nil {
		return func() {}
	}
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscription{name: name, fn: fn}
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) load(ctx context.Context, name string, dest any) (loadStatus, error) {
	payload, err := s.backend.Get(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return statusMissing, nil
		}
		return statusMissing, fmt.Errorf("persistence: read %s: %w", name, err)
	}
	if len(payload) == 0 {
		return statusMissing, nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		s.loggerFor(ctx).WarnContext(ctx, "discarding unreadable collection",
			"collection", name,
			"error", fmt.Errorf("%w: %v", ErrCorrupt, err),
		)
		return statusCorrupt, nil
	}
	return statusLoaded, nil
}

func (s *Store) put(ctx context.Context, name string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", name, err)
	}
	if err := s.backend.Put(ctx, name, payload); err != nil {
		return fmt.Errorf("persistence: write %s: %w", name, err)
	}
	return nil
}

func (s *Store) notify(ctx context.Context, name string) {
	s.subsMu.RLock()
	targets := make([]ChangeFunc, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.name == "" || sub.name == name {
			targets = append(targets, sub.fn)
		}
	}
	s.subsMu.RUnlock()

	for _, fn := range targets {
		fn(ctx, name)
	}
}

// lockFor returns the mutex serializing read-modify-write cycles on name.
func (s *Store) lockFor(name string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	mu, ok := s.locks[name]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[name] = mu
	}
	return mu
}

func (s *Store) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return s.logger
}
