package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/example/detailing-backoffice/internal/persistence"
)

// referenceNow is a Wednesday; 2024-01-14 is the following Sunday.
var referenceNow = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore() *persistence.Store {
	return persistence.NewStore(persistence.NewMemoryBackend(), discardLogger())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequence(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// recordStoreStub is an in-memory RecordStore with injectable failures.
type recordStoreStub[T any] struct {
	mu        sync.Mutex
	records   []T
	loadErr   error
	updateErr error
	writes    int
}

func newRecordStoreStub[T any](records ...T) *recordStoreStub[T] {
	return &recordStoreStub[T]{records: records}
}

func (s *recordStoreStub[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return slices.Clone(s.records), nil
}

func (s *recordStoreStub[T]) Update(ctx context.Context, mutate func([]T) ([]T, error)) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	next, err := mutate(slices.Clone(s.records))
	if err != nil {
		return nil, err
	}
	s.records = next
	s.writes++
	return slices.Clone(next), nil
}

func (s *recordStoreStub[T]) snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

func sampleInput(date, slot, service string) BookingInput {
	return BookingInput{
		Date:    date,
		Time:    slot,
		Service: service,
		Client: Client{
			LastName:  "Dupont",
			FirstName: "Marie",
			Phone:     "0692 12 34 56",
			Email:     "marie.dupont@example.com",
			Vehicle:   "Peugeot 208",
		},
	}
}
