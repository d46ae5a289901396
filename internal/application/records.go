package application

import (
	"context"
	"slices"
	"strings"
)

// RecordStore is the persistence contract of a lifecycle manager: a named,
// ordered collection read and rewritten as a whole.
type RecordStore[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Update(ctx context.Context, mutate func([]T) ([]T, error)) ([]T, error)
}

func indexOf[T any](records []T, id string, key func(T) string) int {
	return slices.IndexFunc(records, func(record T) bool { return key(record) == id })
}

func findRecord[T any](ctx context.Context, store RecordStore[T], id string, key func(T) string) (T, error) {
	var zero T
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, ErrNotFound
	}
	records, err := store.Load(ctx)
	if err != nil {
		return zero, err
	}
	idx := indexOf(records, id, key)
	if idx < 0 {
		return zero, ErrNotFound
	}
	return records[idx], nil
}

// updateRecord applies change to the record identified by id inside one
// read-modify-write cycle. A change error aborts the write.
func updateRecord[T any](ctx context.Context, store RecordStore[T], id string, key func(T) string, change func(records []T, record *T) error) (T, error) {
	var updated T
	id = strings.TrimSpace(id)
	if id == "" {
		return updated, ErrNotFound
	}
	_, err := store.Update(ctx, func(current []T) ([]T, error) {
		idx := indexOf(current, id, key)
		if idx < 0 {
			return nil, ErrNotFound
		}
		next := slices.Clone(current)
		if err := change(next, &next[idx]); err != nil {
			return nil, err
		}
		updated = next[idx]
		return next, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

func deleteRecord[T any](ctx context.Context, store RecordStore[T], params DeleteParams, key func(T) string) error {
	id := strings.TrimSpace(params.ID)
	if id == "" {
		return ErrNotFound
	}
	if !params.Confirmed {
		return ErrConfirmationRequired
	}
	_, err := store.Update(ctx, func(current []T) ([]T, error) {
		idx := indexOf(current, id, key)
		if idx < 0 {
			return nil, ErrNotFound
		}
		return slices.Delete(slices.Clone(current), idx, idx+1), nil
	})
	return err
}

func prepend[T any](records []T, record T) []T {
	out := make([]T, 0, len(records)+1)
	out = append(out, record)
	return append(out, records...)
}

// containsFold reports whether needle occurs in any of the haystacks, ignoring case.
func containsFold(needle string, haystacks ...string) bool {
	needle = strings.ToLower(needle)
	for _, haystack := range haystacks {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

// isAll reports whether a filter value selects everything.
func isAll(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, "all")
}
