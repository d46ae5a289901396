package persistence

import (
	"context"
	"fmt"
)

// Document is a typed view over one named value in a Store.
type Document[T any] struct {
	store       *Store
	name        string
	defaults    func() T
	persistSeed bool
}

// NewDocument returns a document that yields defaults() (or the zero value when
// defaults is nil) whenever nothing usable is stored.
func NewDocument[T any](store *Store, name string, defaults func() T) *Document[T] {
	return &Document[T]{store: store, name: name, defaults: defaults}
}

// NewSeededDocument behaves like NewDocument but also writes the defaults back
// the first time the document is found missing. Unreadable payloads are not
// overwritten by the seed.
func NewSeededDocument[T any](store *Store, name string, seed func() T) *Document[T] {
	return &Document[T]{store: store, name: name, defaults: seed, persistSeed: true}
}

// Name returns the storage key of the document.
func (d *Document[T]) Name() string {
	return d.name
}

// Load returns the stored value or the defaults.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	if d.persistSeed {
		mu := d.store.lockFor(d.name)
		mu.Lock()
		value, seeded, err := d.loadLocked(ctx)
		mu.Unlock()
		if err == nil && seeded {
			d.store.notify(ctx, d.name)
		}
		return value, err
	}
	value, _, err := d.read(ctx)
	return value, err
}

// Save replaces the stored value.
func (d *Document[T]) Save(ctx context.Context, value T) error {
	mu := d.store.lockFor(d.name)
	mu.Lock()
	err := d.store.put(ctx, d.name, value)
	mu.Unlock()
	if err != nil {
		return err
	}
	d.store.notify(ctx, d.name)
	return nil
}

// Update loads the current value, applies mutate and writes the result back.
// Concurrent updates through the same Store are serialized; a mutate error
// aborts the cycle without writing.
func (d *Document[T]) Update(ctx context.Context, mutate func(T) (T, error)) (T, error) {
	mu := d.store.lockFor(d.name)
	mu.Lock()

	current, _, err := d.loadLocked(ctx)
	if err != nil {
		mu.Unlock()
		var zero T
		return zero, err
	}

	next, err := mutate(current)
	if err != nil {
		mu.Unlock()
		var zero T
		return zero, err
	}

	if err := d.store.put(ctx, d.name, next); err != nil {
		mu.Unlock()
		var zero T
		return zero, err
	}
	mu.Unlock()

	d.store.notify(ctx, d.name)
	return next, nil
}

func (d *Document[T]) loadLocked(ctx context.Context) (T, bool, error) {
	value, status, err := d.read(ctx)
	if err != nil {
		return value, false, err
	}
	if status == statusMissing && d.persistSeed {
		if err := d.store.put(ctx, d.name, value); err != nil {
			var zero T
			return zero, false, fmt.Errorf("persistence: seed %s: %w", d.name, err)
		}
		return value, true, nil
	}
	return value, false, nil
}

func (d *Document[T]) read(ctx context.Context) (T, loadStatus, error) {
	var value T
	status, err := d.store.load(ctx, d.name, &value)
	if err != nil {
		var zero T
		return zero, status, err
	}
	if status != statusLoaded {
		return d.defaultValue(), status, nil
	}
	return value, status, nil
}

func (d *Document[T]) defaultValue() T {
	if d.defaults == nil {
		var zero T
		return zero
	}
	return d.defaults()
}

// Collection is a Document holding an ordered sequence of records. Loading a
// missing collection yields an empty, non-nil slice unless defaults are set.
type Collection[T any] struct {
	doc *Document[[]T]
}

// NewCollection returns a collection stored under name.
func NewCollection[T any](store *Store, name string) *Collection[T] {
	return &Collection[T]{doc: NewDocument(store, name, func() []T { return []T{} })}
}

// NewSeededCollection returns a collection that is initialised with seed() the
// first time it is found missing.
func NewSeededCollection[T any](store *Store, name string, seed func() []T) *Collection[T] {
	return &Collection[T]{doc: NewSeededDocument(store, name, seed)}
}

// Name returns the storage key of the collection.
func (c *Collection[T]) Name() string {
	return c.doc.Name()
}

// Load returns the stored records.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	records, err := c.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save replaces every stored record.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	return c.doc.Save(ctx, records)
}

// Update performs a serialized read-modify-write of the whole sequence.
func (c *Collection[T]) Update(ctx context.Context, mutate func([]T) ([]T, error)) ([]T, error) {
	return c.doc.Update(ctx, func(current []T) ([]T, error) {
		if current == nil {
			current = []T{}
		}
		next, err := mutate(current)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		return next, nil
	})
}
