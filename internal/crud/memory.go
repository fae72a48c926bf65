package crud

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"admissions/internal/constants"
	pkgerrors "admissions/pkg/errors"
)

// MemoryRepository keeps records in process. It mirrors PostgresRepository
// semantics (generated ids, timestamps, not-found errors) and backs tests and
// local demos. Stored rows never share slices or maps with callers.
type MemoryRepository[T any] struct {
	mu     sync.RWMutex
	schema Schema[T]
	items  map[string]T
	order  []string
	now    func() time.Time
}

func NewMemoryRepository[T any](schema Schema[T], seed ...T) *MemoryRepository[T] {
	r := &MemoryRepository[T]{
		schema: schema.MustCheck(),
		items:  make(map[string]T),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for i := range seed {
		item := seed[i]
		meta := schema.Meta(&item)
		if meta.ID == "" {
			meta.ID = uuid.New().String()
		}
		stored, err := detach(&item)
		if err != nil {
			panic(fmt.Sprintf("crud: cannot seed %s: %v", schema.Name, err))
		}
		r.items[meta.ID] = stored
		r.order = append(r.order, meta.ID)
	}
	return r
}

// List returns records newest first.
func (r *MemoryRepository[T]) List(_ context.Context, limit int) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}
	out := make([]T, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		item := r.items[r.order[i]]
		copied, err := detach(&item)
		if err != nil {
			return nil, err
		}
		out = append(out, copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return r.schema.Meta(&out[i]).CreatedAt.After(r.schema.Meta(&out[j]).CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository[T]) Get(_ context.Context, id string) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, r.notFound(id)
	}
	copied, err := detach(&item)
	if err != nil {
		return nil, err
	}
	return &copied, nil
}

func (r *MemoryRepository[T]) Create(_ context.Context, item *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta := r.schema.Meta(item)
	meta.ID = uuid.New().String()
	meta.CreatedAt = r.now()
	meta.UpdatedAt = meta.CreatedAt
	stored, err := detach(item)
	if err != nil {
		return err
	}
	r.items[meta.ID] = stored
	r.order = append(r.order, meta.ID)
	return nil
}

func (r *MemoryRepository[T]) Update(_ context.Context, item *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta := r.schema.Meta(item)
	existing, ok := r.items[meta.ID]
	if !ok {
		return r.notFound(meta.ID)
	}
	meta.CreatedAt = r.schema.Meta(&existing).CreatedAt
	meta.UpdatedAt = r.now()
	stored, err := detach(item)
	if err != nil {
		return err
	}
	r.items[meta.ID] = stored
	return nil
}

func (r *MemoryRepository[T]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return r.notFound(id)
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *MemoryRepository[T]) notFound(id string) error {
	return pkgerrors.ErrNotFound.
		WithDetail("id", id).
		WithMessage(fmt.Sprintf("%s %s not found", r.schema.Name, id))
}

// detach deep-copies item through its JSON form.
func detach[T any](item *T) (T, error) {
	var out T
	raw, err := json.Marshal(item)
	if err != nil {
		return out, fmt.Errorf("failed to copy record: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to copy record: %w", err)
	}
	return out, nil
}
