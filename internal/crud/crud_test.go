package crud

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"admissions/internal/table"
	"admissions/pkg/models"
)

type widget struct {
	Meta
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func widgetSchema() Schema[widget] {
	return Schema[widget]{
		Name:    "widget",
		Path:    "widgets",
		Title:   "Widget",
		Table:   "widgets",
		Columns: []string{"name", "capacity"},
		Values:  func(w *widget) []any { return []any{w.Name, w.Capacity} },
		Targets: func(w *widget) []any { return []any{&w.Name, &w.Capacity} },
		Meta:    func(w *widget) *Meta { return &w.Meta },
		Label:   func(w *widget) string { return w.Name },
		Validate: func(w *widget) error {
			if strings.TrimSpace(w.Name) == "" {
				return errors.New("name is required")
			}
			return nil
		},
		View: []table.Column{
			{Key: "name", Label: "Name", Sortable: true, Filterable: true},
			{Key: "capacity", Label: "Capacity", Type: table.TypeNumber, Sortable: true},
		},
	}
}

type memRepo struct {
	mu    sync.Mutex
	items map[string]widget
	seq   int
	calls int
}

func newMemRepo(items ...widget) *memRepo {
	r := &memRepo{items: make(map[string]widget)}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *memRepo) List(_ context.Context, _ int) ([]widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]widget, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) Get(_ context.Context, id string) (*widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("widget %s: %w", id, errNotFoundForTest)
	}
	return &it, nil
}

func (r *memRepo) Create(_ context.Context, item *widget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.seq++
	item.ID = fmt.Sprintf("w-%d", r.seq)
	item.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	item.UpdatedAt = item.CreatedAt
	r.items[item.ID] = *item
	return nil
}

func (r *memRepo) Update(_ context.Context, item *widget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if _, ok := r.items[item.ID]; !ok {
		return errNotFoundForTest
	}
	r.items[item.ID] = *item
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	delete(r.items, id)
	return nil
}

var errNotFoundForTest = errors.New("not found")

type recordingPublisher struct {
	events []models.EntityChangeEvent
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, event models.EntityChangeEvent) error {
	p.events = append(p.events, event)
	return p.err
}
