// Package shell is the composition root of the console: a static catalog of
// configuration sections, catalog filtering, and a single mounted section.
package shell

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"admissions/internal/logger"
	"admissions/internal/table"
	"admissions/pkg/errors"
)

type Category string

const (
	CategoryAll           Category = "all"
	CategoryAcademic      Category = "academic"
	CategoryLeads         Category = "leads"
	CategoryCommunication Category = "communication"
	CategoryTeam          Category = "team"
	CategoryIntegrations  Category = "integrations"
)

// Categories lists the filter tabs in display order.
var Categories = []Category{
	CategoryAll,
	CategoryAcademic,
	CategoryLeads,
	CategoryCommunication,
	CategoryTeam,
	CategoryIntegrations,
}

// ParseCategory accepts a category name case-insensitively; an empty name is
// CategoryAll.
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return CategoryAll, nil
	}
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", errors.ErrValidation.WithMessage(fmt.Sprintf("unknown category %q", name))
}

// Component is what a section mounts.
type Component interface {
	Load(ctx context.Context) error
	View() table.View
}

type Section struct {
	ID          string
	Title       string
	Description string
	Category    Category
	// Path is the URL path the section answers to, e.g. "/programs".
	Path     string
	Keywords []string
	Mount    func() Component
}

func (s Section) matches(needle string) bool {
	if needle == "" {
		return true
	}
	fields := append([]string{s.Title, s.Description}, s.Keywords...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

type Registry []Section

// Find returns the section with id.
func (r Registry) Find(id string) (Section, bool) {
	for _, s := range r {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Filter returns the sections in category whose title, description or
// keywords contain query, case-insensitively. Registry order is kept.
func (r Registry) Filter(query string, category Category) []Section {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]Section, 0, len(r))
	for _, s := range r {
		if category != "" && category != CategoryAll && s.Category != category {
			continue
		}
		if s.matches(needle) {
			out = append(out, s)
		}
	}
	return out
}

// Counts returns the number of sections per category, with CategoryAll
// holding the total.
func (r Registry) Counts() map[Category]int {
	counts := map[Category]int{CategoryAll: len(r)}
	for _, s := range r {
		counts[s.Category]++
	}
	return counts
}

// Resolve picks the section whose path is the longest prefix of path, on
// segment boundaries. It falls back to the first section.
func (r Registry) Resolve(path string) (Section, bool) {
	path = normalizePath(path)
	candidates := make([]Section, 0, len(r))
	for _, s := range r {
		p := normalizePath(s.Path)
		if p == "/" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool {
			return len(candidates[i].Path) > len(candidates[j].Path)
		})
		return candidates[0], true
	}
	if len(r) == 0 {
		return Section{}, false
	}
	return r[0], false
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

// Shell holds the catalog filters and exactly one mounted section.
type Shell struct {
	registry Registry
	log      logger.Logger

	query    string
	category Category

	active  Section
	mounted Component
}

type Option func(*Shell)

func WithLogger(log logger.Logger) Option {
	return func(s *Shell) {
		if log != nil {
			s.log = log
		}
	}
}

// New selects the initial section from path. Nothing is mounted until Mount
// or Select is called.
func New(registry Registry, path string, opts ...Option) (*Shell, error) {
	if len(registry) == 0 {
		return nil, errors.ErrValidation.WithMessage("shell requires at least one section")
	}
	seen := make(map[string]struct{}, len(registry))
	for _, s := range registry {
		if _, dup := seen[s.ID]; dup {
			return nil, errors.ErrValidation.WithMessage(fmt.Sprintf("duplicate section %q", s.ID))
		}
		seen[s.ID] = struct{}{}
	}

	s := &Shell{registry: registry, log: logger.NopLogger(), category: CategoryAll}
	for _, opt := range opts {
		opt(s)
	}
	s.active, _ = registry.Resolve(path)
	return s, nil
}

func (s *Shell) Registry() Registry { return s.registry }
func (s *Shell) Active() Section    { return s.active }
func (s *Shell) Query() string      { return s.query }
func (s *Shell) Category() Category { return s.category }

// Mounted returns the component of the active section, or nil before the
// first mount.
func (s *Shell) Mounted() Component { return s.mounted }

func (s *Shell) Search(query string) {
	s.query = query
}

func (s *Shell) SetCategory(c Category) {
	if c == "" {
		c = CategoryAll
	}
	s.category = c
}

// Visible lists the sections matching the current search and category.
func (s *Shell) Visible() []Section {
	return s.registry.Filter(s.query, s.category)
}

// Select makes id the active section and mounts it. Filtering never changes
// the active section.
func (s *Shell) Select(ctx context.Context, id string) (Component, error) {
	section, ok := s.registry.Find(id)
	if !ok {
		return nil, errors.ErrNotFound.WithMessage(fmt.Sprintf("section %q not found", id))
	}
	s.active = section
	return s.Mount(ctx)
}

// Mount replaces whatever is mounted with a fresh component for the active
// section and loads it. A load failure leaves the component mounted; the
// component surfaces its own notification.
func (s *Shell) Mount(ctx context.Context) (Component, error) {
	if s.active.Mount == nil {
		return nil, errors.ErrInternal.WithMessage(fmt.Sprintf("section %q cannot be mounted", s.active.ID))
	}
	s.mounted = s.active.Mount()
	s.log.DebugwCtx(ctx, "Mounted section", "section", s.active.ID)
	if err := s.mounted.Load(ctx); err != nil {
		return s.mounted, err
	}
	return s.mounted, nil
}
