package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Repository used by tests and by the CLI when
// history is disabled for a single run.
type MemoryStore struct {
	mu          sync.Mutex
	comparisons map[string]*Comparison
	order       []string
	edits       []CategoryEdit
	SaveError   error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comparisons: make(map[string]*Comparison)}
}

func (m *MemoryStore) SaveComparison(_ context.Context, c *Comparison) (string, error) {
	if m.SaveError != nil {
		return "", m.SaveError
	}
	if c == nil || c.Result == nil {
		return "", fmt.Errorf("comparison result is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	fillSummary(c)
	saved := *c
	m.comparisons[c.ID] = &saved
	m.order = append(m.order, c.ID)
	return c.ID, nil
}

func (m *MemoryStore) GetComparison(_ context.Context, id string) (*Comparison, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comparisons[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := *c
	return &out, nil
}

func (m *MemoryStore) ListComparisons(_ context.Context, limit int) ([]Comparison, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []Comparison{}
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		c := *m.comparisons[m.order[i]]
		c.Result, c.Insights = nil, nil
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) LogCategoryEdit(_ context.Context, edit CategoryEdit) (CategoryEdit, error) {
	edit.Description = strings.TrimSpace(edit.Description)
	edit.NewCategory = strings.TrimSpace(edit.NewCategory)
	if edit.Description == "" {
		return CategoryEdit{}, fmt.Errorf("edit description is required")
	}
	if edit.NewCategory == "" {
		return CategoryEdit{}, fmt.Errorf("edit new category is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comparisons[edit.ComparisonID]; !ok {
		return CategoryEdit{}, fmt.Errorf("%w: %s", ErrNotFound, edit.ComparisonID)
	}
	if edit.CreatedAt.IsZero() {
		edit.CreatedAt = time.Now().UTC()
	}
	edit.ID = int64(len(m.edits) + 1)
	m.edits = append(m.edits, edit)
	return edit, nil
}

func (m *MemoryStore) ListCategoryEdits(_ context.Context, comparisonID string) ([]CategoryEdit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []CategoryEdit{}
	for _, e := range m.edits {
		if e.ComparisonID == comparisonID {
			out = append(out, e)
		}
	}
	return out, nil
}
