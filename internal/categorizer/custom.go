package categorizer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"fjacquet/statement-compare/internal/models"
)

// CustomCategories is a caller-owned set of extra category labels offered in
// category pickers and accepted by IsKnownCategory. Categorize never reads it.
type CustomCategories struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewCustomCategories returns a set holding names. Blank and built-in names are
// ignored.
func NewCustomCategories(names ...string) *CustomCategories {
	c := &CustomCategories{names: make(map[string]struct{})}
	for _, name := range names {
		_ = c.Add(name)
	}
	return c
}

// Add inserts name. It fails for blank names and built-in categories; adding an
// existing custom name is a no-op.
func (c *CustomCategories) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("custom category name cannot be empty")
	}
	if isBuiltin(name) {
		return fmt.Errorf("%q is a built-in category", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.names == nil {
		c.names = make(map[string]struct{})
	}
	c.names[name] = struct{}{}
	return nil
}

// Remove deletes name and reports whether it was present.
func (c *CustomCategories) Remove(name string) bool {
	name = strings.TrimSpace(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.names[name]; !ok {
		return false
	}
	delete(c.names, name)
	return true
}

// Contains reports whether name is a custom category.
func (c *CustomCategories) Contains(name string) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.names[strings.TrimSpace(name)]
	return ok
}

// List returns the custom names sorted.
func (c *CustomCategories) List() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.names))
	for name := range c.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func isBuiltin(name string) bool {
	for _, builtin := range models.BuiltinCategories() {
		if strings.EqualFold(name, builtin) || strings.EqualFold(name, models.CategoryLabel(builtin)) {
			return true
		}
	}
	return false
}

// AvailableCategories lists the built-in categories followed by the custom ones.
func AvailableCategories(custom *CustomCategories) []string {
	out := models.BuiltinCategories()
	return append(out, custom.List()...)
}

// IsKnownCategory reports whether name is a built-in or custom category.
func IsKnownCategory(name string, custom *CustomCategories) bool {
	for _, builtin := range models.BuiltinCategories() {
		if name == builtin {
			return true
		}
	}
	return custom.Contains(name)
}
