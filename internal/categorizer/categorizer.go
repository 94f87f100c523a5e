// Package categorizer assigns a spending category to a transaction description
// using an ordered keyword table. Classification is deterministic: the same
// description and rule table always yield the same category.
package categorizer

import (
	"strings"
	"sync"

	"fjacquet/statement-compare/internal/models"
)

// Match is the outcome of categorizing one description.
type Match struct {
	Category string
	// Keyword is the matched keyword, empty when the fallback was used.
	Keyword string
}

// Categorizer classifies descriptions by substring match against its rules.
type Categorizer struct {
	rules    []models.CategoryRule
	fallback string
}

// New returns a Categorizer using DefaultRules.
func New() *Categorizer {
	return NewWithRules(DefaultRules())
}

// NewWithRules returns a Categorizer using rules in the given order. Keywords are
// lower-cased; empty keywords and rules without a name are dropped.
func NewWithRules(rules []models.CategoryRule) *Categorizer {
	return &Categorizer{
		rules:    normalizeRules(rules),
		fallback: models.DefaultCategory,
	}
}

func normalizeRules(rules []models.CategoryRule) []models.CategoryRule {
	out := make([]models.CategoryRule, 0, len(rules))
	for _, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			continue
		}
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		out = append(out, models.CategoryRule{Name: name, Keywords: keywords})
	}
	return out
}

// Rules returns a copy of the active rule table.
func (c *Categorizer) Rules() []models.CategoryRule {
	out := make([]models.CategoryRule, len(c.rules))
	for i, rule := range c.rules {
		out[i] = models.CategoryRule{Name: rule.Name, Keywords: append([]string(nil), rule.Keywords...)}
	}
	return out
}

// Match categorizes description and reports which keyword decided it.
func (c *Categorizer) Match(description string) Match {
	text := strings.ToLower(description)

	for _, special := range specialCases {
		for _, kw := range special.Keywords {
			if strings.Contains(text, kw) {
				return Match{Category: special.Name, Keyword: kw}
			}
		}
	}

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return Match{Category: rule.Name, Keyword: kw}
			}
		}
	}

	return Match{Category: c.fallback}
}

// Categorize returns the category for description. It never fails.
func (c *Categorizer) Categorize(description string) string {
	return c.Match(description).Category
}

var (
	defaultCategorizer *Categorizer
	initOnce           sync.Once
)

// Default returns the shared Categorizer built from DefaultRules.
func Default() *Categorizer {
	initOnce.Do(func() {
		defaultCategorizer = New()
	})
	return defaultCategorizer
}

// Categorize categorizes description with the default rule table.
func Categorize(description string) string {
	return Default().Categorize(description)
}
