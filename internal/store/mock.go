package store

import (
	"fjacquet/statement-compare/internal/models"
)

// MockCategoryStore is an in-memory CategoryRepository for tests.
type MockCategoryStore struct {
	Rules            []models.CategoryRule
	CustomCategories []string

	// Error flags for testing error conditions
	LoadRulesError            error
	LoadCustomCategoriesError error
	SaveCustomCategoriesError error

	SaveCalls int
}

// LoadRules returns the mock rules.
func (m *MockCategoryStore) LoadRules() ([]models.CategoryRule, error) {
	if m.LoadRulesError != nil {
		return nil, m.LoadRulesError
	}
	return m.Rules, nil
}

// LoadCustomCategories returns a copy of the mock custom categories.
func (m *MockCategoryStore) LoadCustomCategories() ([]string, error) {
	if m.LoadCustomCategoriesError != nil {
		return nil, m.LoadCustomCategoriesError
	}
	return append([]string{}, m.CustomCategories...), nil
}

// SaveCustomCategories replaces the mock custom categories.
func (m *MockCategoryStore) SaveCustomCategories(names []string) error {
	m.SaveCalls++
	if m.SaveCustomCategoriesError != nil {
		return m.SaveCustomCategoriesError
	}
	m.CustomCategories = append([]string{}, names...)
	return nil
}
