// Package store loads and saves the YAML files behind categorization: the
// keyword rule table and the user's custom category labels.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCategoriesFile       = "categories.yaml"
	DefaultCustomCategoriesFile = "custom_categories.yaml"

	appConfigDir = "statement-compare"
)

// CategoryRepository is implemented by CategoryStore and MockCategoryStore.
type CategoryRepository interface {
	LoadRules() ([]models.CategoryRule, error)
	LoadCustomCategories() ([]string, error)
	SaveCustomCategories(names []string) error
}

// CategoryStore manages loading and saving of category data
type CategoryStore struct {
	CategoriesFile       string
	CustomCategoriesFile string
	logger               logging.Logger
}

// NewCategoryStore creates a new store. Empty file names use the defaults.
func NewCategoryStore(categoriesFile, customCategoriesFile string, logger logging.Logger) *CategoryStore {
	if categoriesFile == "" {
		categoriesFile = DefaultCategoriesFile
	}
	if customCategoriesFile == "" {
		customCategoriesFile = DefaultCustomCategoriesFile
	}
	return &CategoryStore{
		CategoriesFile:       categoriesFile,
		CustomCategoriesFile: customCategoriesFile,
		logger:               logging.OrDefault(logger),
	}
}

// FindConfigFile looks for a configuration file in the current directory,
// ./config, ./database and ~/.config/statement-compare, in that order.
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", appConfigDir, filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadRules loads the keyword rule table. The file may hold a top-level
// "categories:" list, a bare list, or a mapping of name to keywords; order is
// kept in all three forms. A missing file yields no rules and no error.
func (s *CategoryStore) LoadRules() ([]models.CategoryRule, error) {
	data, path, err := s.read(s.CategoriesFile)
	if err != nil || data == nil {
		return nil, err
	}

	var cfg models.CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err == nil && len(cfg.Categories) > 0 {
		s.logger.Debug("Loaded category rules",
			logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(cfg.Categories)))
		return cfg.Categories, nil
	}

	var rules []models.CategoryRule
	if err := yaml.Unmarshal(data, &rules); err == nil && len(rules) > 0 {
		s.logger.Debug("Loaded category rules from list",
			logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(rules)))
		return rules, nil
	}

	rules, err = parseRuleMapping(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing categories file %s: %w", path, err)
	}
	s.logger.Debug("Loaded category rules from mapping",
		logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(rules)))
	return rules, nil
}

// parseRuleMapping reads "name: [kw, ...]" or "name: {keywords: [...]}" pairs in
// document order.
func parseRuleMapping(data []byte) ([]models.CategoryRule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("expected a list or mapping of categories")
	}

	rules := make([]models.CategoryRule, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		rule := models.CategoryRule{Name: root.Content[i].Value}
		value := root.Content[i+1]

		var keywords []string
		switch value.Kind {
		case yaml.SequenceNode:
			if err := value.Decode(&keywords); err != nil {
				return nil, fmt.Errorf("category %q: %w", rule.Name, err)
			}
		case yaml.MappingNode:
			var body struct {
				Keywords []string `yaml:"keywords"`
			}
			if err := value.Decode(&body); err != nil {
				return nil, fmt.Errorf("category %q: %w", rule.Name, err)
			}
			keywords = body.Keywords
		}
		for _, kw := range keywords {
			rule.Keywords = append(rule.Keywords, strings.ToLower(kw))
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadCustomCategories loads the custom category labels. A missing file yields
// an empty list.
func (s *CategoryStore) LoadCustomCategories() ([]string, error) {
	data, path, err := s.read(s.CustomCategoriesFile)
	if err != nil || data == nil {
		return []string{}, err
	}

	var cfg models.CustomCategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		// Bare list fallback
		var names []string
		if listErr := yaml.Unmarshal(data, &names); listErr != nil {
			return nil, fmt.Errorf("error parsing custom categories file %s: %w", path, err)
		}
		return names, nil
	}
	return cfg.CustomCategories, nil
}

// SaveCustomCategories writes names to the custom categories file, creating it
// under ./database when it does not exist yet.
func (s *CategoryStore) SaveCustomCategories(names []string) error {
	filePath, err := s.FindConfigFile(s.CustomCategoriesFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error resolving custom categories file: %w", err)
		}
		filePath = s.CustomCategoriesFile
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join("database", filePath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if names == nil {
		names = []string{}
	}
	data, err := yaml.Marshal(models.CustomCategoriesConfig{CustomCategories: names})
	if err != nil {
		return fmt.Errorf("error marshaling custom categories: %w", err)
	}
	if err := os.WriteFile(filePath, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing custom categories: %w", err)
	}

	s.logger.Debug("Saved custom categories",
		logging.F(logging.FieldFile, filePath), logging.F(logging.FieldCount, len(names)))
	return nil
}

// read returns nil data when the file is not found.
func (s *CategoryStore) read(filename string) ([]byte, string, error) {
	path, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Debug("Configuration file not found", logging.F(logging.FieldFile, filename))
		return nil, "", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, path, fmt.Errorf("error reading %s: %w", path, err)
	}
	return data, path, nil
}
