package models

// CategoryRule maps a category to the keywords that select it.
type CategoryRule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// CategoriesConfig is the layout of the categories YAML file.
type CategoriesConfig struct {
	Categories []CategoryRule `yaml:"categories"`
}

// CustomCategoriesConfig is the layout of the custom categories YAML file.
type CustomCategoriesConfig struct {
	CustomCategories []string `yaml:"custom_categories"`
}
