// Package container provides dependency injection for statement-compare.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"fjacquet/statement-compare/internal/categorizer"
	"fjacquet/statement-compare/internal/config"
	"fjacquet/statement-compare/internal/converterapi"
	"fjacquet/statement-compare/internal/events"
	"fjacquet/statement-compare/internal/export"
	"fjacquet/statement-compare/internal/history"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/narrator"
	"fjacquet/statement-compare/internal/pipeline"
	"fjacquet/statement-compare/internal/statement"
	"fjacquet/statement-compare/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
// It is immutable after creation; dependencies are reached through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       store.CategoryRepository
	categorizer *categorizer.Categorizer
	custom      *categorizer.CustomCategories
	processor   *statement.Processor
	converter   converterapi.Converter
	history     history.Repository
	publisher   events.Publisher
	narrator    narrator.Narrator
	pipeline    *pipeline.Pipeline
	exporter    *export.Generator

	closers []io.Closer
}

// NewContainer creates and wires all application dependencies. A nil logger
// is built from cfg.Log. Optional integrations (converter API, history,
// broker, Gemini) are only created when configured; broker and Gemini
// failures degrade to running without them.
func NewContainer(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	c := &Container{logger: logger, config: cfg}

	categoryStore := store.NewCategoryStore(cfg.Categories.File, cfg.Categories.CustomFile, logger)
	c.store = categoryStore

	rules, err := categoryStore.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("load category rules: %w", err)
	}
	if len(rules) > 0 {
		c.categorizer = categorizer.NewWithRules(rules)
		logger.Info("Using category rules from file", logging.F(logging.FieldCount, len(rules)))
	} else {
		c.categorizer = categorizer.New()
	}

	names, err := categoryStore.LoadCustomCategories()
	if err != nil {
		return nil, fmt.Errorf("load custom categories: %w", err)
	}
	c.custom = categorizer.NewCustomCategories(names...)

	c.processor = statement.NewProcessor(c.categorizer, logger)

	var pdf converterapi.Converter
	if cfg.ConverterEnabled() {
		client, err := converterapi.NewClient(converterapi.ClientConfig{
			BaseURL:      cfg.Converter.URL,
			APIKey:       cfg.Converter.APIKey,
			Timeout:      cfg.Converter.Timeout,
			PollInterval: cfg.Converter.PollInterval,
			MaxPolls:     cfg.Converter.MaxPolls,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create converter client: %w", err)
		}
		pdf = client
	} else {
		logger.Debug("PDF converter disabled, CONVERTER_API_KEY not set")
	}
	c.converter = converterapi.NewDispatcher(pdf)

	if cfg.History.Enabled {
		db, err := history.Open(cfg.History.DBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		c.history = db
		c.closers = append(c.closers, db)
	}

	c.publisher = events.NopPublisher{}
	if cfg.AMQPEnabled() {
		pub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
		if err != nil {
			logger.WithError(err).Warn("AMQP unavailable, comparison events disabled")
		} else {
			c.publisher = pub
			c.closers = append(c.closers, pub)
		}
	}

	if cfg.AIEnabled() {
		gemini, err := narrator.NewGeminiNarrator(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			logger.WithError(err).Warn("Gemini unavailable, narratives disabled")
		} else {
			c.narrator = gemini
			c.closers = append(c.closers, gemini)
		}
	}

	c.pipeline, err = pipeline.New(pipeline.Dependencies{
		Converter: c.converter,
		Processor: c.processor,
		History:   c.history,
		Publisher: c.publisher,
		Narrator:  c.narrator,
		Logger:    logger,
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	delimiter, _ := utf8.DecodeRuneInString(cfg.CSV.Delimiter)
	if delimiter == utf8.RuneError {
		delimiter = ','
	}
	c.exporter = export.NewGenerator(delimiter, logger)

	logger.Info("Container initialized successfully",
		logging.F("converter_enabled", cfg.ConverterEnabled()),
		logging.F("history_enabled", c.history != nil),
		logging.F("ai_enabled", c.narrator != nil))

	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the category file store.
func (c *Container) GetStore() store.CategoryRepository {
	return c.store
}

// GetCategorizer returns the keyword categorizer.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetCustomCategories returns the custom category set loaded at startup.
func (c *Container) GetCustomCategories() *categorizer.CustomCategories {
	return c.custom
}

// SaveCustomCategories persists the current custom category set.
func (c *Container) SaveCustomCategories() error {
	return c.store.SaveCustomCategories(c.custom.List())
}

// GetProcessor returns the statement processor.
func (c *Container) GetProcessor() *statement.Processor {
	return c.processor
}

// GetConverter returns the file converter (saved JSON, or PDF through the API).
func (c *Container) GetConverter() converterapi.Converter {
	return c.converter
}

// GetHistory returns the history repository, or nil when history is disabled.
func (c *Container) GetHistory() history.Repository {
	return c.history
}

// GetPipeline returns the comparison pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// GetExporter returns the export generator.
func (c *Container) GetExporter() *export.Generator {
	return c.exporter
}

// Close releases database, broker and AI client resources.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	c.logger.Debug("Container closed")
	return errors.Join(errs...)
}
