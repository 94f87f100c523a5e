// Package config provides Viper-based hierarchical configuration: defaults,
// an optional YAML config file, then environment variables (a .env file is
// loaded first when present).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"fjacquet/statement-compare/internal/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Converter struct {
		URL          string        `mapstructure:"url" yaml:"url"`
		APIKey       string        `mapstructure:"api_key" yaml:"-"` // Never serialize API key
		Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
		PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
		MaxPolls     int           `mapstructure:"max_polls" yaml:"max_polls"`
	} `mapstructure:"converter" yaml:"converter"`

	History struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		DBPath  string `mapstructure:"db_path" yaml:"db_path"`
	} `mapstructure:"history" yaml:"history"`

	AMQP struct {
		URL      string `mapstructure:"url" yaml:"url"`
		Exchange string `mapstructure:"exchange" yaml:"exchange"`
		Queue    string `mapstructure:"queue" yaml:"queue"`
	} `mapstructure:"amqp" yaml:"amqp"`

	AI struct {
		APIKey string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
		Model  string `mapstructure:"model" yaml:"model"`
	} `mapstructure:"ai" yaml:"ai"`

	Categories struct {
		File       string `mapstructure:"file" yaml:"file"`
		CustomFile string `mapstructure:"custom_file" yaml:"custom_file"`
	} `mapstructure:"categories" yaml:"categories"`

	Server struct {
		Port int `mapstructure:"port" yaml:"port"`
	} `mapstructure:"server" yaml:"server"`
}

// envBindings maps configuration keys to the environment variables that set them.
var envBindings = map[string]string{
	"log.level":               "LOG_LEVEL",
	"log.format":              "LOG_FORMAT",
	"csv.delimiter":           "CSV_DELIMITER",
	"converter.url":           "CONVERTER_API_URL",
	"converter.api_key":       "CONVERTER_API_KEY",
	"converter.timeout":       "CONVERTER_TIMEOUT",
	"converter.poll_interval": "CONVERTER_POLL_INTERVAL",
	"converter.max_polls":     "CONVERTER_MAX_POLLS",
	"history.enabled":         "HISTORY_ENABLED",
	"history.db_path":         "HISTORY_DB_PATH",
	"amqp.url":                "AMQP_URL",
	"amqp.exchange":           "AMQP_EXCHANGE",
	"amqp.queue":              "AMQP_QUEUE",
	"ai.api_key":              "GEMINI_API_KEY",
	"ai.model":                "GEMINI_MODEL",
	"categories.file":         "CATEGORIES_FILE",
	"categories.custom_file":  "CUSTOM_CATEGORIES_FILE",
	"server.port":             "PORT",
}

// Load builds the configuration. configFile, when set, must exist; otherwise
// config.yaml is looked up in ., .statement-compare and
// $HOME/.statement-compare and skipped when absent.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(".statement-compare")
		v.AddConfigPath("$HOME/.statement-compare")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("converter.url", "https://api2.bankstatementconverter.com")
	v.SetDefault("converter.api_key", "")
	v.SetDefault("converter.timeout", 2*time.Minute)
	v.SetDefault("converter.poll_interval", 2*time.Second)
	v.SetDefault("converter.max_polls", 30)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db_path", "statement-compare.db")

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "statement-compare")
	v.SetDefault("amqp.queue", "comparisons")

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.0-flash")

	v.SetDefault("categories.file", "categories.yaml")
	v.SetDefault("categories.custom_file", "custom_categories.yaml")

	v.SetDefault("server.port", 8080)
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", c.Log.Format))
	}
	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("CSV delimiter must be a single character, got: %q", c.CSV.Delimiter))
	}

	if c.Converter.URL != "" {
		if err := checkURL(c.Converter.URL, "http", "https"); err != nil {
			errs = append(errs, fmt.Errorf("converter url: %w", err))
		}
	}
	if c.Converter.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("converter timeout must be positive, got: %s", c.Converter.Timeout))
	}
	if c.Converter.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("converter poll interval must be positive, got: %s", c.Converter.PollInterval))
	}
	if c.Converter.MaxPolls < 1 {
		errs = append(errs, fmt.Errorf("converter max polls must be at least 1, got: %d", c.Converter.MaxPolls))
	}

	if c.History.Enabled && strings.TrimSpace(c.History.DBPath) == "" {
		errs = append(errs, errors.New("history db path is required when history is enabled"))
	}

	if c.AMQP.URL != "" {
		if err := checkURL(c.AMQP.URL, "amqp", "amqps"); err != nil {
			errs = append(errs, fmt.Errorf("amqp url: %w", err))
		}
		if c.AMQP.Exchange == "" || c.AMQP.Queue == "" {
			errs = append(errs, errors.New("amqp exchange and queue are required when amqp url is set"))
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port must be between 1 and 65535, got: %d", c.Server.Port))
	}

	return errors.Join(errs...)
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must use one of %v", raw, schemes)
}

// AIEnabled reports whether a Gemini API key is configured.
func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != ""
}

// ConverterEnabled reports whether PDF conversion is possible.
func (c *Config) ConverterEnabled() bool {
	return c.Converter.URL != "" && c.Converter.APIKey != ""
}

// AMQPEnabled reports whether comparison events are published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQP.URL != ""
}

var envOnce sync.Once

// LoadEnv loads a .env file from the current or parent directory, once per
// process. Variables already set in the environment win.
func LoadEnv(logger logging.Logger) {
	logger = logging.OrDefault(logger)
	envOnce.Do(func() {
		for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
			if _, err := os.Stat(envFile); err != nil {
				continue
			}
			if err := godotenv.Load(envFile); err != nil {
				logger.Warn("Error loading .env file", logging.F(logging.FieldFile, envFile), logging.F(logging.FieldError, err.Error()))
				return
			}
			logger.Debug("Loaded environment variables", logging.F(logging.FieldFile, envFile))
			return
		}
		logger.Debug("No .env file found, using environment variables")
	})
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
