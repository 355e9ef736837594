package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Search  SearchConfig  `yaml:"search"`
	Display DisplayConfig `yaml:"display"`
	Cache   CacheConfig   `yaml:"cache"`
	Options OptionsConfig `yaml:"options"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig holds catalog API configuration
type APIConfig struct {
	BaseURL      string        `yaml:"base_url" envconfig:"API_BASE_URL" validate:"required,url"`
	APIKey       string        `yaml:"api_key" envconfig:"TMDB_API_KEY" validate:"required"`
	ImageBaseURL string        `yaml:"image_base_url" envconfig:"IMAGE_BASE_URL" validate:"required,url"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"API_TIMEOUT" validate:"gt=0"`
}

// SearchConfig holds search input behaviour
type SearchConfig struct {
	Debounce     time.Duration `yaml:"debounce" envconfig:"SEARCH_DEBOUNCE" validate:"gt=0"`
	TrendingSize int           `yaml:"trending_size" envconfig:"TRENDING_SIZE" validate:"gte=1"`
}

// DisplayConfig holds rendering settings
type DisplayConfig struct {
	Placeholder string `yaml:"placeholder" envconfig:"POSTER_PLACEHOLDER" validate:"required"`
}

// CacheConfig holds response cache settings
type CacheConfig struct {
	Backend string        `yaml:"backend" envconfig:"CACHE_BACKEND" validate:"oneof=none memory sqlite"`
	Path    string        `yaml:"path" envconfig:"CACHE_PATH" validate:"required_if=Backend sqlite"`
	TTL     time.Duration `yaml:"ttl" envconfig:"CACHE_TTL" validate:"gt=0"`
	Size    int           `yaml:"size" envconfig:"CACHE_SIZE" validate:"gte=1"`
}

// OptionsConfig holds additional options
type OptionsConfig struct {
	MaxAttempts     int           `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" validate:"gte=1"`
	InitialBackoff  time.Duration `yaml:"initial_backoff" envconfig:"INITIAL_BACKOFF" validate:"gt=0"`
	RateLimit       float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT" validate:"gte=0"`
	RefreshInterval time.Duration `yaml:"refresh_interval" envconfig:"REFRESH_INTERVAL" validate:"gte=0"`
	WatchConfig     bool          `yaml:"watch_config" envconfig:"WATCH_CONFIG"`
}

// LogConfig holds logging settings
type LogConfig struct {
	File   string `yaml:"file" envconfig:"LOG_FILE"`
	Level  string `yaml:"level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`
}

// Default returns the configuration used for every key not set elsewhere.
func Default() Config {
	return Config{
		API: APIConfig{
			ImageBaseURL: "https://image.tmdb.org/t/p/w500",
			Timeout:      30 * time.Second,
		},
		Search: SearchConfig{
			Debounce:     500 * time.Millisecond,
			TrendingSize: 5,
		},
		Display: DisplayConfig{
			Placeholder: "./no-movie.png",
		},
		Cache: CacheConfig{
			Backend: "none",
			Path:    "~/.cache/moviefinder/cache.db",
			TTL:     10 * time.Minute,
			Size:    256,
		},
		Options: OptionsConfig{
			MaxAttempts:    1,
			InitialBackoff: time.Second,
		},
		Log: LogConfig{
			File:   filepath.Join(os.TempDir(), "moviefinder.log"),
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and the process environment,
// in increasing order of precedence. It fails when the result is invalid.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(expandHome(path), &cfg); err != nil {
			return nil, err
		}
	}

	// load default .env file, ignore the error
	_ = godotenv.Load()

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.Cache.Path = expandHome(cfg.Cache.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate reports missing or malformed settings.
func (c *Config) Validate() error {
	if c.API.APIKey == "your_api_key_here" {
		return errors.New("TMDB API key is required. Get one from https://www.themoviedb.org/settings/api")
	}

	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Drop the leading "Config." from the namespace.
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		parts = append(parts, field+" failed on "+fe.Tag())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(parts, "; "))
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
