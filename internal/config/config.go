// Package config provides configuration loading and structs for the kiku server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kiku/internal/models"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Window    WindowConfig    `yaml:"window"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StorageConfig holds the database location. Persist defaults to true when unset.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	Persist      *bool  `yaml:"persist"`
}

// PersistOrDefault returns whether processed videos are stored; defaults to true when unset.
func (s *StorageConfig) PersistOrDefault() bool {
	if s.Persist != nil {
		return *s.Persist
	}
	return true
}

// Embedding providers.
const (
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// EmbeddingConfig selects and configures the embedding model.
type EmbeddingConfig struct {
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	ModelPath         string  `yaml:"model_path"`
	TokenizerPath     string  `yaml:"tokenizer_path"`
	RuntimePath       string  `yaml:"runtime_path"`
	Dimensions        int     `yaml:"dimensions"`
	MaxTokens         int     `yaml:"max_tokens"`
	CacheSize         int     `yaml:"cache_size"`
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// SynthesisConfig configures the generative model used to answer questions.
// Temperature is a pointer so that an explicit 0 survives defaulting.
type SynthesisConfig struct {
	Provider          string   `yaml:"provider"`
	BaseURL           string   `yaml:"base_url"`
	Model             string   `yaml:"model"`
	Temperature       *float64 `yaml:"temperature"`
	MaxTokens         int      `yaml:"max_tokens"`
	APIKeyEnv         string   `yaml:"api_key_env"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	TimeoutSeconds    int      `yaml:"timeout_seconds"`
	// Strict returns synthesis errors to the caller instead of an error answer.
	Strict bool `yaml:"strict"`
}

// TemperatureOrDefault returns the configured temperature, or 0.7 when unset.
func (s *SynthesisConfig) TemperatureOrDefault() float64 {
	if s.Temperature != nil {
		return *s.Temperature
	}
	return DefaultTemperature
}

// Context strategies.
const (
	StrategyRetrieval = "retrieval"
	StrategyWindowed  = "windowed"
)

// Chunk units.
const (
	UnitChars = "chars"
	UnitWords = "words"
)

// RetrievalConfig holds chunking and top-k settings, and the strategy used to build prompts.
type RetrievalConfig struct {
	Strategy     string `yaml:"strategy"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	ChunkUnit    string `yaml:"chunk_unit"`
	TopK         int    `yaml:"top_k"`
}

// WindowConfig holds the windowed strategy limits.
type WindowConfig struct {
	MaxChars int `yaml:"max_chars"`
	MaxTurns int `yaml:"max_turns"`
}

// WatchConfig holds the transcript inbox settings. Files dropped into Directory are processed.
type WatchConfig struct {
	Directory  string   `yaml:"directory"`
	Extensions []string `yaml:"extensions"`
	DebounceMS int      `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.TokenizerPath = expandPath(cfg.Embedding.TokenizerPath, configDir)
	if cfg.Embedding.RuntimePath != "" {
		cfg.Embedding.RuntimePath = expandPath(cfg.Embedding.RuntimePath, configDir)
	}
	if cfg.Watch.Directory != "" {
		cfg.Watch.Directory = expandPath(cfg.Watch.Directory, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the settings that would otherwise fail later in the pipeline.
// All failures wrap models.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	r := c.Retrieval
	if r.ChunkSize <= 0 {
		return invalid("retrieval.chunk_size must be positive, got %d", r.ChunkSize)
	}
	if r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return invalid("retrieval.chunk_overlap must be in [0, %d), got %d", r.ChunkSize, r.ChunkOverlap)
	}
	if r.ChunkUnit != UnitChars && r.ChunkUnit != UnitWords {
		return invalid("retrieval.chunk_unit must be %q or %q, got %q", UnitChars, UnitWords, r.ChunkUnit)
	}
	if r.TopK <= 0 {
		return invalid("retrieval.top_k must be positive, got %d", r.TopK)
	}
	if r.Strategy != StrategyRetrieval && r.Strategy != StrategyWindowed {
		return invalid("retrieval.strategy must be %q or %q, got %q", StrategyRetrieval, StrategyWindowed, r.Strategy)
	}
	if c.Window.MaxChars <= 0 {
		return invalid("window.max_chars must be positive, got %d", c.Window.MaxChars)
	}
	if c.Window.MaxTurns < 0 {
		return invalid("window.max_turns must not be negative, got %d", c.Window.MaxTurns)
	}
	switch c.Embedding.Provider {
	case ProviderONNX, ProviderOpenAI, ProviderMock:
	default:
		return invalid("embedding.provider %q is not supported", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return invalid("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	switch c.Synthesis.Provider {
	case ProviderOpenAI, ProviderMock:
	default:
		return invalid("synthesis.provider %q is not supported", c.Synthesis.Provider)
	}
	if t := c.Synthesis.TemperatureOrDefault(); t < 0 || t > 2 {
		return invalid("synthesis.temperature must be in [0, 2], got %v", t)
	}
	if c.Synthesis.MaxTokens <= 0 {
		return invalid("synthesis.max_tokens must be positive, got %d", c.Synthesis.MaxTokens)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), models.ErrInvalidConfiguration)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
