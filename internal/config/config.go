package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the aptdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Search    SearchConfig    `yaml:"search"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Auth      AuthConfig      `yaml:"auth"`
	Index     IndexConfig     `yaml:"index"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds HNSW index settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
	Dimensions      int `yaml:"dimensions"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey        string  `yaml:"api_key"`
	BaseURL       string  `yaml:"base_url"`
	Model         string  `yaml:"model"`
	Dimensions    int     `yaml:"dimensions"`
	RatePerSecond float64 `yaml:"rate_per_second"` // 0 = unlimited
	RateBurst     int     `yaml:"rate_burst"`
	CacheTTLSec   int     `yaml:"cache_ttl_sec"`
}

// ExtractorConfig holds the claim extraction LLM settings.
type ExtractorConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// SearchConfig holds the claim search engine settings.
type SearchConfig struct {
	RoomK             int `yaml:"room_k"`
	ApartmentK        int `yaml:"apartment_k"`
	NeighborhoodK     int `yaml:"neighborhood_k"`
	ClaimTimeoutMs    int `yaml:"claim_timeout_ms"`
	DefaultLimit      int `yaml:"default_limit"`
	MaxLimit          int `yaml:"max_limit"`
	MaxClaimsPerQuery int `yaml:"max_claims_per_query"`
}

// KFor returns the per-claim candidate count for the given hierarchy domain.
func (s SearchConfig) KFor(domain string) int {
	switch domain {
	case "room":
		return s.RoomK
	case "neighborhood":
		return s.NeighborhoodK
	default:
		return s.ApartmentK
	}
}

// IngestConfig holds the indexing pipeline settings.
type IngestConfig struct {
	EmbedWorkers int `yaml:"embed_workers"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 32
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 400
	}
	if c.Index.Dimensions <= 0 {
		c.Index.Dimensions = c.Embedding.Dimensions
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "aptdex:"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.CacheTTLSec <= 0 {
		c.Embedding.CacheTTLSec = 86400
	}
	if c.Extractor.Model == "" {
		c.Extractor.Model = "gpt-4o-mini"
	}
	if c.Extractor.APIKey == "" {
		c.Extractor.APIKey = c.Embedding.APIKey
	}
	if c.Search.RoomK <= 0 {
		c.Search.RoomK = 100
	}
	if c.Search.ApartmentK <= 0 {
		c.Search.ApartmentK = 200
	}
	if c.Search.NeighborhoodK <= 0 {
		c.Search.NeighborhoodK = 50
	}
	if c.Search.ClaimTimeoutMs <= 0 {
		c.Search.ClaimTimeoutMs = 2000
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Search.MaxClaimsPerQuery <= 0 {
		c.Search.MaxClaimsPerQuery = 64
	}
	if c.Ingest.EmbedWorkers <= 0 {
		c.Ingest.EmbedWorkers = 8
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Index.Dimensions != c.Embedding.Dimensions {
		return fmt.Errorf(
			"index.dimensions (%d) must match embedding.dimensions (%d)",
			c.Index.Dimensions, c.Embedding.Dimensions,
		)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf(
			"search.default_limit (%d) must not exceed search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
