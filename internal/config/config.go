package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shelfscan/prodex/internal/domain"
)

// Config holds the prodex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
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

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // label used in logs and metrics
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	CacheTTLSec      int    `yaml:"cache_ttl_sec"` // embedding cache TTL, 0 = 24h
}

// SearchConfig holds similarity search and merge settings.
// Field weights and classification keyword lists are empirically chosen
// defaults; treat them as tunables, not derived values.
type SearchConfig struct {
	DefaultLimit        int      `yaml:"default_limit"`
	CandidateMultiplier int      `yaml:"candidate_multiplier"` // candidate pool = limit * multiplier
	MinScore            float64  `yaml:"min_score"`            // minimum cosine similarity, default 0.0
	IngredientsWeight   float64  `yaml:"ingredients_weight"`
	NameWeight          float64  `yaml:"name_weight"`
	AllergensWeight     float64  `yaml:"allergens_weight"`
	HNSWM               int      `yaml:"hnsw_m"`
	HNSWEFConstruct     int      `yaml:"hnsw_ef_construction"`
	AllergenKeywords    []string `yaml:"allergen_keywords"`
	IngredientKeywords  []string `yaml:"ingredient_keywords"`
}

// CacheConfig holds barcode lookup cache settings.
type CacheConfig struct {
	TTLSec      int `yaml:"ttl_sec"`       // lookup cache entry TTL (default 300)
	SlowQueryMS int `yaml:"slow_query_ms"` // repository SLA threshold (default 100)
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// DefaultAllergenKeywords trigger allergen-field targeting during query classification.
func DefaultAllergenKeywords() []string {
	return []string{
		"allergy", "allergen", "allergic", "nut", "nuts", "peanut", "peanuts",
		"gluten", "dairy", "milk", "soy", "egg", "eggs", "shellfish", "wheat",
		"sesame", "lactose",
	}
}

// DefaultIngredientKeywords trigger ingredients-field targeting during query classification.
func DefaultIngredientKeywords() []string {
	return []string{
		"ingredient", "ingredients", "contains", "made with", "made-with",
		"organic", "recipe", "additive", "preservative",
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = domain.EmbeddingDim
	}
	if c.Embedding.CacheTTLSec <= 0 {
		c.Embedding.CacheTTLSec = 24 * 60 * 60
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 20
	}
	if c.Search.CandidateMultiplier <= 0 {
		c.Search.CandidateMultiplier = 3
	}
	if c.Search.IngredientsWeight <= 0 {
		c.Search.IngredientsWeight = 1.0
	}
	if c.Search.NameWeight <= 0 {
		c.Search.NameWeight = 0.8
	}
	if c.Search.AllergensWeight <= 0 {
		c.Search.AllergensWeight = 0.6
	}
	if c.Search.HNSWM <= 0 {
		c.Search.HNSWM = 32
	}
	if c.Search.HNSWEFConstruct <= 0 {
		c.Search.HNSWEFConstruct = 400
	}
	if len(c.Search.AllergenKeywords) == 0 {
		c.Search.AllergenKeywords = DefaultAllergenKeywords()
	}
	if len(c.Search.IngredientKeywords) == 0 {
		c.Search.IngredientKeywords = DefaultIngredientKeywords()
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.SlowQueryMS <= 0 {
		c.Cache.SlowQueryMS = 100
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
	if c.Search.MinScore < 0 || c.Search.MinScore > 1 {
		return fmt.Errorf("search.min_score must be in [0,1], got %g", c.Search.MinScore)
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
