package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// Provider kinds.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds the lexai configuration.
type Config struct {
	HTTP          HTTPConfig                    `yaml:"http"`
	Auth          AuthConfig                    `yaml:"auth"`
	Logging       LoggingConfig                 `yaml:"logging"`
	Providers     ProvidersConfig               `yaml:"providers"`
	Retrieval     RetrievalConfig               `yaml:"retrieval"`
	Corpus        CorpusConfig                  `yaml:"corpus"`
	Cache         CacheConfig                   `yaml:"cache"`
	Jurisdictions map[string]JurisdictionConfig `yaml:"jurisdictions"`
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

// ProvidersConfig holds the embedding and generation provider settings.
type ProvidersConfig struct {
	CallTimeoutSec int                      `yaml:"call_timeout_sec"`
	Embedding      EmbeddingProviderConfig  `yaml:"embedding"`
	Generation     GenerationProviderConfig `yaml:"generation"`
}

// EmbeddingProviderConfig holds query embedding settings.
type EmbeddingProviderConfig struct {
	Kind             string `yaml:"kind"` // openai (default), ollama
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"` // 0 = model default
	QueryInstruction string `yaml:"query_instruction"`
}

// GenerationProviderConfig holds chat completion settings.
// Pointer fields distinguish "unset" from an explicit zero.
type GenerationProviderConfig struct {
	Kind             string   `yaml:"kind"` // openai (default), ollama
	APIKey           string   `yaml:"api_key"`
	BaseURL          string   `yaml:"base_url"`
	Model            string   `yaml:"model"`
	Temperature      *float32 `yaml:"temperature"`
	TopP             *float32 `yaml:"top_p"`
	MaxTokens        int      `yaml:"max_tokens"`
	FrequencyPenalty float32  `yaml:"frequency_penalty"`
	PresencePenalty  float32  `yaml:"presence_penalty"`
}

// RetrievalConfig holds ranking and prompt settings.
type RetrievalConfig struct {
	TopK         int    `yaml:"top_k"`
	RoleTemplate string `yaml:"role_template"` // empty = built-in assistant template
}

// CorpusConfig holds corpus access settings.
type CorpusConfig struct {
	Cache CorpusCacheConfig `yaml:"cache"`
	SQL   SQLConfig         `yaml:"sql"`
}

// CorpusCacheConfig enables the in-process corpus cache.
type CorpusCacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"` // 0 = never expire
}

// SQLConfig holds the database used by sql:// corpus locators.
type SQLConfig struct {
	Driver string `yaml:"driver"` // pgx (default), sqlite
	DSN    string `yaml:"dsn"`
}

// CacheConfig holds the Redis/Valkey connection used for the query embedding
// cache and redis:// corpus locators.
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings. Empty Addrs disables Redis.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	EmbeddingTTLSec  int      `yaml:"embedding_ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// JurisdictionConfig maps a jurisdiction to its corpus and persona.
type JurisdictionConfig struct {
	Corpus          string   `yaml:"corpus"`
	RoleDescription string   `yaml:"role_description"`
	Examples        []string `yaml:"examples"` // sample questions shown by the front ends
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substitutes ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// ApplyDefaults fills empty fields with default values.
// Generation defaults mirror the original GPT-4 settings.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 7860
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Providers.CallTimeoutSec <= 0 {
		c.Providers.CallTimeoutSec = 30
	}

	emb := &c.Providers.Embedding
	if emb.Kind == "" {
		emb.Kind = ProviderOpenAI
	}
	if emb.Model == "" {
		emb.Model = "text-embedding-ada-002"
	}

	gen := &c.Providers.Generation
	if gen.Kind == "" {
		gen.Kind = ProviderOpenAI
	}
	if gen.Model == "" {
		gen.Model = "gpt-4"
	}
	if gen.Temperature == nil {
		t := float32(0.7)
		gen.Temperature = &t
	}
	if gen.TopP == nil {
		p := float32(1)
		gen.TopP = &p
	}
	if gen.MaxTokens <= 0 {
		gen.MaxTokens = 120
	}

	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 3
	}
	if c.Corpus.SQL.Driver == "" {
		c.Corpus.SQL.Driver = "pgx"
	}
	if c.Cache.Redis.ReadinessTimeout <= 0 {
		c.Cache.Redis.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if err := validateProvider("providers.embedding", c.Providers.Embedding.Kind, c.Providers.Embedding.APIKey); err != nil {
		return err
	}
	if err := validateProvider("providers.generation", c.Providers.Generation.Kind, c.Providers.Generation.APIKey); err != nil {
		return err
	}
	switch c.Corpus.SQL.Driver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("corpus.sql.driver must be \"pgx\" or \"sqlite\", got %q", c.Corpus.SQL.Driver)
	}

	if len(c.Jurisdictions) == 0 {
		return fmt.Errorf("at least one jurisdiction is required")
	}
	for _, name := range c.JurisdictionNames() {
		j := c.Jurisdictions[name]
		if j.Corpus == "" {
			return fmt.Errorf("jurisdictions.%s.corpus is required", name)
		}
		if strings.TrimSpace(j.RoleDescription) == "" {
			return fmt.Errorf("jurisdictions.%s.role_description is required", name)
		}
		if strings.HasPrefix(j.Corpus, "sql://") && c.Corpus.SQL.DSN == "" {
			return fmt.Errorf("jurisdictions.%s uses a sql:// corpus but corpus.sql.dsn is empty", name)
		}
		if strings.HasPrefix(j.Corpus, "redis://") && len(c.Cache.Redis.Addrs) == 0 {
			return fmt.Errorf("jurisdictions.%s uses a redis:// corpus but cache.redis.addrs is empty", name)
		}
	}
	return nil
}

// JurisdictionNames returns the configured jurisdiction names in sorted order.
func (c *Config) JurisdictionNames() []string {
	names := make([]string, 0, len(c.Jurisdictions))
	for name := range c.Jurisdictions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JurisdictionTable builds the immutable jurisdiction table used by the retrieval service.
func (c *Config) JurisdictionTable() (domain.JurisdictionTable, error) {
	js := make([]domain.Jurisdiction, 0, len(c.Jurisdictions))
	for _, name := range c.JurisdictionNames() {
		jc := c.Jurisdictions[name]
		js = append(js, domain.Jurisdiction{
			Name:            name,
			CorpusLocator:   jc.Corpus,
			RoleDescription: jc.RoleDescription,
		})
	}
	t, err := domain.NewJurisdictionTable(js...)
	if err != nil {
		return domain.JurisdictionTable{}, fmt.Errorf("jurisdictions: %w", err)
	}
	return t, nil
}

func validateProvider(path, kind, apiKey string) error {
	switch kind {
	case ProviderOpenAI:
		if apiKey == "" {
			return fmt.Errorf("%s.api_key is required for the openai provider", path)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("%s.kind must be %q or %q, got %q", path, ProviderOpenAI, ProviderOllama, kind)
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
