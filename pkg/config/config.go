package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/dense-analysis/pie/pkg/models"
)

// DefaultPath is the configuration file read when no --config flag is given.
const DefaultPath = "config.yaml"

// Config holds all configuration for pie.
// Configuration can come from a YAML (or TOML/JSON) file and environment variables.
// Environment variables always override file values for fields that support both.
// Secrets (database password, API keys, tokens) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// HTTP server configuration for `pie serve`
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`

	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	GitHub     GitHubConfig     `yaml:"github"`
	Similarity SimilarityConfig `yaml:"similarity"`
	Ingest     IngestConfig     `yaml:"ingest"`
}

// DatabaseConfig holds PostgreSQL (pgvector) connection configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"pie"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"pie"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
}

// EmbeddingConfig describes the OpenAI-compatible embedding endpoint.
// Every vector in one database must come from the same base_url/model/dimensions.
type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url" env:"EMBEDDING_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string `yaml:"model" env:"EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	APIKey  string `yaml:"-" env:"EMBEDDING_API_KEY"` // Secret - not in YAML
	// Dimensions is the vector length. 0 (the default) discovers it from the
	// model at startup and omits the dimensions request parameter.
	Dimensions int `yaml:"dimensions" env:"EMBEDDING_DIMENSIONS"`
	// Language selects the sentence boundary rules used for descriptions and comments.
	Language string `yaml:"language" env:"EMBEDDING_LANGUAGE" env-default:"english"`
	// MaxBatchSize caps how many sentences are sent in one embeddings request.
	MaxBatchSize int `yaml:"max_batch_size" env:"EMBEDDING_MAX_BATCH_SIZE" env-default:"64"`
}

// GitHubConfig lists the GitHub repositories to ingest.
type GitHubConfig struct {
	Token string `yaml:"-" env:"GITHUB_TOKEN"` // Secret - not in YAML
	// APIURL overrides the REST API root (GitHub Enterprise). Empty uses api.github.com.
	APIURL string       `yaml:"api_url" env:"GITHUB_API_URL"`
	Repos  []RepoConfig `yaml:"repos"`
}

// RepoConfig names one GitHub repository.
type RepoConfig struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

// SimilarityConfig holds the default thresholds for the similarity matcher.
// A threshold set neither in the file nor in the environment is 0.2. The
// defaults are applied by Load rather than env-default so an explicit 0 is kept.
type SimilarityConfig struct {
	MaxTitleDistance       float64 `yaml:"max_title_distance" toml:"max_title_distance" env:"SIMILARITY_MAX_TITLE_DISTANCE"`
	MaxDescriptionDistance float64 `yaml:"max_description_distance" toml:"max_description_distance" env:"SIMILARITY_MAX_DESCRIPTION_DISTANCE"`
}

// Thresholds converts the configuration into matcher thresholds.
func (c SimilarityConfig) Thresholds() models.SimilarityThresholds {
	return models.SimilarityThresholds{
		MaxTitleDistance:       c.MaxTitleDistance,
		MaxDescriptionDistance: c.MaxDescriptionDistance,
	}
}

// IngestConfig controls the ingestion driver.
type IngestConfig struct {
	// Concurrency is how many projects are ingested at once. Records within a
	// project are always ingested sequentially.
	Concurrency int `yaml:"concurrency" env:"INGEST_CONCURRENCY" env-default:"1"`
	// ContinueOnError skips records that fail instead of aborting the project.
	ContinueOnError bool `yaml:"continue_on_error" env:"INGEST_CONTINUE_ON_ERROR" env-default:"false"`
}

// Load reads configuration from path with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// A missing file at path is not an error: configuration then comes from the
// environment and defaults only.
func Load(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if path == "" {
		path = DefaultPath
	}

	var fileKeys map[string]any
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		keys, err := readFileKeys(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		fileKeys = keys
	case errors.Is(statErr, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to stat %s: %w", path, statErr)
	}

	cfg.applySimilarityDefaults(fileKeys)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applySimilarityDefaults fills in thresholds that were not configured.
// cleanenv cannot tell an explicit 0 from an absent value, so presence is
// checked against the raw file keys and the environment.
func (c *Config) applySimilarityDefaults(fileKeys map[string]any) {
	defaults := models.DefaultSimilarityThresholds()
	if !isConfigured(fileKeys, "SIMILARITY_MAX_TITLE_DISTANCE", "similarity", "max_title_distance") {
		c.Similarity.MaxTitleDistance = defaults.MaxTitleDistance
	}
	if !isConfigured(fileKeys, "SIMILARITY_MAX_DESCRIPTION_DISTANCE", "similarity", "max_description_distance") {
		c.Similarity.MaxDescriptionDistance = defaults.MaxDescriptionDistance
	}
}

// readFileKeys decodes the configuration file into a generic map. YAML and
// JSON go through yaml.v3, TOML through BurntSushi/toml, matching the formats
// cleanenv accepts.
func readFileKeys(path string) (map[string]any, error) {
	keys := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &keys); err != nil {
			return nil, err
		}
	case ".yaml", ".yml", ".json":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &keys); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// isConfigured reports whether envKey is set to a non-empty value or the
// nested file key path exists.
func isConfigured(fileKeys map[string]any, envKey string, path ...string) bool {
	if value, ok := os.LookupEnv(envKey); ok && value != "" {
		return true
	}
	current := fileKeys
	for i, key := range path {
		value, ok := current[key]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		if current, ok = value.(map[string]any); !ok {
			return false
		}
	}
	return false
}

// Validate checks values that cleanenv cannot check on its own.
func (c *Config) Validate() error {
	if err := c.Similarity.Thresholds().Validate(); err != nil {
		return fmt.Errorf("similarity: %w", err)
	}
	if c.Ingest.Concurrency < 1 {
		return fmt.Errorf("ingest.concurrency must be at least 1")
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative")
	}
	if c.Embedding.MaxBatchSize < 1 {
		return fmt.Errorf("embedding.max_batch_size must be at least 1")
	}
	if strings.TrimSpace(c.Embedding.Model) == "" {
		return fmt.Errorf("embedding.model is required")
	}
	for i, repo := range c.GitHub.Repos {
		if strings.TrimSpace(repo.Owner) == "" || strings.TrimSpace(repo.Name) == "" {
			return fmt.Errorf("github.repos[%d] needs both owner and name", i)
		}
	}
	return nil
}

// Projects returns the configured GitHub repositories as projects.
func (c *GitHubConfig) Projects() []models.Project {
	projects := make([]models.Project, 0, len(c.Repos))
	for _, repo := range c.Repos {
		projects = append(projects, models.Project{
			SourceSystem: models.SourceSystemGitHub,
			Owner:        repo.Owner,
			Name:         repo.Name,
		})
	}
	return projects
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		ResolveHostForDocker(c.Host), c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
