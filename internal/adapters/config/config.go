package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultOrigin is always allowed by CORS
const DefaultOrigin = "http://localhost:3000"

// Config represents application configuration
type Config struct {
	Server   ServerConfig
	News     NewsConfig
	Model    ModelConfig
	Training TrainingConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ServerConfig represents HTTP API settings
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" default:"8000"`
	AllowedOrigins  string        `envconfig:"ALLOWED_ORIGINS" default:""`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"25s"`
}

// NewsConfig represents news ingestion configuration
type NewsConfig struct {
	DataDir           string        `envconfig:"NEWS_DATA_DIR" default:"data/raw"`
	Queries           []string      `envconfig:"NEWS_QUERIES" default:"MSME,SME India,Business Loan,Economy"`
	Languages         []string      `envconfig:"NEWS_LANGUAGES" default:"en,hi,bn,te,mr,ta,ur,gu,kn,ml,or,pa,as,mai,sat,ks,ne,doi,gom,sd,mni,sa"`
	IngestOnStartup   bool          `envconfig:"NEWS_INGEST_ON_STARTUP" default:"true"`
	IngestInterval    time.Duration `envconfig:"NEWS_INGEST_INTERVAL" default:"0"`
	FetchConcurrency  int           `envconfig:"NEWS_FETCH_CONCURRENCY" default:"4"`
	RequestsPerSecond float64       `envconfig:"NEWS_REQUESTS_PER_SECOND" default:"5"`
	FetchTimeout      time.Duration `envconfig:"NEWS_FETCH_TIMEOUT" default:"20s"`
	StatsInterval     time.Duration `envconfig:"NEWS_STATS_INTERVAL" default:"5m"`
}

// ModelConfig represents inference model settings
type ModelConfig struct {
	Path      string `envconfig:"MODEL_PATH" default:"model_output"`
	MaxLength int    `envconfig:"MODEL_MAX_LENGTH" default:"512"`
}

// TrainingConfig represents fine-tuning hyperparameters
type TrainingConfig struct {
	LearningRate float64 `envconfig:"TRAIN_LEARNING_RATE" default:"0.05"`
	WeightDecay  float64 `envconfig:"TRAIN_WEIGHT_DECAY" default:"0.01"`
	Epochs       int     `envconfig:"TRAIN_EPOCHS" default:"3"`
	BatchSize    int     `envconfig:"TRAIN_BATCH_SIZE" default:"2"`
	MaxLength    int     `envconfig:"TRAIN_MAX_LENGTH" default:"128"`
	Seed         int64   `envconfig:"TRAIN_SEED" default:"42"`
	OutputDir    string  `envconfig:"TRAIN_OUTPUT_DIR" default:"model_output"`
}

// RedisConfig represents the optional prediction cache and ingestion lock
type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"1h"`
}

// DatabaseConfig represents the optional Postgres article mirror
type DatabaseConfig struct {
	Enabled        bool   `envconfig:"DB_ENABLED" default:"false"`
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	Name           string `envconfig:"DB_NAME" default:"finvani"`
	User           string `envconfig:"DB_USER" default:""`
	Password       string `envconfig:"DB_PASSWORD" default:""`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_PATH" default:"./migrations"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load reads configuration from environment variables, after loading .env if present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.News.DataDir == "" {
		return fmt.Errorf("news data dir is required")
	}
	if c.News.FetchConcurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1")
	}
	if c.News.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive")
	}
	if c.News.IngestInterval < 0 {
		return fmt.Errorf("ingest interval must not be negative")
	}
	if c.News.StatsInterval < 0 {
		return fmt.Errorf("stats interval must not be negative")
	}
	if c.Model.MaxLength < 2 {
		return fmt.Errorf("model max length must be at least 2")
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive")
	}
	if c.Training.BatchSize < 1 || c.Training.Epochs < 1 {
		return fmt.Errorf("batch size and epochs must be at least 1")
	}
	if c.Database.Enabled && c.Database.User == "" {
		return fmt.Errorf("database user is required when DB_ENABLED=true")
	}

	return nil
}

// Origins returns the CORS allow-list: the localhost default merged with
// ALLOWED_ORIGINS (comma separated, trimmed, empties dropped)
func (c *ServerConfig) Origins() []string {
	origins := []string{DefaultOrigin}
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == DefaultOrigin {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Addr returns host:port of the Redis server
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
