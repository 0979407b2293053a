package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	HTTP          HTTPConfig          `yaml:"http"`
	PicPerfect    PicPerfectConfig    `yaml:"pic_perfect"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig holds API server configuration.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	RateLimit       float64       `yaml:"rate_limit"` // requests per second per IP
	RateBurst       int           `yaml:"rate_burst"`
	TrustProxy      bool          `yaml:"trust_proxy"` // key rate limits on X-Forwarded-For
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PicPerfectConfig holds the game rules.
type PicPerfectConfig struct {
	DefaultChallengeID     string `yaml:"default_challenge_id"`
	MaxVotesPerTeam        int    `yaml:"max_votes_per_team"`
	DeceptionPointsPerVote int    `yaml:"deception_points_per_vote"`
	DiscoveryPoints        int    `yaml:"discovery_points"`
	PoolSecret             string `yaml:"pool_secret"` // keys voting pool entry ids
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// Default game rules.
const (
	DefaultChallengeID            = "pic-perfect"
	DefaultMaxVotesPerTeam        = 3
	DefaultDeceptionPointsPerVote = 3
	DefaultDiscoveryPoints        = 10
)

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT value: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_BURST value: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRUST_PROXY value: %w", err)
		}
		cfg.HTTP.TrustProxy = b
	}
	if v := os.Getenv("PIC_PERFECT_CHALLENGE_ID"); v != "" {
		cfg.PicPerfect.DefaultChallengeID = v
	}
	if v := os.Getenv("PIC_PERFECT_MAX_VOTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PIC_PERFECT_MAX_VOTES value: %w", err)
		}
		cfg.PicPerfect.MaxVotesPerTeam = n
	}
	if v := os.Getenv("PIC_PERFECT_POOL_SECRET"); v != "" {
		cfg.PicPerfect.PoolSecret = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.RateLimit <= 0 {
		c.HTTP.RateLimit = 10
	}
	if c.HTTP.RateBurst <= 0 {
		c.HTTP.RateBurst = 20
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.PicPerfect.DefaultChallengeID == "" {
		c.PicPerfect.DefaultChallengeID = DefaultChallengeID
	}
	if c.PicPerfect.MaxVotesPerTeam <= 0 {
		c.PicPerfect.MaxVotesPerTeam = DefaultMaxVotesPerTeam
	}
	if c.PicPerfect.DeceptionPointsPerVote <= 0 {
		c.PicPerfect.DeceptionPointsPerVote = DefaultDeceptionPointsPerVote
	}
	if c.PicPerfect.DiscoveryPoints <= 0 {
		c.PicPerfect.DiscoveryPoints = DefaultDiscoveryPoints
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName: "pic-perfect",
		Environment: appCfg.Observability.Environment,
		LogLevel:    appCfg.Observability.LogLevel,
	}
}
