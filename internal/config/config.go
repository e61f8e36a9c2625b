package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/assessment"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Auth struct {
		// tenant -> API key; empty map disables auth (local dev)
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey      string `yaml:"apiKey"`
		VisionModel string `yaml:"visionModel"`
		TextModel   string `yaml:"textModel"`
	} `yaml:"openai"`

	Analysis struct {
		MaxConcurrency int                 `yaml:"maxConcurrency"`
		BatchSize      int                 `yaml:"batchSize"`
		MaxRetries     int                 `yaml:"maxRetries"`
		CacheTTLHours  int                 `yaml:"cacheTTLHours"`
		TimeoutSeconds int                 `yaml:"timeoutSeconds"`
		MaxImages      int                 `yaml:"maxImages"`
		Keywords       assessment.Keywords `yaml:"keywords"`
	} `yaml:"analysis"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	// zero means "use default"; an explicit negative is a config mistake,
	// not something to silently clamp
	if c.Analysis.BatchSize < 0 {
		return fmt.Errorf("analysis.batchSize must be at least 1")
	}
	if c.Analysis.MaxConcurrency < 0 {
		return fmt.Errorf("analysis.maxConcurrency must be at least 1")
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// CacheTTL returns the result-cache TTL, default 24h
func (c *Config) CacheTTL() time.Duration {
	hours := c.Analysis.CacheTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// AnalysisTimeout returns the per-request orchestration deadline
func (c *Config) AnalysisTimeout() time.Duration {
	if c.Analysis.TimeoutSeconds <= 0 {
		return 0 // orchestrator default applies
	}
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}
