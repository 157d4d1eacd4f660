package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	ClickHouse struct {
		Host             string        `yaml:"host" validate:"required"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"stresspulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Addr     string `yaml:"addr" validate:"required"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"stress.events"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	Fetch struct {
		IOConcurrency int           `yaml:"io_concurrency" default:"4" validate:"gt=0"`
		Timeout       time.Duration `yaml:"timeout" default:"30s"`
		Retries       int           `yaml:"retries" default:"3"`
		MaxRPS        float64       `yaml:"max_rps" default:"8"`
		Sources       []Source      `yaml:"sources" validate:"dive"`
	} `yaml:"fetch"`
	Quality struct {
		CatalogPath string `yaml:"catalog_path" default:"config/rules.yaml"`
	} `yaml:"quality"`
	Stress StressConfig `yaml:"stress"`
}

// Source describes one indicator endpoint for the fetch layer.
type Source struct {
	Code string `yaml:"code" validate:"required"`
	URL  string `yaml:"url" validate:"required,url"`
}

// StressConfig parameterizes the composite stress index engine.
type StressConfig struct {
	Universe                   string         `yaml:"universe" default:"global"`
	Schedule                   string         `yaml:"schedule" default:"0 18 * * 1-5"`
	RollingWindowDays          int            `yaml:"rolling_window_days" default:"252" validate:"gte=2"`
	MinPeriodsForRanking       int            `yaml:"min_periods_for_ranking" default:"126" validate:"gte=2"`
	RecalculationFrequencyDays int            `yaml:"recalculation_frequency_days" default:"180" validate:"gt=0"`
	EigenvalueThreshold        float64        `yaml:"eigenvalue_threshold" default:"1.0" validate:"gt=0"`
	VarianceExplainedThreshold float64        `yaml:"variance_explained_threshold" default:"0.80" validate:"gt=0,lte=1"`
	Smoothing                  struct {
		Method string `yaml:"method" default:"ema" validate:"oneof=ema sma"`
		Window int    `yaml:"window" default:"5" validate:"gte=1"`
	} `yaml:"smoothing"`
	MACD struct {
		Enabled bool `yaml:"enabled" default:"true"`
		Fast    int  `yaml:"fast" default:"12" validate:"gte=1"`
		Slow    int  `yaml:"slow" default:"26" validate:"gte=1"`
		Signal  int  `yaml:"signal" default:"9" validate:"gte=1"`
	} `yaml:"macd"`
	Thresholds struct {
		Moderate float64 `yaml:"moderate" default:"50"`
		High     float64 `yaml:"high" default:"70"`
		Extreme  float64 `yaml:"extreme" default:"85"`
	} `yaml:"thresholds"`
	Directions map[string]int `yaml:"directions" validate:"required"`
}

var validate = validator.New()

// Load reads, defaults, and validates a YAML configuration file. A config
// that fails any check is rejected whole; nothing is partially applied.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RULE_CATALOG"); v != "" {
		c.Quality.CatalogPath = v
	}
	return c, nil
}

// Validate enforces the cross-field invariants the struct tags cannot.
func (c *Config) Validate() error {
	s := c.Stress
	if s.MinPeriodsForRanking > s.RollingWindowDays {
		return fmt.Errorf("stress.min_periods_for_ranking %d exceeds rolling_window_days %d",
			s.MinPeriodsForRanking, s.RollingWindowDays)
	}
	t := s.Thresholds
	if !(t.Moderate < t.High && t.High < t.Extreme) {
		return fmt.Errorf("stress.thresholds must be strictly increasing, got [%g, %g, %g]",
			t.Moderate, t.High, t.Extreme)
	}
	if s.MACD.Enabled && s.MACD.Fast >= s.MACD.Slow {
		return fmt.Errorf("stress.macd.fast %d must be below slow %d", s.MACD.Fast, s.MACD.Slow)
	}
	for code, sign := range s.Directions {
		if sign != 1 && sign != -1 {
			return fmt.Errorf("stress.directions.%s must be +1 or -1, got %d", code, sign)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
