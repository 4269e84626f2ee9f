package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Environment string `yaml:"environment" default:"dev" validate:"required"`
	Logging     struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Recorder struct {
		BaseDir               string `yaml:"base_dir" default:"logs" validate:"required"`
		Timezone              string `yaml:"timezone" default:"America/New_York"`
		RotateAtMidnight      bool   `yaml:"rotate_at_midnight" default:"true"`
		RollingHorizonsSecs   []int  `yaml:"rolling_horizons_seconds"`
		FlushEachWrite        bool   `yaml:"flush_each_write" default:"true"`
		IncludePercentColumns bool   `yaml:"include_percent_columns" default:"true"`
	} `yaml:"recorder"`
	Feed struct {
		Type         string        `yaml:"type" default:"sim" validate:"oneof=sim"`
		PollInterval time.Duration `yaml:"poll_interval" default:"1s" validate:"gt=0"`
		Seed         int64         `yaml:"seed"`
		StartA       float64       `yaml:"start_a" default:"5000"`
		StartB       float64       `yaml:"start_b" default:"16"`
		StepA        float64       `yaml:"step_a" default:"0.5"`
		StepB        float64       `yaml:"step_b" default:"0.05"`
	} `yaml:"feed"`
	Signal struct {
		HorizonSeconds int     `yaml:"horizon_seconds" default:"60" validate:"gt=0"`
		AbsAUp         float64 `yaml:"abs_a_up" default:"0.25"`
		AbsADown       float64 `yaml:"abs_a_down" default:"0.25"`
		AbsBUp         float64 `yaml:"abs_b_up" default:"0.03"`
		AbsBDown       float64 `yaml:"abs_b_down" default:"0.03"`
		PctAUp         float64 `yaml:"pct_a_up" default:"0.02"`
		PctADown       float64 `yaml:"pct_a_down" default:"0.02"`
		PctBUp         float64 `yaml:"pct_b_up" default:"0.1"`
		PctBDown       float64 `yaml:"pct_b_down" default:"0.1"`
	} `yaml:"signal"`
	Mirror struct {
		Backend string `yaml:"backend" default:"none" validate:"oneof=none kafka clickhouse"`
		Kafka   struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"indexpulse.samples"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			Compression  string        `yaml:"compression" default:"gzip"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"kafka"`
		ClickHouse struct {
			Host        string        `yaml:"host" default:"localhost"`
			Port        int           `yaml:"port" default:"9000"`
			Database    string        `yaml:"database" default:"indexpulse"`
			Table       string        `yaml:"table" default:"samples"`
			User        string        `yaml:"user" default:"default"`
			Password    string        `yaml:"password"`
			DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		} `yaml:"clickhouse"`
	} `yaml:"mirror"`
}

// Load reads a YAML configuration file, applies struct defaults and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Defaults are applied before unmarshal so an explicit false in
	// YAML is not mistaken for an unset field.
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(c.Recorder.RollingHorizonsSecs) == 0 {
		c.Recorder.RollingHorizonsSecs = []int{10, 60, 300}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides deploy-sensitive
// values from environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BASE_DIR"); v != "" {
		c.Recorder.BaseDir = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		c.Recorder.Timezone = v
	}
	if v := os.Getenv("MIRROR_BACKEND"); v != "" {
		c.Mirror.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Mirror.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.Mirror.ClickHouse.Password = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse SERVER_PORT: %w", err)
		}
		c.Server.Port = p
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks cross-field constraints the tag rules cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Mirror.Backend == "kafka" && len(c.Mirror.Kafka.Brokers) == 0 {
		return fmt.Errorf("mirror.kafka.brokers cannot be empty when backend is kafka")
	}
	return nil
}
