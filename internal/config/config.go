package config

import (
	"errors"
	"fmt"
	"time"

	"agencyhub/pkg/config"
)

type Config struct {
	Env          string                    `yaml:"env"`
	DB           config.DBConfig           `yaml:"db"`
	Redis        config.RedisConfig        `yaml:"redis"`
	MQ           config.MQConfig           `yaml:"mq"`
	JWT          config.JWTConfig          `yaml:"jwt"`
	Server       config.ServerConfig       `yaml:"server"`
	Otel         config.OtelConfig         `yaml:"otel"`
	Notification config.NotificationConfig `yaml:"notification"`
	Admin        config.AdminConfig        `yaml:"admin"`

	Leads struct {
		// flat JSON mirror of the leads table; empty disables it
		MirrorPath string `yaml:"mirror_path"`
	} `yaml:"leads"`

	ShortID struct {
		MaxAttempts       int `yaml:"max_attempts"`
		ReserveTTLMinutes int `yaml:"reserve_ttl_minutes"`
	} `yaml:"short_id"`

	Projects struct {
		ForwardOnly           bool `yaml:"forward_only"`
		ConvertLockTTLSeconds int  `yaml:"convert_lock_ttl_seconds"`
	} `yaml:"projects"`

	Outbox struct {
		IntervalSeconds int `yaml:"interval_seconds"`
		BatchSize       int `yaml:"batch_size"`
		MaxRetries      int `yaml:"max_retries"`
	} `yaml:"outbox"`
}

func defaults() Config {
	var cfg Config
	cfg.Server.Port = ":8080"
	cfg.Notification.Provider = "log"
	cfg.Notification.Mode = "direct"
	cfg.Leads.MirrorPath = "data/leads.json"
	cfg.ShortID.MaxAttempts = 10
	cfg.ShortID.ReserveTTLMinutes = 10
	cfg.Projects.ForwardOnly = true
	cfg.Projects.ConvertLockTTLSeconds = 30
	cfg.Outbox.IntervalSeconds = 5
	cfg.Outbox.BatchSize = 50
	cfg.Outbox.MaxRetries = 5
	return cfg
}

// Load reads config/<CONFIG_ENV>.yaml over base.yaml, applies environment
// overrides and validates the result.
func Load() (*Config, error) {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")
	return LoadFrom(env, configDir)
}

func LoadFrom(env, configDir string) (*Config, error) {
	cfg := defaults()
	if err := config.Decode(env, configDir, &cfg); err != nil {
		return nil, err
	}
	if cfg.Env == "" {
		cfg.Env = env
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideOtelFromEnv(&cfg.Otel)
	config.OverrideNotificationFromEnv(&cfg.Notification)
	config.OverrideAdminFromEnv(&cfg.Admin)
	if path := config.GetEnv("LEADS_MIRROR_PATH", ""); path != "" {
		cfg.Leads.MirrorPath = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DB.Host == "" || c.DB.Name == "" {
		errs = append(errs, errors.New("db.host and db.name are required"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Admin.Username == "" || c.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("admin.username and admin.password_hash are required"))
	}
	if c.Notification.BusinessNumber == "" {
		errs = append(errs, errors.New("notification.business_number is required"))
	}
	switch c.Notification.Mode {
	case "direct":
	case "queue":
		if c.MQ.URL == "" {
			errs = append(errs, errors.New("mq.url is required in queue notification mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("notification.mode must be direct or queue, got %q", c.Notification.Mode))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) ReserveTTL() time.Duration {
	return time.Duration(c.ShortID.ReserveTTLMinutes) * time.Minute
}

func (c *Config) ConvertLockTTL() time.Duration {
	return time.Duration(c.Projects.ConvertLockTTLSeconds) * time.Second
}

func (c *Config) OutboxInterval() time.Duration {
	return time.Duration(c.Outbox.IntervalSeconds) * time.Second
}
