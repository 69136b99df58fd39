package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/leasebill/billing-engine/internal/types"
	"github.com/leasebill/billing-engine/internal/validator"
)

// Configuration is the engine's top-level configuration. The engine has no
// HTTP surface and no auth/event-streaming layer of its own (spec.md §6), so
// this is deliberately narrower than a typical service config: a database to
// talk to, and the handful of knobs a scheduler invoking the engine needs.
type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

// ServerConfig carries the one surface the engine does expose: a liveness
// port the scheduler invoking a run can poll while it's in flight. There is
// no router, no handlers beyond /healthz (spec.md §6 keeps the engine's
// transport surface out of scope otherwise).
type ServerConfig struct {
	HealthAddress string `mapstructure:"health_address" validate:"required" default:":9090"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host" validate:"required"`
	Port                   int    `mapstructure:"port" validate:"required"`
	User                   string `mapstructure:"user" validate:"required"`
	Password               string `mapstructure:"password" validate:"required"`
	DBName                 string `mapstructure:"dbname" validate:"required"`
	SSLMode                string `mapstructure:"sslmode" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"60"`
}

// BillingConfig carries the knobs a scheduled run needs that don't belong
// to any single lease: which proration method to use when none is supplied
// explicitly, and a run concurrency value. RunConcurrency is loaded but not
// read: the run orchestrator bounds its concurrency with
// service.MaxConcurrentLeases.
type BillingConfig struct {
	DefaultProrationMethod types.ProrationMethod `mapstructure:"default_proration_method" validate:"required"`
	RunConcurrency         int                   `mapstructure:"run_concurrency" default:"8"`
}

// NewConfig loads configuration the same way across environments: an
// optional .env file, a config.yaml searched in the usual places, then
// environment variables prefixed LEASEBILL_ taking precedence over both.
func NewConfig() (*Configuration, error) {
	v := viper.New()

	_ = godotenv.Load()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("LEASEBILL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return &cfg, nil
}

// GetDefaultConfig returns a configuration suitable for local development
// and tests, without requiring a config file or environment on disk.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{HealthAddress: ":9090"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Billing: BillingConfig{
			DefaultProrationMethod: types.ProrationActualDaysInMonth,
			RunConcurrency:         8,
		},
	}
}

// Validate checks the loaded configuration against its struct tags.
func (c Configuration) Validate() error {
	return validator.ValidateRequest(c)
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User, c.Password, c.DBName, c.Host, c.Port, c.SSLMode,
	)
}
