package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and, optionally, a
// config.yaml in the working directory. Environment variables take
// precedence over file values and use the POLIS_ prefix with underscores,
// e.g. POLIS_SERVER_PORT or POLIS_SUPERVISOR_CPU_THRESHOLD_PERCENT.
//
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("POLIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")

	// Registered with an empty default so AutomaticEnv can see the key;
	// validation rejects the empty value.
	v.SetDefault("database.url", "")

	v.SetDefault("ingest.worker_path", "./polis-ingest-worker")
	v.SetDefault("ingest.upload_dir", "uploads")

	v.SetDefault("supervisor.worker_path", "./polis-server")
	v.SetDefault("supervisor.cpu_threshold_percent", 70.0)
	v.SetDefault("supervisor.sample_interval", 3*time.Second)
	v.SetDefault("supervisor.restart_backoff", time.Second)
}
