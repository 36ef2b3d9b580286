package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Ingest     IngestConfig     `mapstructure:"ingest"     validate:"required"`
	Supervisor SupervisorConfig `mapstructure:"supervisor" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// IngestConfig configures the file-ingestion path: where uploads are
// spooled and which binary runs the isolated ingestion unit.
type IngestConfig struct {
	WorkerPath string `mapstructure:"worker_path" validate:"required"`
	UploadDir  string `mapstructure:"upload_dir"  validate:"required"`
}

// SupervisorConfig contains the worker-lifecycle settings used by
// cmd/supervisor. The observed production values are the defaults:
// 70% of one core, 3s sampling, 1s refork backoff.
type SupervisorConfig struct {
	WorkerPath          string        `mapstructure:"worker_path"           validate:"required"`
	CPUThresholdPercent float64       `mapstructure:"cpu_threshold_percent" validate:"required,gt=0,lte=100"`
	SampleInterval      time.Duration `mapstructure:"sample_interval"       validate:"required"`
	RestartBackoff      time.Duration `mapstructure:"restart_backoff"       validate:"required"`
}
