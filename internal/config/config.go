package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"pqlens/pkg/contracts/domain"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	// FilePath is only used when Output is "file" or "both".
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DataConfig locates the station workbooks. Each station maps one-to-one to
// a fixed workbook file, resolved relative to Dir.
type DataConfig struct {
	Dir         string `yaml:"dir" envconfig:"DIR" default:"." validate:"required"`
	MvuleFile   string `yaml:"mvule_file" envconfig:"MVULE_FILE" default:"MVULE corrected time.xlsx" validate:"required"`
	ClinicFile  string `yaml:"clinic_file" envconfig:"CLINIC_FILE" default:"Clinic corrected time.xlsx" validate:"required"`
}

// Load loads configuration from environment variables and an optional YAML
// config file. Environment variables take precedence over file values.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("PQLENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// merge fills zero-valued env fields from the file config. Env wins.
func merge(fileCfg, envCfg Config) Config {
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Server.ReadTimeout == 0 {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if envCfg.Server.WriteTimeout == 0 {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if envCfg.Server.IdleTimeout == 0 {
		envCfg.Server.IdleTimeout = fileCfg.Server.IdleTimeout
	}
	if envCfg.Server.ShutdownTimeout == 0 {
		envCfg.Server.ShutdownTimeout = fileCfg.Server.ShutdownTimeout
	}
	if envCfg.Logging.Level == "" {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if envCfg.Logging.Format == "" {
		envCfg.Logging.Format = fileCfg.Logging.Format
	}
	if envCfg.Logging.Output == "" {
		envCfg.Logging.Output = fileCfg.Logging.Output
	}
	if envCfg.Logging.FilePath == "" {
		envCfg.Logging.FilePath = fileCfg.Logging.FilePath
	}
	if envCfg.Data.Dir == "" {
		envCfg.Data.Dir = fileCfg.Data.Dir
	}
	if envCfg.Data.MvuleFile == "" {
		envCfg.Data.MvuleFile = fileCfg.Data.MvuleFile
	}
	if envCfg.Data.ClinicFile == "" {
		envCfg.Data.ClinicFile = fileCfg.Data.ClinicFile
	}
	return envCfg
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// WorkbookPath returns the resolved workbook path for a station. The
// mapping is fixed: each station has exactly one backing file.
func (c *Config) WorkbookPath(station domain.Station) (string, error) {
	var file string
	switch station {
	case domain.StationMvule:
		file = c.Data.MvuleFile
	case domain.StationClinic:
		file = c.Data.ClinicFile
	default:
		return "", fmt.Errorf("unknown station %q", station)
	}
	if filepath.IsAbs(file) {
		return file, nil
	}
	return filepath.Join(c.Data.Dir, file), nil
}

// findConfigFile returns the path to the first config file found in common
// locations, or "" when only env vars apply.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Data: DataConfig{
			Dir:        ".",
			MvuleFile:  "MVULE corrected time.xlsx",
			ClinicFile: "Clinic corrected time.xlsx",
		},
	}
}
