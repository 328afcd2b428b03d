package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "PLANNER_CONFIG"

const DefaultPath = "config.yml"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Reminder   ReminderConfig   `yaml:"reminder"`
	Pagination PaginationConfig `yaml:"pagination"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	Host      string `yaml:"host"`
	RateLimit int    `yaml:"rate_limit"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type SQLiteConfig struct {
	Path          string `yaml:"path"`
	BackupPath    string `yaml:"backup_path"`
	BackupEnabled bool   `yaml:"backup_enabled"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // sqlite, postgres or inmemory
}

type ReminderConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Threshold time.Duration `yaml:"threshold"`
}

type PaginationConfig struct {
	PageSize int `yaml:"page_size"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "localhost",
			Port:      "8080",
			RateLimit: 100,
		},
		SQLite: SQLiteConfig{
			Path:          "rotina.db",
			BackupPath:    "rotina.db_backup",
			BackupEnabled: true,
		},
		Repository: RepositoryConfig{Type: "sqlite"},
		Reminder: ReminderConfig{
			Interval:  60 * time.Second,
			Threshold: 5 * time.Minute,
		},
		Pagination: PaginationConfig{PageSize: 30},
	}
}

// Path returns the config location, honouring PLANNER_CONFIG.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; the defaults are returned as is.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case "sqlite", "postgres", "inmemory":
	default:
		return fmt.Errorf("repository.type: unknown value %q", c.Repository.Type)
	}
	if c.Repository.Type == "postgres" && c.Database.URL == "" {
		return errors.New("database.url: required for postgres repository")
	}
	if c.Repository.Type == "sqlite" && c.SQLite.Path == "" {
		return errors.New("sqlite.path: required for sqlite repository")
	}
	if c.Reminder.Interval < 0 || c.Reminder.Threshold < 0 {
		return errors.New("reminder: durations must not be negative")
	}
	if c.Pagination.PageSize < 0 {
		return errors.New("pagination.page_size: must not be negative")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
