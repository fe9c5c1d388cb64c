// Package config handles loading configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Storage Storage `yaml:"storage"`

	Log struct {
		Level string `yaml:"level,omitempty"` // debug, info, warn, error
	} `yaml:"log,omitempty"`

	Web struct {
		Addr string `yaml:"addr,omitempty"`
	} `yaml:"web,omitempty"`

	Metrics struct {
		Addr string `yaml:"addr,omitempty"` // console metrics listener; empty disables it
	} `yaml:"metrics,omitempty"`
}

// Storage selects and configures the object store backend.
type Storage struct {
	Driver string `yaml:"driver"` // memory|file|sqlite|postgres

	File struct {
		Path string `yaml:"path,omitempty"`
		Blob Blob   `yaml:"blob,omitempty"`
	} `yaml:"file,omitempty"`

	SQLite struct {
		Path string `yaml:"path,omitempty"`
	} `yaml:"sqlite,omitempty"`

	Postgres struct {
		DSN string `yaml:"dsn,omitempty"`
	} `yaml:"postgres,omitempty"`
}

// Blob configures where the flat file lives.
type Blob struct {
	Driver string `yaml:"driver,omitempty"` // fs|s3|memory
	Root   string `yaml:"root,omitempty"`
	S3     struct {
		Bucket    string `yaml:"bucket,omitempty"`
		Region    string `yaml:"region,omitempty"`
		Endpoint  string `yaml:"endpoint,omitempty"`
		PathStyle bool   `yaml:"path_style,omitempty"`
	} `yaml:"s3,omitempty"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultConfigDirName  = ".hbnb"
	defaultConfigFileName = "config.yaml"
	localConfigFileName   = "hbnb.yaml"
	defaultFilePath       = "file.json"
	defaultSQLitePath     = "hbnb.db"
	defaultWebAddr        = "0.0.0.0:5000"
	defaultLogLevel       = "info"
)

// Load reads configuration from HBNB_CONFIG, ./hbnb.yaml or
// ~/.hbnb/config.yaml (first match wins), then applies environment overrides
// and defaults. A missing file is not an error.
func Load() (*Config, error) {
	var candidates []string
	if explicit := os.Getenv("HBNB_CONFIG"); explicit != "" {
		cfg, err := loadFromFile(explicit)
		if err != nil {
			return nil, errors.Wrapf(err, "load config %s", explicit)
		}
		return finish(cfg), nil
	}
	candidates = append(candidates, localConfigFileName)
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, defaultConfigDirName, defaultConfigFileName))
	}
	for _, path := range candidates {
		cfg, err := loadFromFile(path)
		if err == nil {
			return finish(cfg), nil
		}
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "load config %s", path)
		}
	}
	return finish(&Config{}), nil
}

// Parse decodes YAML configuration and applies environment overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config yaml")
	}
	return finish(&cfg), nil
}

func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath) // #nosec G304 -- operator-provided config path
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshal config yaml %s", filePath)
	}
	return &cfg, nil
}

func finish(cfg *Config) *Config {
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg
}

// applyEnv overlays HBNB_* environment variables.
func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	if os.Getenv("HBNB_TYPE_STORAGE") == "db" {
		cfg.Storage.Driver = DriverPostgres
	}
	setString(&cfg.Storage.Driver, "HBNB_STORAGE_DRIVER")
	setString(&cfg.Storage.File.Path, "HBNB_FILE_PATH")
	setString(&cfg.Storage.File.Blob.Driver, "HBNB_BLOB_DRIVER")
	setString(&cfg.Storage.File.Blob.Root, "HBNB_BLOB_FS_ROOT")
	setString(&cfg.Storage.File.Blob.S3.Bucket, "HBNB_BLOB_S3_BUCKET")
	setString(&cfg.Storage.File.Blob.S3.Region, "HBNB_BLOB_S3_REGION")
	setString(&cfg.Storage.File.Blob.S3.Endpoint, "HBNB_BLOB_S3_ENDPOINT")
	if v := os.Getenv("HBNB_BLOB_S3_PATH_STYLE"); v != "" {
		cfg.Storage.File.Blob.S3.PathStyle = strings.EqualFold(v, "true")
	}
	setString(&cfg.Storage.SQLite.Path, "HBNB_SQLITE_PATH")
	setString(&cfg.Storage.Postgres.DSN, "HBNB_POSTGRES_DSN")
	if cfg.Storage.Postgres.DSN == "" {
		cfg.Storage.Postgres.DSN = dsnFromParts()
	}
	setString(&cfg.Log.Level, "HBNB_LOG_LEVEL")
	setString(&cfg.Web.Addr, "HBNB_WEB_ADDR")
	setString(&cfg.Metrics.Addr, "HBNB_METRICS_ADDR")
}

// dsnFromParts assembles a DSN from HBNB_PG_USER/PWD/HOST/DB when HBNB_PG_DB is set.
func dsnFromParts() string {
	db := os.Getenv("HBNB_PG_DB")
	if db == "" {
		return ""
	}
	host := os.Getenv("HBNB_PG_HOST")
	if host == "" {
		host = "localhost"
	}
	user := os.Getenv("HBNB_PG_USER")
	if pwd := os.Getenv("HBNB_PG_PWD"); pwd != "" {
		user += ":" + pwd
	}
	if user != "" {
		user += "@"
	}
	return fmt.Sprintf("postgres://%s%s/%s?sslmode=disable", user, host, db)
}

// applyDefaults ensures essential fields have default values if not set.
func applyDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverFile
	}
	if cfg.Storage.File.Path == "" {
		cfg.Storage.File.Path = defaultFilePath
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = defaultSQLitePath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Web.Addr == "" {
		cfg.Web.Addr = defaultWebAddr
	}
}
