package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Database    DatabaseConfig   `yaml:"database"`
	Storage     StorageConfig    `yaml:"storage"`
	Detection   DetectionConfig  `yaml:"detection"`
	Upload      UploadConfig     `yaml:"upload"`
	ClauseTypes []ClauseTypeSeed `yaml:"clause_types"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, postgres
	DSN  string `yaml:"dsn"`  // file path for sqlite, connection string for postgres
}

type StorageConfig struct {
	Backend string      `yaml:"backend"` // local, minio
	Local   LocalConfig `yaml:"local"`
	Minio   MinioConfig `yaml:"minio"`
}

type LocalConfig struct {
	BaseDir string `yaml:"base_dir"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type DetectionConfig struct {
	Engine         string `yaml:"engine"` // builtin, remote
	APIURL         string `yaml:"api_url"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// ClauseTypeSeed seeds the clause type catalog on first start
type ClauseTypeSeed struct {
	Name     string        `yaml:"name"`
	Patterns []PatternSeed `yaml:"patterns"`
}

type PatternSeed struct {
	Pattern string `yaml:"pattern"`
	IsRegex bool   `yaml:"is_regex"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Type == "sqlite" {
		cfg.Database.DSN = "clausetrack.db"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.Local.BaseDir == "" {
		cfg.Storage.Local.BaseDir = "./data/contracts"
	}
	if cfg.Detection.Engine == "" {
		cfg.Detection.Engine = "builtin"
	}
	if cfg.Detection.TimeoutSeconds == 0 {
		cfg.Detection.TimeoutSeconds = 60
	}
	if cfg.Upload.MaxBytes == 0 {
		cfg.Upload.MaxBytes = 25 << 20 // 25 MiB
	}

	GlobalConfig = &cfg
	return &cfg, nil
}
