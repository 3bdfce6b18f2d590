package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

// Load loads the configuration following proper precedence: defaults → config file → environment variables
func Load() {
	// Start with defaults
	cfg := defaultConfig
	_loaded = &cfg

	// Try to load from config file and merge over defaults
	configFile := os.Getenv("USERDB_CONFIG_FILE")
	if configFile == "" {
		configFile = "userdb.yaml"
	}

	if err := LoadFromFile(configFile); err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
	} else {
		log.Printf("Successfully loaded config from file: %s", configFile)
	}

	// Apply environment variable overrides (highest priority)
	ApplyEnvOverrides()
}

func LoadDefault() {
	config := defaultConfig
	_loaded = &config
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := defaultConfig

	// Merge YAML values over defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	_loaded = &cfg
	return nil
}

// ApplyEnvOverrides overrides loaded configuration values from environment variables
func ApplyEnvOverrides() {
	if _loaded == nil {
		LoadDefault()
	}

	if mongoURI := os.Getenv("USERDB_MONGO_URI"); mongoURI != "" {
		_loaded.Common.Mongo.URI = mongoURI
	}
	if mongoHost := os.Getenv("USERDB_MONGO_HOST"); mongoHost != "" {
		_loaded.Common.Mongo.Host = mongoHost
	}
	if mongoPort := os.Getenv("USERDB_MONGO_PORT"); mongoPort != "" {
		if port, err := strconv.Atoi(mongoPort); err == nil {
			_loaded.Common.Mongo.Port = port
		}
	}
	if mongoUser := os.Getenv("USERDB_MONGO_USER"); mongoUser != "" {
		_loaded.Common.Mongo.User = mongoUser
	}
	if mongoPassword := os.Getenv("USERDB_MONGO_PASSWORD"); mongoPassword != "" {
		_loaded.Common.Mongo.Password = mongoPassword
	}
	if mongoDatabase := os.Getenv("USERDB_MONGO_DATABASE"); mongoDatabase != "" {
		_loaded.Common.Mongo.Database = mongoDatabase
	}
	if seed := os.Getenv("USERDB_MONGO_SEED_SAMPLE_DATA"); seed != "" {
		if enabled, err := strconv.ParseBool(seed); err == nil {
			_loaded.Common.Mongo.SeedSampleData = enabled
		}
	}

	if httpHost := os.Getenv("USERDB_HTTP_HOST"); httpHost != "" {
		_loaded.Common.Http.Host = httpHost
	}
	if httpPort := os.Getenv("USERDB_HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			_loaded.Common.Http.Port = port
		}
	}

	if logLevel := os.Getenv("USERDB_LOG_LEVEL"); logLevel != "" {
		_loaded.Common.Log.Level = logLevel
	}
	if logFormat := os.Getenv("USERDB_LOG_FORMAT"); logFormat != "" {
		_loaded.Common.Log.Format = logFormat
	}
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Common: Common{
		Log: logConfig{
			Level:  "info",
			Format: "json",
		},
		Http: httpConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			MaxRequestSize: 5242880,
		},
		Mongo: mongoConfig{
			Host:           "localhost",
			Port:           27017,
			Database:       "userdb",
			ConnectTimeout: 10,
			SeedSampleData: false,
		},
	},
}

type Common struct {
	Log   logConfig   `yaml:"log"`
	Http  httpConfig  `yaml:"http"`
	Mongo mongoConfig `yaml:"mongo"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type httpConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxRequestSize int64  `yaml:"max_request_size"`
}

type mongoConfig struct {
	URI            string `yaml:"uri"` // full connection string; overrides host/port/user/password when set
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Database       string `yaml:"database"`
	ConnectTimeout int    `yaml:"connect_timeout"` // seconds
	SeedSampleData bool   `yaml:"seed_sample_data"`
}

func (c mongoConfig) DSN() string {
	if c.URI != "" {
		return c.URI
	}
	if c.User != "" {
		return fmt.Sprintf(
			"mongodb://%s:%s@%s:%d/%s?authSource=%s",
			url.QueryEscape(c.User),
			url.QueryEscape(c.Password),
			c.Host,
			c.Port,
			url.QueryEscape(c.Database),
			url.QueryEscape(c.Database),
		)
	}
	return fmt.Sprintf("mongodb://%s:%d/%s", c.Host, c.Port, url.QueryEscape(c.Database))
}

// there should be a getter for each top level field in the config struct.
// these getters will panic if the config has not been loaded.

func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

func Http() httpConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Http
}

func Mongo() mongoConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Mongo
}

func Get() *Config {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded
}
