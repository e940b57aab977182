// Package rqlconform holds the shared configuration of the conformance
// test driver. Feature packages live below: value, matcher, expr, client,
// driver, report, corpus.
package rqlconform

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Config represents the driver configuration
type Config struct {
	Host      string        `yaml:"host"`
	CorpusDir string        `yaml:"corpus_dir"`
	Connect   ConnectConfig `yaml:"connect"`
}

// ConnectConfig represents connection establishment settings. The timeout
// bounds dialing and the handshake only; queries themselves block without
// a timeout, matching the driver's sequential execution model.
type ConnectConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate the configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	// Expand environment variables
	expandConfigEnvVars(&config)

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.Connect.Timeout < 0 {
		return fmt.Errorf("%w: connect timeout must not be negative", ErrConfigValidation)
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.Host == "" {
		config.Host = "localhost"
	}

	if config.Connect.Timeout == 0 {
		config.Connect.Timeout = 30 * time.Second
	}
}

func getDefaultConfig() *Config {
	return &Config{
		Host: "localhost",
		Connect: ConnectConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	// Pattern for ${VAR} format
	re1 := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re1.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	// Pattern for $VAR format (word boundaries)
	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars expands environment variables in config fields
func expandConfigEnvVars(config *Config) {
	config.Host = expandEnvVars(config.Host)
	config.CorpusDir = expandEnvVars(config.CorpusDir)
}
