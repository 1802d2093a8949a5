package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default server settings
	DefaultServerHost = "localhost"
	DefaultServerPort = 3000

	// Default HTTP server timeouts
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 15 * time.Second
	DefaultIdleTimeout    = 60 * time.Second
	DefaultMaxHeaderBytes = 1 << 20 // 1MB

	// Default Contentful delivery settings
	DefaultContentfulHost        = "cdn.contentful.com"
	DefaultContentfulEnvironment = "master"
	DefaultContentfulLocale      = "en-US"
	DefaultContentfulTimeout     = 10 * time.Second

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all configuration for the MCP server
type Config struct {
	Transport  string
	Server     ServerConfig
	Logger     LoggerConfig
	Contentful ContentfulConfig
}

// ServerConfig holds settings for the optional HTTP transport
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
	Version string
}

// ContentfulConfig holds the delivery API credentials and query defaults
type ContentfulConfig struct {
	AccessToken string
	SpaceID     string
	Environment string
	Host        string
	Locale      string
	Timeout     time.Duration

	// ContentTypeIDs is the allow-list; when non-empty it overrides any
	// content type filter supplied by a tool call.
	ContentTypeIDs []string
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []string

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	if len(ve) == 1 {
		return ve[0]
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(ve, "; "))
}

// FileConfig represents configuration loaded from YAML files
type FileConfig struct {
	Transport  string               `yaml:"transport"`
	Server     FileServerConfig     `yaml:"server"`
	Logger     FileLoggerConfig     `yaml:"logger"`
	Contentful FileContentfulConfig `yaml:"contentful"`
}

type FileServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	ReadTimeout    string `yaml:"read_timeout"`
	WriteTimeout   string `yaml:"write_timeout"`
	IdleTimeout    string `yaml:"idle_timeout"`
	MaxHeaderBytes int    `yaml:"max_header_bytes"`
}

type FileLoggerConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Service string `yaml:"service"`
	Version string `yaml:"version"`
}

// FileContentfulConfig deliberately has no access token field; secrets come from the environment.
type FileContentfulConfig struct {
	SpaceID        string   `yaml:"space_id"`
	Environment    string   `yaml:"environment"`
	Host           string   `yaml:"host"`
	Locale         string   `yaml:"locale"`
	Timeout        string   `yaml:"timeout"`
	ContentTypeIDs []string `yaml:"content_type_ids"`
}

// loadConfigFile attempts to load configuration from YAML files
func loadConfigFile() (*FileConfig, error) {
	configPath := getEnv("MCP_CONFIG_FILE", "")
	if configPath == "" {
		candidates := []string{
			"configs/development.yaml",
			"configs/production.yaml",
		}

		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
	}

	if configPath == "" {
		return nil, nil // No config file found, not an error
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var fileConfig FileConfig
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return &fileConfig, nil
}

// mergeFileConfig merges file configuration with base config, respecting environment variable precedence
func mergeFileConfig(base *Config, file *FileConfig) *Config {
	if file == nil {
		return base
	}

	result := *base

	if file.Transport != "" && os.Getenv("MCP_TRANSPORT") == "" {
		result.Transport = file.Transport
	}

	if file.Server.Host != "" && os.Getenv("MCP_SERVER_HOST") == "" {
		result.Server.Host = file.Server.Host
	}
	if file.Server.Port != 0 && os.Getenv("MCP_SERVER_PORT") == "" {
		result.Server.Port = file.Server.Port
	}
	if file.Server.ReadTimeout != "" && os.Getenv("MCP_SERVER_READ_TIMEOUT") == "" {
		if duration, err := time.ParseDuration(file.Server.ReadTimeout); err == nil {
			result.Server.ReadTimeout = duration
		}
	}
	if file.Server.WriteTimeout != "" && os.Getenv("MCP_SERVER_WRITE_TIMEOUT") == "" {
		if duration, err := time.ParseDuration(file.Server.WriteTimeout); err == nil {
			result.Server.WriteTimeout = duration
		}
	}
	if file.Server.IdleTimeout != "" && os.Getenv("MCP_SERVER_IDLE_TIMEOUT") == "" {
		if duration, err := time.ParseDuration(file.Server.IdleTimeout); err == nil {
			result.Server.IdleTimeout = duration
		}
	}
	if file.Server.MaxHeaderBytes != 0 && os.Getenv("MCP_SERVER_MAX_HEADER_BYTES") == "" {
		result.Server.MaxHeaderBytes = file.Server.MaxHeaderBytes
	}

	if file.Logger.Level != "" && os.Getenv("MCP_LOG_LEVEL") == "" {
		result.Logger.Level = file.Logger.Level
	}
	if file.Logger.Format != "" && os.Getenv("MCP_LOG_FORMAT") == "" {
		result.Logger.Format = file.Logger.Format
	}
	if file.Logger.Service != "" && os.Getenv("MCP_SERVICE_NAME") == "" {
		result.Logger.Service = file.Logger.Service
	}
	if file.Logger.Version != "" && os.Getenv("MCP_VERSION") == "" {
		result.Logger.Version = file.Logger.Version
	}

	if file.Contentful.SpaceID != "" && os.Getenv("CONTENTFUL_SPACE_ID") == "" {
		result.Contentful.SpaceID = file.Contentful.SpaceID
	}
	if file.Contentful.Environment != "" && os.Getenv("CONTENTFUL_ENVIRONMENT") == "" {
		result.Contentful.Environment = file.Contentful.Environment
	}
	if file.Contentful.Host != "" && os.Getenv("CONTENTFUL_HOST") == "" {
		result.Contentful.Host = file.Contentful.Host
	}
	if file.Contentful.Locale != "" && os.Getenv("CONTENTFUL_LOCALE") == "" {
		result.Contentful.Locale = file.Contentful.Locale
	}
	if file.Contentful.Timeout != "" && os.Getenv("CONTENTFUL_TIMEOUT") == "" {
		if duration, err := time.ParseDuration(file.Contentful.Timeout); err == nil {
			result.Contentful.Timeout = duration
		}
	}
	if len(file.Contentful.ContentTypeIDs) > 0 && os.Getenv("CONTENTFUL_CONTENT_TYPE_IDS") == "" {
		result.Contentful.ContentTypeIDs = ParseContentTypeIDs(strings.Join(file.Contentful.ContentTypeIDs, ","))
	}

	return &result
}

// Load loads configuration from environment variables and files with defaults
func Load() (*Config, error) {
	cfg := Defaults()

	fileConfig, err := loadConfigFile()
	if err != nil {
		// Note: We can't use logger here as it's not initialized yet
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
	}

	cfg = mergeFileConfig(cfg, fileConfig)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Defaults builds the configuration from environment variables alone
func Defaults() *Config {
	return &Config{
		Transport: getEnv("MCP_TRANSPORT", TransportStdio),
		Server: ServerConfig{
			Host:           getEnv("MCP_SERVER_HOST", DefaultServerHost),
			Port:           getEnvInt("MCP_SERVER_PORT", DefaultServerPort),
			ReadTimeout:    getEnvDuration("MCP_SERVER_READ_TIMEOUT", DefaultReadTimeout),
			WriteTimeout:   getEnvDuration("MCP_SERVER_WRITE_TIMEOUT", DefaultWriteTimeout),
			IdleTimeout:    getEnvDuration("MCP_SERVER_IDLE_TIMEOUT", DefaultIdleTimeout),
			MaxHeaderBytes: getEnvInt("MCP_SERVER_MAX_HEADER_BYTES", DefaultMaxHeaderBytes),
		},
		Logger: LoggerConfig{
			Level:   getEnv("MCP_LOG_LEVEL", "info"),
			Format:  getEnv("MCP_LOG_FORMAT", "json"),
			Service: getEnv("MCP_SERVICE_NAME", "contentful-delivery-mcp"),
			Version: getEnv("MCP_VERSION", "0.1.0"),
		},
		Contentful: ContentfulConfig{
			AccessToken:    os.Getenv("CONTENTFUL_ACCESS_TOKEN"),
			SpaceID:        os.Getenv("CONTENTFUL_SPACE_ID"),
			Environment:    getEnv("CONTENTFUL_ENVIRONMENT", DefaultContentfulEnvironment),
			Host:           getEnv("CONTENTFUL_HOST", DefaultContentfulHost),
			Locale:         getEnv("CONTENTFUL_LOCALE", DefaultContentfulLocale),
			Timeout:        getEnvDuration("CONTENTFUL_TIMEOUT", DefaultContentfulTimeout),
			ContentTypeIDs: ParseContentTypeIDs(os.Getenv("CONTENTFUL_CONTENT_TYPE_IDS")),
		},
	}
}

// ParseContentTypeIDs splits a comma-separated allow-list, trimming entries and
// dropping empty ones. An empty input yields nil (no restriction).
func ParseContentTypeIDs(value string) []string {
	if value == "" {
		return nil
	}

	var ids []string
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Validate validates the configuration with enhanced error reporting
func (c *Config) Validate() error {
	var errors ValidationErrors

	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		errors = append(errors, fmt.Sprintf("invalid transport: %s (valid options: stdio, http)", c.Transport))
	}

	if c.Transport == TransportHTTP {
		if c.Server.Host == "" {
			errors = append(errors, "server host cannot be empty (hint: use 'localhost' for local development)")
		}

		if c.Server.Port < 1 || c.Server.Port > 65535 {
			errors = append(errors, fmt.Sprintf("server port must be between 1 and 65535, got %d (hint: use 3000 for development, 8080 for production)", c.Server.Port))
		}

		if c.Server.ReadTimeout < 0 {
			errors = append(errors, fmt.Sprintf("server read timeout cannot be negative, got %v (hint: use 15s or larger)", c.Server.ReadTimeout))
		}

		if c.Server.WriteTimeout < 0 {
			errors = append(errors, fmt.Sprintf("server write timeout cannot be negative, got %v (hint: use 15s or larger)", c.Server.WriteTimeout))
		}

		if c.Server.IdleTimeout < 0 {
			errors = append(errors, fmt.Sprintf("server idle timeout cannot be negative, got %v (hint: use 60s or larger)", c.Server.IdleTimeout))
		}

		if c.Server.MaxHeaderBytes < 1 {
			errors = append(errors, fmt.Sprintf("server max header bytes must be positive, got %d (hint: use 1048576 for 1MB)", c.Server.MaxHeaderBytes))
		}
	}

	normalizedLevel := strings.ToLower(c.Logger.Level)
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[normalizedLevel] {
		errors = append(errors, fmt.Sprintf("invalid log level: %s (valid options: debug, info, warn, error)", c.Logger.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logger.Format] {
		errors = append(errors, fmt.Sprintf("invalid log format: %s (valid options: json, text)", c.Logger.Format))
	}

	if c.Contentful.AccessToken == "" {
		errors = append(errors, "contentful access token cannot be empty (hint: set CONTENTFUL_ACCESS_TOKEN to a delivery API token)")
	}

	if c.Contentful.SpaceID == "" {
		errors = append(errors, "contentful space id cannot be empty (hint: set CONTENTFUL_SPACE_ID)")
	}

	if c.Contentful.Host == "" {
		errors = append(errors, "contentful host cannot be empty (hint: use cdn.contentful.com or preview.contentful.com)")
	}

	if c.Contentful.Environment == "" {
		errors = append(errors, "contentful environment cannot be empty (hint: use 'master')")
	}

	if c.Contentful.Timeout <= 0 {
		errors = append(errors, fmt.Sprintf("contentful timeout must be positive, got %v (hint: use 10s)", c.Contentful.Timeout))
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as integer with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets environment variable as duration with default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
