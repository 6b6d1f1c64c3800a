package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML file used as the base configuration.
const ConfigFileEnv = "V2T_CONFIG_FILE"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Ticket REST API
	TicketAPI TicketAPIConfig `yaml:"ticket_api"`

	// Audio bucket and credentials
	Storage StorageConfig `yaml:"storage"`

	// Session persistence
	Session SessionConfig `yaml:"session"`

	// Microphone capture
	Capture CaptureConfig `yaml:"capture"`

	// Console behaviour and tokens
	Console ConsoleConfig `yaml:"console"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// WebSocket configuration
	WebSocket WebSocketConfig `yaml:"websocket"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Application metadata
	App AppConfig `yaml:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// TicketAPIConfig holds the ticket REST API location
type TicketAPIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig holds the audio bucket configuration. Static keys, when
// set, replace the identity pool and are meant for local S3-compatible
// servers.
type StorageConfig struct {
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	IdentityPoolID  string `yaml:"identity_pool_id"`
	Endpoint        string `yaml:"endpoint"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// SessionConfig holds session storage configuration
type SessionConfig struct {
	Backend       string        `yaml:"backend"` // file, redis
	Dir           string        `yaml:"dir"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// CaptureConfig holds the recorder command configuration
type CaptureConfig struct {
	Command   string   `yaml:"command"`
	Args      []string `yaml:"args"`
	ChunkSize int      `yaml:"chunk_size"`
}

// ConsoleConfig holds console configuration
type ConsoleConfig struct {
	PageSize        int           `yaml:"page_size"`
	TokenSecret     string        `yaml:"token_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	IdleTTL         time.Duration `yaml:"idle_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	MaxConsoles     int           `yaml:"max_consoles"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
	ConsoleRPS        float64 `yaml:"console_rps"` // Stricter limit for console creation
	ConsoleBurst      int     `yaml:"console_burst"`
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size"`
	PingInterval    time.Duration `yaml:"ping_interval"`
	PongWait        time.Duration `yaml:"pong_wait"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Output string `yaml:"output"` // file path; empty means stdout
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{},
		},
		TicketAPI: TicketAPIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Region: "us-east-1",
			Bucket: "voice2ticket-audio-uploads",
			Prefix: "audio/",
		},
		Session: SessionConfig{
			Backend:   "file",
			Dir:       defaultSessionDir(),
			RedisAddr: "localhost:6379",
			TTL:       30 * 24 * time.Hour,
		},
		Capture: CaptureConfig{
			Command:   "ffmpeg",
			Args:      []string{"-hide_banner", "-loglevel", "error", "-f", "pulse", "-i", "default", "-c:a", "libopus", "-f", "webm", "-"},
			ChunkSize: 16 * 1024,
		},
		Console: ConsoleConfig{
			PageSize:        10,
			TokenTTL:        12 * time.Hour,
			IdleTTL:         30 * time.Minute,
			CleanupInterval: time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			BurstSize:         20,
			ConsoleRPS:        1,
			ConsoleBurst:      5,
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  []string{},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingInterval:    54 * time.Second,
			PongWait:        60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Name:        "voice2ticket",
			Version:     "dev",
			Environment: "development",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of increasing precedence. path
// overrides V2T_CONFIG_FILE.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := Defaults()

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvOrDefault("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationOrDefault("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationOrDefault("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getDurationOrDefault("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.AllowedOrigins = getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.TicketAPI.BaseURL = getEnvOrDefault("API_BASE", c.TicketAPI.BaseURL)
	c.TicketAPI.Timeout = getDurationOrDefault("API_TIMEOUT", c.TicketAPI.Timeout)

	c.Storage.Region = getEnvOrDefault("S3_REGION", c.Storage.Region)
	c.Storage.Bucket = getEnvOrDefault("S3_BUCKET", c.Storage.Bucket)
	c.Storage.Prefix = getEnvOrDefault("S3_PREFIX", c.Storage.Prefix)
	c.Storage.IdentityPoolID = getEnvOrDefault("COGNITO_IDENTITY_POOL_ID", c.Storage.IdentityPoolID)
	c.Storage.Endpoint = getEnvOrDefault("S3_ENDPOINT", c.Storage.Endpoint)
	c.Storage.UsePathStyle = getBoolOrDefault("S3_USE_PATH_STYLE", c.Storage.UsePathStyle)
	c.Storage.AccessKeyID = getEnvOrDefault("S3_ACCESS_KEY_ID", c.Storage.AccessKeyID)
	c.Storage.SecretAccessKey = getEnvOrDefault("S3_SECRET_ACCESS_KEY", c.Storage.SecretAccessKey)

	c.Session.Backend = getEnvOrDefault("SESSION_BACKEND", c.Session.Backend)
	c.Session.Dir = getEnvOrDefault("SESSION_DIR", c.Session.Dir)
	c.Session.RedisAddr = getEnvOrDefault("REDIS_ADDR", c.Session.RedisAddr)
	c.Session.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", c.Session.RedisPassword)
	c.Session.RedisDB = getIntOrDefault("REDIS_DB", c.Session.RedisDB)
	c.Session.TTL = getDurationOrDefault("SESSION_TTL", c.Session.TTL)

	c.Capture.Command = getEnvOrDefault("CAPTURE_COMMAND", c.Capture.Command)
	c.Capture.Args = getFieldsOrDefault("CAPTURE_ARGS", c.Capture.Args)
	c.Capture.ChunkSize = getIntOrDefault("CAPTURE_CHUNK_SIZE", c.Capture.ChunkSize)

	c.Console.PageSize = getIntOrDefault("CONSOLE_PAGE_SIZE", c.Console.PageSize)
	c.Console.TokenSecret = getEnvOrDefault("CONSOLE_TOKEN_SECRET", c.Console.TokenSecret)
	c.Console.TokenTTL = getDurationOrDefault("CONSOLE_TOKEN_TTL", c.Console.TokenTTL)
	c.Console.IdleTTL = getDurationOrDefault("CONSOLE_IDLE_TTL", c.Console.IdleTTL)
	c.Console.CleanupInterval = getDurationOrDefault("CONSOLE_CLEANUP_INTERVAL", c.Console.CleanupInterval)
	c.Console.MaxConsoles = getIntOrDefault("CONSOLE_MAX", c.Console.MaxConsoles)

	c.RateLimit.Enabled = getBoolOrDefault("RATE_LIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.RequestsPerSecond = getFloatOrDefault("RATE_LIMIT_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.BurstSize = getIntOrDefault("RATE_LIMIT_BURST", c.RateLimit.BurstSize)
	c.RateLimit.ConsoleRPS = getFloatOrDefault("RATE_LIMIT_CONSOLE_RPS", c.RateLimit.ConsoleRPS)
	c.RateLimit.ConsoleBurst = getIntOrDefault("RATE_LIMIT_CONSOLE_BURST", c.RateLimit.ConsoleBurst)

	c.WebSocket.AllowedOrigins = getStringSliceOrDefault("WS_ALLOWED_ORIGINS", c.WebSocket.AllowedOrigins)
	c.WebSocket.ReadBufferSize = getIntOrDefault("WS_READ_BUFFER_SIZE", c.WebSocket.ReadBufferSize)
	c.WebSocket.WriteBufferSize = getIntOrDefault("WS_WRITE_BUFFER_SIZE", c.WebSocket.WriteBufferSize)
	c.WebSocket.PingInterval = getDurationOrDefault("WS_PING_INTERVAL", c.WebSocket.PingInterval)
	c.WebSocket.PongWait = getDurationOrDefault("WS_PONG_WAIT", c.WebSocket.PongWait)

	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", c.Logging.Format)
	c.Logging.Output = getEnvOrDefault("LOG_OUTPUT", c.Logging.Output)

	c.App.Name = getEnvOrDefault("APP_NAME", c.App.Name)
	c.App.Version = getEnvOrDefault("APP_VERSION", c.App.Version)
	c.App.Environment = getEnvOrDefault("APP_ENV", c.App.Environment)
}

// Validate validates the settings shared by both binaries
func (c *Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.TicketAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "API_BASE must be an absolute URL")
	}

	if c.Storage.Bucket == "" {
		errs = append(errs, "S3_BUCKET is required")
	}
	if c.Storage.Region == "" {
		errs = append(errs, "S3_REGION is required")
	}
	if (c.Storage.AccessKeyID == "") != (c.Storage.SecretAccessKey == "") {
		errs = append(errs, "S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
	}

	switch c.Session.Backend {
	case "file":
		if c.Session.Dir == "" {
			errs = append(errs, "SESSION_DIR is required for the file backend")
		}
	case "redis":
		if c.Session.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR is required for the redis backend")
		}
	default:
		errs = append(errs, "SESSION_BACKEND must be one of: file, redis")
	}

	if c.Capture.Command == "" {
		errs = append(errs, "CAPTURE_COMMAND is required")
	}
	if c.Capture.ChunkSize <= 0 {
		errs = append(errs, "CAPTURE_CHUNK_SIZE must be positive")
	}

	if c.Console.PageSize <= 0 {
		errs = append(errs, "CONSOLE_PAGE_SIZE must be positive")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// ValidateServer adds the checks that only matter for the HTTP server
func (c *Config) ValidateServer() error {
	var errs []string

	if c.Console.TokenSecret == "" {
		errs = append(errs, "CONSOLE_TOKEN_SECRET is required")
	}

	// Security validations
	if c.App.Environment == "production" {
		if len(c.Console.TokenSecret) < 32 {
			errs = append(errs, "CONSOLE_TOKEN_SECRET must be at least 32 characters in production")
		}

		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
	}

	if c.Console.IdleTTL <= 0 {
		errs = append(errs, "CONSOLE_IDLE_TTL must be positive")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Helper functions

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "voice2ticket"
	}
	return ".voice2ticket"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// getFieldsOrDefault splits a command line on whitespace
func getFieldsOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Fields(value)
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, API: %s, Bucket: %s/%s (%s), Pool: %s, Keys: %s, Session: %s@%s, Token: [REDACTED], RateLimit: %v, Environment: %s}",
		c.Server.Port,
		c.TicketAPI.BaseURL,
		c.Storage.Bucket,
		c.Storage.Prefix,
		c.Storage.Region,
		redact(c.Storage.IdentityPoolID),
		redact(c.Storage.AccessKeyID),
		c.Session.Backend,
		redactAddr(c.Session.RedisAddr, c.Session.RedisPassword),
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redact hides a secret but keeps whether it is set
func redact(value string) string {
	if value == "" {
		return ""
	}
	return "[REDACTED]"
}

// redactAddr hides the password of a redis address
func redactAddr(addr, password string) string {
	if password == "" {
		return addr
	}
	return "[REDACTED]@" + addr
}
