package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-analyzer/constants"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Ingest   IngestConfig
	Extract  ExtractConfig
	Storage  StorageConfig
	Analysis AnalysisConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Events   EventsConfig
	Queue    QueueConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	StaticDir       string
	Env             string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Production reports whether internal error messages should be redacted.
func (s ServerConfig) Production() bool {
	return strings.EqualFold(s.Env, "production")
}

// IngestConfig bounds body buffering for uploads
type IngestConfig struct {
	MaxUploadBytes int64
	BufferTimeout  time.Duration
}

// ExtractConfig holds text extraction limits
type ExtractConfig struct {
	MaxPages       int
	MaxChars       int
	FallbackTopN   int
	DetectLanguage bool
}

// StorageConfig holds object-store configuration
type StorageConfig struct {
	Driver      string // "minio" | "memory"
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	ListLimit   int
	ListTimeout time.Duration
	OpTimeout   time.Duration
}

// AnalysisConfig holds LLM analysis configuration
type AnalysisConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	PromptChars int
}

// DatabaseConfig holds registry database configuration
type DatabaseConfig struct {
	Driver           string // "postgres" | "sqlite" | "" (disabled)
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// CacheConfig holds analysis cache configuration
type CacheConfig struct {
	AnalysisEntries int
	StaticEntries   int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisTTL        time.Duration
}

// EventsConfig holds the AMQP publisher configuration
type EventsConfig struct {
	AMQPURL string
	Queue   string
}

// QueueConfig sizes the post-processing worker pool
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	provider := getEnv("ANALYSIS_PROVIDER", "")
	if provider == "" {
		provider = defaultProvider()
	}
	if p, ok := constants.CanonicalProvider(provider); ok {
		provider = string(p)
	}
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        normalizeAddr(getEnv("PORT", getEnv("HTTP_ADDR", ":3000"))),
			GRPCAddr:        getEnv("GRPC_ADDR", ""),
			StaticDir:       getEnv("STATIC_DIR", "./public"),
			Env:             getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Ingest: IngestConfig{
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 50<<20),
			BufferTimeout:  getEnvAsDuration("UPLOAD_BUFFER_TIMEOUT", 2*time.Minute),
		},
		Extract: ExtractConfig{
			MaxPages:       getEnvAsInt("PDF_MAX_PAGES", 20),
			MaxChars:       getEnvAsInt("EXTRACT_MAX_CHARS", 15000),
			FallbackTopN:   getEnvAsInt("PDF_FALLBACK_TOP_N", 50),
			DetectLanguage: getEnvAsBool("DETECT_LANGUAGE", true),
		},
		Storage: StorageConfig{
			Driver:      getEnv("STORAGE_DRIVER", constants.StorageMinIO),
			Endpoint:    getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:   getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:   getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:      getEnv("MINIO_BUCKET", "documents"),
			UseSSL:      getEnvAsBool("MINIO_USE_SSL", false),
			ListLimit:   getEnvAsInt("FILES_LIST_LIMIT", 100),
			ListTimeout: getEnvAsDuration("FILES_LIST_TIMEOUT", 15*time.Second),
			OpTimeout:   getEnvAsDuration("STORAGE_TIMEOUT", 30*time.Second),
		},
		Analysis: AnalysisConfig{
			Provider:    provider,
			Model:       getEnv("ANALYSIS_MODEL", ""),
			APIKey:      providerKey(provider),
			BaseURL:     getEnv("ANALYSIS_BASE_URL", ""),
			Temperature: getEnvAsFloat32("ANALYSIS_TEMPERATURE", 0.2),
			MaxTokens:   getEnvAsInt("ANALYSIS_MAX_TOKENS", 2048),
			Timeout:     getEnvAsDuration("ANALYSIS_TIMEOUT", 60*time.Second),
			PromptChars: getEnvAsInt("ANALYSIS_PROMPT_CHARS", 15000),
		},
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Cache: CacheConfig{
			AnalysisEntries: getEnvAsInt("ANALYSIS_CACHE_SIZE", 256),
			StaticEntries:   getEnvAsInt("STATIC_CACHE_SIZE", 64),
			RedisAddr:       getEnv("REDIS_ADDR", ""),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:         getEnvAsInt("REDIS_DB", 0),
			RedisTTL:        getEnvAsDuration("REDIS_TTL", 24*time.Hour),
		},
		Events: EventsConfig{
			AMQPURL: getEnv("AMQP_URL", ""),
			Queue:   getEnv("AMQP_QUEUE", "documents.analyzed"),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 4),
			Size:           getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", 30*time.Second),
		},
	}
}

// defaultProvider picks the first provider with a key in the environment.
func defaultProvider() string {
	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		return string(constants.ProviderGemini)
	case os.Getenv("OPENAI_API_KEY") != "":
		return string(constants.ProviderOpenAI)
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		return string(constants.ProviderAnthropic)
	default:
		return string(constants.ProviderSimulated)
	}
}

func providerKey(provider string) string {
	if v := os.Getenv("ANALYSIS_API_KEY"); v != "" {
		return v
	}
	p, _ := constants.CanonicalProvider(provider)
	switch p {
	case constants.ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	case constants.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case constants.ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

func normalizeAddr(addr string) string {
	if addr != "" && !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("HTTP_ADDR", c.Server.HTTPAddr, Required)
	v.Field("MAX_UPLOAD_BYTES", c.Ingest.MaxUploadBytes, Positive)
	v.Field("UPLOAD_BUFFER_TIMEOUT", c.Ingest.BufferTimeout, Positive)
	v.Field("PDF_MAX_PAGES", c.Extract.MaxPages, Positive)
	v.Field("EXTRACT_MAX_CHARS", c.Extract.MaxChars, Positive)
	v.Field("PDF_FALLBACK_TOP_N", c.Extract.FallbackTopN, Positive)
	v.Field("STORAGE_DRIVER", c.Storage.Driver, OneOf(constants.StorageMinIO, constants.StorageMemory))
	v.Field("MINIO_BUCKET", c.Storage.Bucket, Required)
	v.Field("ANALYSIS_PROVIDER", c.Analysis.Provider, OneOf(constants.Providers()...))
	v.Field("ANALYSIS_TIMEOUT", c.Analysis.Timeout, Positive)
	if c.Storage.Driver == constants.StorageMinIO {
		v.Field("MINIO_ENDPOINT", c.Storage.Endpoint, Required)
	}
	if p, _ := constants.CanonicalProvider(c.Analysis.Provider); p != constants.ProviderSimulated {
		v.Field("ANALYSIS_API_KEY", c.Analysis.APIKey, Required)
	}
	if c.Database.DSN != "" {
		v.Field("DB_DRIVER", c.Database.Driver, OneOf("postgres", "sqlite"))
	}
	return ValidateAndReturnError(CodeConfig, v)
}
