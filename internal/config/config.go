package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	PresetPolicyDefault = "default"
	PresetPolicyStrict  = "strict"

	JobStoreMemory = "memory"
	JobStoreRedis  = "redis"
	JobStoreSQLite = "sqlite"
)

type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Storage     StorageConfig
	Compression CompressionConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
	Jobs        JobsConfig
	Supabase    SupabaseConfig
	S3          S3Config
}

type ServerConfig struct {
	Port           string
	ServiceName    string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type StorageConfig struct {
	OutputRoot string
	ScratchDir string
}

type CompressionConfig struct {
	GhostscriptPath       string
	TransformTimeout      time.Duration
	PresetPolicy          string
	PreviewConcurrency    int
	MaxBatchFiles         int
	InspectorEnabled      bool
	ExposeTransformStatus bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL     string
	Queue   string
	Workers int
}

type JobsConfig struct {
	Store      string
	TTL        time.Duration
	SQLitePath string
}

type SupabaseConfig struct {
	URL    string
	KEY    string
	BUCKET string
}

type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string
	Prefix   string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8001"),
			ServiceName:    getEnv("SERVICE_NAME", "pdf-worker"),
			ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDuration("WRITE_TIMEOUT", 10*time.Minute),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Storage: StorageConfig{
			OutputRoot: getEnv("OUTPUT_ROOT", "tmp/uploads"),
			ScratchDir: getEnv("SCRATCH_DIR", os.TempDir()),
		},
		Compression: CompressionConfig{
			GhostscriptPath:       getEnv("GHOSTSCRIPT_PATH", "gs"),
			TransformTimeout:      getDuration("TRANSFORM_TIMEOUT", 2*time.Minute),
			PresetPolicy:          strings.ToLower(getEnv("PRESET_POLICY", PresetPolicyDefault)),
			PreviewConcurrency:    getEnvAsInt("PREVIEW_CONCURRENCY", 4),
			MaxBatchFiles:         getEnvAsInt("MAX_BATCH_FILES", 0),
			InspectorEnabled:      getEnvAsBool("INSPECTOR_ENABLED", true),
			ExposeTransformStatus: getEnvAsBool("EXPOSE_TRANSFORM_STATUS", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:     getEnv("RABBITMQ_URL", ""),
			Queue:   getEnv("RABBITMQ_QUEUE", "pdf_compression"),
			Workers: getEnvAsInt("QUEUE_WORKERS", 2),
		},
		Jobs: JobsConfig{
			Store:      strings.ToLower(getEnv("JOB_STORE", JobStoreMemory)),
			TTL:        getDuration("JOB_TTL", 24*time.Hour),
			SQLitePath: getEnv("JOB_SQLITE_PATH", "tmp/jobs.db"),
		},
		Supabase: SupabaseConfig{
			URL:    getEnv("SUPABASE_URL", ""),
			KEY:    getEnv("SUPABASE_KEY", ""),
			BUCKET: getEnv("SUPABASE_BUCKET", ""),
		},
		S3: S3Config{
			Bucket:   getEnv("S3_BUCKET", ""),
			Region:   getEnv("S3_REGION", "us-east-1"),
			Endpoint: getEnv("S3_ENDPOINT", ""),
			Prefix:   getEnv("S3_PREFIX", ""),
		},
	}

	if cfg.Compression.PreviewConcurrency < 1 {
		cfg.Compression.PreviewConcurrency = 1
	}

	return cfg, nil
}

// StrictPresets reports whether unknown preset names must be rejected.
func (c CompressionConfig) StrictPresets() bool {
	return c.PresetPolicy == PresetPolicyStrict
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
