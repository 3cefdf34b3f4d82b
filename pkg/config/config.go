package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	Debug   bool
	Port    string

	// Logging
	LogLevel string
	LogJSON  bool

	// Metadata database (history, registry, policies)
	DatabaseURL string

	// Scheduler
	EvaluationInterval time.Duration // must be finer than the finest enabled tier

	// Processor
	ProcessorWorkers int
	BackupTimeout    time.Duration // bound on a single dump invocation
	UploadTimeout    time.Duration // bound on a single artifact upload

	// Alerting
	AlertThreshold int // consecutive failures before a database is alerting

	// Job queue
	QueueBackend      string // redis | memory
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	QueueKeyPrefix    string
	VisibilityTimeout time.Duration // redelivery deadline for in-flight jobs

	// Artifact storage
	StorageBackend   string // local | sftp | s3
	LocalStoragePath string

	// SFTP storage
	SFTPHost     string
	SFTPPort     int
	SFTPUser     string
	SFTPPassword string
	SFTPBasePath string

	// S3 storage
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// InfluxDB (time-series backup event storage, optional)
	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string

	// Metrics
	MetricsCollectInterval time.Duration
}

var AppConfig *Config

// Load loads configuration from environment
func Load() *Config {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		AppName:                getEnv("APP_NAME", "dbward"),
		Debug:                  getEnvBool("DEBUG", true),
		Port:                   getEnv("PORT", "8000"),
		LogLevel:               getEnv("LOG_LEVEL", "INFO"),
		LogJSON:                getEnvBool("LOG_JSON", false),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		EvaluationInterval:     getEnvDuration("EVALUATION_INTERVAL", time.Minute),
		ProcessorWorkers:       getEnvInt("PROCESSOR_WORKERS", 4),
		BackupTimeout:          getEnvDuration("BACKUP_TIMEOUT", 30*time.Minute),
		UploadTimeout:          getEnvDuration("UPLOAD_TIMEOUT", 15*time.Minute),
		AlertThreshold:         getEnvInt("ALERT_THRESHOLD", 2),
		QueueBackend:           getEnv("QUEUE_BACKEND", "redis"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		QueueKeyPrefix:         getEnv("QUEUE_KEY_PREFIX", "dbward:jobs"),
		VisibilityTimeout:      getEnvDuration("QUEUE_VISIBILITY_TIMEOUT", 45*time.Minute),
		StorageBackend:         getEnv("STORAGE_BACKEND", "local"),
		LocalStoragePath:       getEnv("LOCAL_STORAGE_PATH", "./data/backups"),
		SFTPHost:               getEnv("SFTP_HOST", ""),
		SFTPPort:               getEnvInt("SFTP_PORT", 22),
		SFTPUser:               getEnv("SFTP_USER", ""),
		SFTPPassword:           getEnv("SFTP_PASSWORD", ""),
		SFTPBasePath:           getEnv("SFTP_BASE_PATH", "db-backups"),
		S3Endpoint:             getEnv("S3_ENDPOINT", ""),
		S3Region:               getEnv("S3_REGION", "us-east-1"),
		S3Bucket:               getEnv("S3_BUCKET", ""),
		S3AccessKey:            getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:            getEnv("S3_SECRET_KEY", ""),
		InfluxDBURL:            getEnv("INFLUXDB_URL", ""),
		InfluxDBToken:          getEnv("INFLUXDB_TOKEN", ""),
		InfluxDBOrg:            getEnv("INFLUXDB_ORG", "dbward"),
		InfluxDBBucket:         getEnv("INFLUXDB_BUCKET", "backup-events"),
		MetricsCollectInterval: getEnvDuration("METRICS_COLLECT_INTERVAL", 30*time.Second),
	}

	AppConfig = config
	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Invalid bool for %s: %s, using default", key, value)
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("Invalid int for %s: %s, using default", key, value)
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("Invalid duration for %s: %s, using default", key, value)
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
