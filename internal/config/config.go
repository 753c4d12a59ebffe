package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string
	CORSOrigin  string

	DatabaseURL string

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	UploadTempDir string
	MaxUploadMB   int

	Assets AssetsConfig

	KafkaBrokers []string
	KafkaTopic   string

	ES ESConfig
}

type AssetsConfig struct {
	Store    string // local or s3
	LocalDir string
	BaseURL  string

	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
}

type ESConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		ServiceName: EnvDefault("SERVICE_NAME", "users"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8000),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
		CORSOrigin:  EnvDefault("CORS_ORIGIN", "*"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AccessSecret:  []byte(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshSecret: []byte(os.Getenv("REFRESH_TOKEN_SECRET")),
		AccessTTL:     EnvDurationDefault("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTTL:    EnvDurationDefault("REFRESH_TOKEN_TTL", 10*24*time.Hour),

		UploadTempDir: EnvDefault("UPLOAD_TEMP_DIR", "./public/temp"),
		MaxUploadMB:   EnvIntDefault("MAX_UPLOAD_MB", 16),

		Assets: AssetsConfig{
			Store:       EnvDefault("ASSET_STORE", "local"),
			LocalDir:    EnvDefault("ASSET_LOCAL_DIR", "./public/assets"),
			BaseURL:     os.Getenv("ASSET_BASE_URL"),
			S3Bucket:    os.Getenv("S3_BUCKET"),
			S3Region:    EnvDefault("S3_REGION", "us-east-1"),
			S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("S3_SECRET_KEY"),
			S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		},

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "user_events"),

		ES: ESConfig{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    EnvDefault("ES_INDEX", "channels"),
		},
	}
}

// MustLoad is Load plus the checks for values the service cannot start without.
func MustLoad() *Config {
	cfg := Load()

	MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(cfg.AccessSecret, "ACCESS_TOKEN_SECRET")
	MustNonEmptyBytes(cfg.RefreshSecret, "REFRESH_TOKEN_SECRET")
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		log.Fatalf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if cfg.Assets.Store == "s3" {
		MustNonEmpty(cfg.Assets.S3Bucket, "S3_BUCKET")
	}

	return cfg
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDurationDefault accepts Go durations ("15m") and the "10d" day form.
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return def
		}
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
