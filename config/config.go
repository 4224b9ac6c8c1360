package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/insure-dao/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port              string
	DatabaseURL       string
	StellarNetwork    string
	HorizonURL        string
	NetworkPassphrase string
	PoolAccount       string
	VerifyAccounts    bool
	DaoMembers        []string

	JWTSecret string
	JWTExpiry time.Duration

	SlowResponses bool
	NetworkFlaky  bool
	BaseLatency   time.Duration
	SlowLatency   time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	KafkaBrokers []string
	KafkaTopic   string
	RedisAddr    string
	RedisChannel string

	S3Bucket      string
	AWSRegion     string
	UploadBaseURL string
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		StellarNetwork:    getEnvOrDefault("STELLAR_NETWORK", "testnet"),
		HorizonURL:        getEnvOrDefault("HORIZON_URL", "https://horizon-testnet.stellar.org"),
		NetworkPassphrase: getEnvOrDefault("NETWORK_PASSPHRASE", "Test SDF Network ; September 2015"),
		PoolAccount:       os.Getenv("POOL_ACCOUNT"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		KafkaTopic:        getEnvOrDefault("KAFKA_TOPIC", "insure-dao.changes"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisChannel:      getEnvOrDefault("REDIS_CHANNEL", "insure-dao:changes"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		AWSRegion:         getEnvOrDefault("AWS_REGION", "us-east-1"),
	}
	cfg.UploadBaseURL = getEnvOrDefault("UPLOAD_BASE_URL", "http://localhost:"+cfg.Port+"/api/v1/uploads")

	cfg.KafkaBrokers = getEnvList("KAFKA_BROKERS")
	cfg.DaoMembers = getEnvList("DAO_MEMBERS")

	var err error
	if cfg.VerifyAccounts, err = getEnvBool("VERIFY_ACCOUNTS", false); err != nil {
		return nil, err
	}
	if cfg.SlowResponses, err = getEnvBool("SLOW_RESPONSES", false); err != nil {
		return nil, err
	}
	if cfg.NetworkFlaky, err = getEnvBool("NETWORK_FLAKY", false); err != nil {
		return nil, err
	}

	hours, err := getEnvInt("JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.JWTExpiry = time.Duration(hours) * time.Hour

	baseMs, err := getEnvInt("BASE_LATENCY_MS", 120)
	if err != nil {
		return nil, err
	}
	cfg.BaseLatency = time.Duration(baseMs) * time.Millisecond

	slowMs, err := getEnvInt("SLOW_LATENCY_MS", 1200)
	if err != nil {
		return nil, err
	}
	cfg.SlowLatency = time.Duration(slowMs) * time.Millisecond

	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	rps := getEnvOrDefault("RATE_LIMIT_RPS", "10")
	if cfg.RateLimitRPS, err = strconv.ParseFloat(rps, 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", rps, err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.AuditRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
