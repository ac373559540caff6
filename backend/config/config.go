package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	JWTSecret  string
	JWTTTL     time.Duration
	ServerPort string
	CORSOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	MediaAPIURL      string
	MediaAPIKey      string
	MediaPublicURL   string
	MediaMaxUploadMB int

	PaymentAPIURL    string
	PaymentSecretKey string

	PendingPurchaseTTL time.Duration
	PurchaseSweepSpec  string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "coursehub"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		JWTTTL:     getEnvDuration("JWT_TTL", 72*time.Hour),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		CORSOrigin: getEnv("CORS_ORIGINS", "*"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		MediaAPIURL:      getEnv("MEDIA_API_URL", "http://localhost:9000"),
		MediaAPIKey:      getEnv("MEDIA_API_KEY", ""),
		MediaPublicURL:   getEnv("MEDIA_PUBLIC_URL", "http://localhost:9000/public"),
		MediaMaxUploadMB: getEnvInt("MEDIA_MAX_UPLOAD_MB", 5),

		PaymentAPIURL:    getEnv("PAYMENT_API_URL", "https://api.paystack.co"),
		PaymentSecretKey: getEnv("PAYMENT_SECRET_KEY", ""),

		PendingPurchaseTTL: getEnvDuration("PENDING_PURCHASE_TTL", 24*time.Hour),
		PurchaseSweepSpec:  getEnv("PURCHASE_SWEEP_SPEC", "@every 1h"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error parsing duration %s: %v", key, err)
		return defaultValue
	}
	return d
}
