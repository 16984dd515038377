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
	Port     string
	Env      string
	LogLevel string

	RedisURL string
	CartTTL  time.Duration

	BackendURL     string
	CatalogURL     string
	RequestTimeout time.Duration

	CatalogCacheTTL     time.Duration
	QuoteConcurrency    int
	CheckoutLockTTL     time.Duration
	ConfirmationRoute   string
	FreeShippingOver    string
	FlatShippingFee     string
	TaxRate             string
	MaxProductImages    int
	MaxUploadSizeBytes  int64
	OrderEventsTopicArn string

	JWTSecret     string
	JWTSecretName string

	CloudWatchEnabled bool
	AllowedOrigins    []string
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:     getEnv("PORT", "8090"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisURL: getEnv("REDIS_URL", "redis://redis:6379"),
		CartTTL:  getEnvDuration("CART_TTL", time.Hour*24*7),

		BackendURL:     strings.TrimSuffix(getEnv("BACKEND_URL", "http://localhost:3000"), "/"),
		CatalogURL:     strings.TrimSuffix(getEnv("CATALOG_URL", "https://fakestoreapi.com"), "/"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),

		CatalogCacheTTL:     getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		QuoteConcurrency:    getEnvInt("QUOTE_CONCURRENCY", 10),
		CheckoutLockTTL:     getEnvDuration("CHECKOUT_LOCK_TTL", 30*time.Second),
		ConfirmationRoute:   getEnv("CONFIRMATION_ROUTE", "/order-confirmation"),
		FreeShippingOver:    getEnv("FREE_SHIPPING_OVER", "100"),
		FlatShippingFee:     getEnv("FLAT_SHIPPING_FEE", "10"),
		TaxRate:             getEnv("TAX_RATE", "0.10"),
		MaxProductImages:    getEnvInt("MAX_PRODUCT_IMAGES", 5),
		MaxUploadSizeBytes:  int64(getEnvInt("MAX_UPLOAD_SIZE_BYTES", 20<<20)),
		OrderEventsTopicArn: getEnv("ORDER_EVENTS_TOPIC_ARN", ""),

		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTSecretName: getEnv("JWT_SECRET_NAME", ""),

		CloudWatchEnabled: os.Getenv("CLOUDWATCH_ENABLED") == "true",
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		o = strings.TrimSpace(strings.TrimSuffix(o, "/"))
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
