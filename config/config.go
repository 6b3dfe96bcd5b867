package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/resto-order-core/utils"
)

type Config struct {
	Port               string
	GinMode            string
	LogLevel           string
	DBDriver           string
	DBDSN              string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	JWTSecret          string
	JWTTTL             time.Duration
	RabbitMQURL        string
	MDNSEnabled        bool
	MDNSInstance       string
	QRMenuBaseURL      string
	RequestTimeout     time.Duration
	RateLimitPerSecond int
	CORSOrigin         string
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf(".env not loaded: %v", err)
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBDSN:              os.Getenv("DB_DSN"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             os.Getenv("DB_PORT"),
		DBUser:             getEnv("DB_USER", "root"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             getEnv("DB_NAME", "resto_order"),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		JWTTTL:             getDuration("JWT_TTL", 12*time.Hour),
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		MDNSEnabled:        getBool("MDNS_ENABLED", false),
		MDNSInstance:       getEnv("MDNS_INSTANCE", "Resto Order Core"),
		QRMenuBaseURL:      getEnv("QR_MENU_BASE_URL", "http://localhost:8080/menu"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 15*time.Second),
		RateLimitPerSecond: getInt("RATE_LIMIT_PER_SECOND", 50),
		CORSOrigin:         getEnv("CORS_ORIGIN", "*"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
