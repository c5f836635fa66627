package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Firebase   FirebaseConfig
	Store      StoreConfig
	Redis      RedisConfig
	Monitoring MonitoringConfig
	Offline    OfflineConfig
	App        AppConfig
}

type ServerConfig struct {
	Port               string
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
	PublicURL          string
}

// FirebaseConfig holds the Admin SDK credentials and the public web
// configuration handed to the browser push worker.
type FirebaseConfig struct {
	ProjectID         string
	CredentialsPath   string
	CredentialsJSON   string
	WebAPIKey         string
	AuthDomain        string
	MessagingSenderID string
	AppID             string
	VAPIDKey          string
}

const (
	StoreBackendFirestore = "firestore"
	StoreBackendPostgres  = "postgres"
)

type StoreConfig struct {
	Backend     string
	PostgresDSN string
}

type RedisConfig struct {
	URL string
}

type MonitoringConfig struct {
	Dir           string
	RetentionDays int
	RateLimit     float64
	RateBurst     int
}

type OfflineConfig struct {
	GeocoderURL     string
	RealtimePattern string
	APIPattern      string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			PublicURL:          strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),
		},
		Firebase: FirebaseConfig{
			ProjectID:         getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath:   getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			CredentialsJSON:   getEnv("FIREBASE_CREDENTIALS_JSON", ""),
			WebAPIKey:         getEnv("FIREBASE_WEB_API_KEY", ""),
			AuthDomain:        getEnv("FIREBASE_AUTH_DOMAIN", ""),
			MessagingSenderID: getEnv("FIREBASE_MESSAGING_SENDER_ID", ""),
			AppID:             getEnv("FIREBASE_APP_ID", ""),
			VAPIDKey:          getEnv("FIREBASE_VAPID_KEY", ""),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", StoreBackendFirestore)),
			PostgresDSN: getEnv("DB_DSN", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Monitoring: MonitoringConfig{
			Dir:           getEnv("MONITORING_DIR", "logs"),
			RetentionDays: getEnvAsInt("MONITORING_RETENTION_DAYS", 30),
			RateLimit:     getEnvAsFloat("MONITORING_RATE_LIMIT", 5),
			RateBurst:     getEnvAsInt("MONITORING_RATE_BURST", 20),
		},
		Offline: OfflineConfig{
			GeocoderURL:     getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
			RealtimePattern: getEnv("OFFLINE_REALTIME_PATTERN", `^https://[^/]+\.firebaseio\.com/`),
			APIPattern:      getEnv("OFFLINE_API_PATTERN", `^https://(api\.[^/]+|nominatim\.openstreetmap\.org)/`),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	switch c.Store.Backend {
	case StoreBackendFirestore:
	case StoreBackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("DB_DSN is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Monitoring.Dir == "" {
		return fmt.Errorf("MONITORING_DIR is required")
	}

	return nil
}

// HasCredentials reports whether Admin SDK credentials were provided.
func (f FirebaseConfig) HasCredentials() bool {
	return f.CredentialsJSON != "" || f.CredentialsPath != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
