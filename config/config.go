package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is everything the service reads from the environment. It is built
// once in main and handed to the components that need it.
type Config struct {
	Port string

	// Feature sources
	WFSURL       string
	APIURL       string
	APIToken     string
	FetchTimeout time.Duration
	FetchLimit   int
	CRS          string

	// Optional database sources; empty disables them
	PostgresDSN string
	MongoURI    string
	MongoDBName string
	SQLitePath  string

	CacheTTL      time.Duration
	CORSOrigins   []string
	ReferenceFile string
	BindingsFile  string
	DefaultPage   int
}

// Load reads the configuration from the environment, falling back to
// defaults for anything unset.
func Load() Config {
	return Config{
		Port:          getEnvWithDefault("PORT", "8080"),
		WFSURL:        getEnvWithDefault("WFS_URL", "http://localhost:8080/geoserver/wfs"),
		APIURL:        getEnvWithDefault("API_URL", ""),
		APIToken:      getEnvWithDefault("API_TOKEN", ""),
		FetchTimeout:  getEnvAsDuration("FETCH_TIMEOUT", 60*time.Second),
		FetchLimit:    getEnvAsInt("FETCH_CONCURRENCY", 8),
		CRS:           getEnvWithDefault("WFS_CRS", "EPSG:4326"),
		PostgresDSN:   getPostgresConnString(),
		MongoURI:      getEnvWithDefault("MONGO_URI", ""),
		MongoDBName:   getEnvWithDefault("MONGO_DB_NAME", "jalyukt"),
		SQLitePath:    getEnvWithDefault("SQLITE_SNAPSHOT", ""),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		CORSOrigins:   getEnvAsList("CORS_ORIGINS", []string{"*"}),
		ReferenceFile: getEnvWithDefault("JURISDICTION_FILE", ""),
		BindingsFile:  getEnvWithDefault("BINDINGS_FILE", ""),
		DefaultPage:   getEnvAsInt("DEFAULT_PAGE_SIZE", 25),
	}
}

// Database configuration. Postgres is only used when DB_HOST is set.
func getPostgresConnString() string {
	host := getEnvWithDefault("DB_HOST", "")
	if host == "" {
		return ""
	}
	port := getEnvWithDefault("DB_PORT", "5432")
	user := getEnvWithDefault("DB_USER", "postgres")
	password := getEnvWithDefault("DB_PASSWORD", "")
	dbname := getEnvWithDefault("DB_NAME", "jalyukt")
	sslmode := getEnvWithDefault("DB_SSL_MODE", "")
	if sslmode == "" {
		sslmode = "disable"
		if strings.Contains(host, "aivencloud.com") {
			sslmode = "require"
		}
	}

	return "host=" + host + " port=" + port + " user=" + user +
		" password=" + password + " dbname=" + dbname + " sslmode=" + sslmode
}

// Helper functions
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Debug reports whether verbose request logging is enabled.
func Debug() bool {
	return getEnvAsBool("DEBUG", false)
}
