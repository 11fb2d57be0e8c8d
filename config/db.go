package config

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	maxRetries = 5
	retryDelay = 5 * time.Second
)

// LoadEnv loads environment variables from a .env file. Variables already
// set in the environment are overwritten.
func LoadEnv() error {
	possiblePaths := []string{
		".env",
		"../.env",
		os.Getenv("REPORTS_ENV"),
	}

	var loadedFile string
	for _, path := range possiblePaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			loadedFile = path
			break
		}
	}
	if loadedFile == "" {
		return fmt.Errorf("no .env file found")
	}
	return loadEnvFile(loadedFile)
}

func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening .env file: %w", err)
	}
	defer file.Close()

	log.Printf("Loading environment variables from %s", path)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		os.Setenv(key, value)
		lower := strings.ToLower(key)
		if !strings.Contains(lower, "password") && !strings.Contains(lower, "secret") && !strings.Contains(lower, "token") {
			log.Printf("Set environment variable: %s", key)
		}
	}
	return scanner.Err()
}

// OpenPostgres connects to PostGIS, retrying while the database comes up.
func OpenPostgres(dsn string, retries int) (*sql.DB, error) {
	var err error
	for i := 0; i < retries; i++ {
		var db *sql.DB
		db, err = openPostgres(dsn)
		if err == nil {
			return db, nil
		}
		log.Printf("Failed to connect to PostgreSQL (attempt %d/%d): %v", i+1, retries, err)
		if i < retries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", retries, err)
}

func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening PostgreSQL database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to PostgreSQL database: %w", err)
	}
	log.Printf("Successfully connected to PostgreSQL")
	return db, nil
}

// ConnectMongo connects to MongoDB with retries and returns the client and
// the named database. Reads only, so no write concern is configured.
func ConnectMongo(uri, dbName string, retries int) (*mongo.Client, *mongo.Database, error) {
	var err error
	for i := 0; i < retries; i++ {
		var client *mongo.Client
		client, err = connectMongo(uri)
		if err == nil {
			log.Printf("Successfully connected to MongoDB database: %s", dbName)
			return client, client.Database(dbName), nil
		}
		log.Printf("Failed to connect to MongoDB (attempt %d/%d): %v", i+1, retries, err)
		if i < retries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, nil, fmt.Errorf("failed to connect after %d attempts: %w", retries, err)
}

func connectMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnecting(10).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetSocketTimeout(30 * time.Second).
		SetRetryReads(true).
		SetMaxConnIdleTime(60 * time.Minute).
		SetReadConcern(readconcern.Majority()).
		SetReadPreference(readpref.SecondaryPreferred())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}
	return client, nil
}

// Connections holds the optional database handles opened at startup.
type Connections struct {
	Postgres *sql.DB
	SQLite   *sql.DB
	Mongo    *mongo.Client
}

// Health pings every open connection and reports each by name.
func (c *Connections) Health(ctx context.Context) map[string]error {
	status := make(map[string]error)
	if c == nil {
		return status
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if c.Postgres != nil {
		if err := c.Postgres.PingContext(ctx); err != nil {
			status["postgres"] = fmt.Errorf("PostgreSQL health check failed: %w", err)
		} else {
			status["postgres"] = nil
		}
	}
	if c.SQLite != nil {
		if err := c.SQLite.PingContext(ctx); err != nil {
			status["sqlite"] = fmt.Errorf("SQLite health check failed: %w", err)
		} else {
			status["sqlite"] = nil
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Ping(ctx, nil); err != nil {
			status["mongo"] = fmt.Errorf("MongoDB health check failed: %w", err)
		} else {
			status["mongo"] = nil
		}
	}
	return status
}

// Close shuts every open connection down.
func (c *Connections) Close() {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if c.Postgres != nil {
		if err := c.Postgres.Close(); err != nil {
			log.Printf("Error closing PostgreSQL connection: %v", err)
		}
	}
	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			log.Printf("Error closing SQLite snapshot: %v", err)
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Printf("Error closing MongoDB connection: %v", err)
		}
	}
}

// MaxRetries is the default connection attempt count.
func MaxRetries() int {
	return getEnvAsInt("DB_MAX_RETRIES", maxRetries)
}
