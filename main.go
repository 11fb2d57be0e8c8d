package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/khushi6simplex/js2analytics-sub000/config"
	"github.com/khushi6simplex/js2analytics-sub000/engine"
	"github.com/khushi6simplex/js2analytics-sub000/handlers"
	"github.com/khushi6simplex/js2analytics-sub000/middleware"
	"github.com/khushi6simplex/js2analytics-sub000/reports"
	"github.com/khushi6simplex/js2analytics-sub000/sources"
)

func main() {
	startTime := time.Now()
	log.Printf("Starting server initialization at %s", startTime.Format(time.RFC3339))

	// Load environment variables first
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	cfg := config.Load()

	table, err := config.LoadReferenceTable(cfg.ReferenceFile)
	if err != nil {
		log.Fatalf("Failed to load jurisdiction reference table: %v", err)
	}
	index := engine.NewIndex(table)
	log.Printf("Loaded %d divisions", len(index.Divisions()))

	bindings, err := config.LoadBindings(cfg.BindingsFile, cfg.CRS)
	if err != nil {
		log.Fatalf("Failed to load source bindings: %v", err)
	}

	store := sources.NewStore(config.NewFeatureCache(cfg.CacheTTL))
	store.SetLimit(cfg.FetchLimit)
	for _, b := range bindings {
		store.Bind(b)
	}

	conns := registerSources(store, cfg)
	defer conns.Close()

	catalogue := reports.Default()
	reportHandler := handlers.NewReportHandler(catalogue, index, store, cfg.DefaultPage)
	healthHandler := handlers.NewHealthHandler(conns, reportHandler)

	r := mux.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{
			"GET", "POST", "OPTIONS",
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
			"Origin",
			middleware.RequestIDHeader,
			middleware.RoleHeader,
			middleware.FilterHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"Content-Length",
			"Content-Type",
			middleware.RequestIDHeader,
		},
		AllowCredentials: false,
		MaxAge:           86400,
		Debug:            config.Debug(),
	})

	// Apply middlewares in correct order
	if config.Debug() {
		r.Use(middleware.CORSDebugMiddleware)
	}
	r.Use(corsHandler.Handler)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.CompressHandler)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.IdentityMiddleware)

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	reportHandler.Register(api)
	healthHandler.Register(api)
	log.Println("Routes registered successfully")

	srv := &http.Server{
		Handler:           r,
		Addr:              ":" + cfg.Port,
		WriteTimeout:      cfg.FetchTimeout + 30*time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			serverErrors <- err
		}
	}()

	log.Printf("Server initialized in %s", time.Since(startTime).Round(time.Millisecond))
	log.Printf("Health check endpoint: http://localhost:%s/api/v1/health", cfg.Port)
	log.Printf("Reports endpoint: http://localhost:%s/api/v1/reports", cfg.Port)

	// Handle graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("Shutdown signal received")
	case err := <-serverErrors:
		log.Printf("Server error received: %v", err)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	} else {
		log.Println("Server shutdown completed successfully")
	}
}

// registerSources wires every configured feature backend into the store.
// Database sources are optional; a backend that cannot be reached is logged
// and left out, and bindings pointing at it fail per request.
func registerSources(store *sources.Store, cfg config.Config) *config.Connections {
	client := &http.Client{Timeout: cfg.FetchTimeout}
	conns := &config.Connections{}

	if cfg.WFSURL != "" {
		store.Register(config.SourceWFS, sources.NewWFSSource(cfg.WFSURL, cfg.APIToken, client))
		log.Printf("Registered WFS source: %s", cfg.WFSURL)
	}
	if cfg.APIURL != "" {
		store.Register(config.SourceAPI, sources.NewAPISource(cfg.APIURL, cfg.APIToken, client))
		log.Printf("Registered API source: %s", cfg.APIURL)
	}

	retries := config.MaxRetries()
	if cfg.PostgresDSN != "" {
		log.Println("Initializing PostgreSQL database...")
		db, err := config.OpenPostgres(cfg.PostgresDSN, retries)
		if err != nil {
			log.Printf("Warning: PostgreSQL source disabled: %v", err)
		} else {
			conns.Postgres = db
			store.Register(config.SourcePostgres, sources.NewSQLSource(db, sources.DriverPostgres))
			log.Println("PostgreSQL database initialized successfully")
		}
	}
	if cfg.SQLitePath != "" {
		db, err := sources.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Printf("Warning: SQLite snapshot disabled: %v", err)
		} else {
			conns.SQLite = db
			store.Register(config.SourceSQLite, sources.NewSQLSource(db, sources.DriverSQLite))
			log.Printf("Opened SQLite snapshot %s", cfg.SQLitePath)
		}
	}
	if cfg.MongoURI != "" {
		log.Println("Initializing MongoDB connection...")
		mc, db, err := config.ConnectMongo(cfg.MongoURI, cfg.MongoDBName, retries)
		if err != nil {
			log.Printf("Warning: MongoDB source disabled: %v", err)
		} else {
			conns.Mongo = mc
			store.Register(config.SourceMongo, sources.NewMongoSource(db))
			log.Printf("Connected to MongoDB database %s", cfg.MongoDBName)
		}
	}
	return conns
}
