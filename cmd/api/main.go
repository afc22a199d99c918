// Package main is the entry point for the library catalog API server.
// It wires together configuration, storage, the rate limiter, and the HTTP router.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.

	"github.com/aoideee/library-catalog/internal/clock"
	"github.com/aoideee/library-catalog/internal/data"
	"github.com/aoideee/library-catalog/internal/events"
	"github.com/aoideee/library-catalog/internal/ratelimit"
)

// appVersion is the current version of the API, shown in logs and the healthcheck.
const appVersion = "1.1.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config  serverConfig
	logger  *slog.Logger
	models  data.Models
	limiter *ratelimit.Limiter
	events  events.Publisher
	clock   clock.Clock
	wg      sync.WaitGroup // tracks background goroutines started by handlers
}

func main() {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	settings := loadConfig(os.Args[1:])

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var models data.Models
	switch settings.storage {
	case "memory":
		models = data.NewMemoryModels()
		logger.Warn("using in-memory storage; books are lost on restart")
	default:
		db, err := openDB(settings)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("database connection pool established")
		models = data.NewModels(db)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(settings.kafka.brokers) > 0 {
		publisher = events.NewKafkaPublisher(settings.kafka.brokers, settings.kafka.topic)
		logger.Info("publishing book events", "brokers", settings.kafka.brokers, "topic", settings.kafka.topic)
	}
	defer publisher.Close()

	clk := clock.NewSystem()
	app := &applicationDependencies{
		config:  settings,
		logger:  logger,
		models:  models,
		limiter: ratelimit.New(settings.limiter.Config, clk),
		events:  publisher,
		clock:   clk,
	}

	if err := app.serve(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// openDB opens a PostgreSQL connection pool using the DSN stored in settings,
// applies the pool limits, then pings the database with a 5-second timeout.
func openDB(settings serverConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", settings.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(settings.db.maxOpenConns)
	db.SetMaxIdleConns(settings.db.maxIdleConns)
	db.SetConnMaxIdleTime(settings.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
