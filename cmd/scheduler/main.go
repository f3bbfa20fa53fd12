package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"pickup-commit-service/internal/adapters/cache"
	"pickup-commit-service/internal/adapters/matrix"
	"pickup-commit-service/internal/adapters/notify"
	"pickup-commit-service/internal/adapters/repositories"
	"pickup-commit-service/internal/api"
	"pickup-commit-service/internal/config"
	"pickup-commit-service/internal/platform/db"
	"pickup-commit-service/internal/ports"
	"pickup-commit-service/internal/scheduler"
	"pickup-commit-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite/Postgres, ORS, RabbitMQ) behind ports,
// starts the commitment scheduler, and serves the read-only ops endpoints.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.LoadCommitment()
	if err != nil {
		log.Fatal(err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid TRIP_TIMEZONE %q: %v", cfg.Timezone, err)
	}

	store, repo, reader, err := openStore()
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	distanceCache, geocodeCache := buildCaches(store)

	var provider ports.MatrixProvider
	if cfg.Enabled {
		orsKey := os.Getenv("ORS_API_KEY")
		if strings.TrimSpace(orsKey) == "" {
			log.Fatal("ORS_API_KEY is required when the commitment scheduler is enabled")
		}
		provider, err = matrix.NewORSMatrixProvider(orsKey, distanceCache, geocodeCache)
		if err != nil {
			log.Fatal(err)
		}
	}

	notifier, closeNotifier := buildNotifier()
	defer closeNotifier()

	deps := services.PipelineDeps{
		Repo:     repo,
		Matrix:   provider,
		Notifier: notifier,
		Location: loc,
		Window: services.CommitWindow{
			Before: time.Duration(cfg.WindowHours) * time.Hour,
			Grace:  time.Duration(cfg.GraceMinutes) * time.Minute,
		},
	}

	sched := scheduler.New(scheduler.Config{
		Enabled:      cfg.Enabled,
		Interval:     cfg.TickInterval,
		StartupDelay: cfg.StartupDelay,
		BatchLimit:   cfg.BatchLimit,
	}, deps)

	handle := sched.Start()
	defer handle.Stop()

	port := config.Get("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(reader),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Ops server listening addr=:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("shutting down")
	handle.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ops server shutdown: %v", err)
	}
}

// openStore selects the booking store backend: Postgres when DATABASE_URL is
// configured, a local SQLite file otherwise. The SQLite path also initializes
// the schema and applies the optional seed file for local runs.
func openStore() (*sql.DB, ports.BookingRepository, ports.BookingReader, error) {
	if databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); databaseURL != "" {
		store, err := db.OpenPostgres(databaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repositories.NewPgBookingRepository(store)
		return store, repo, repo, nil
	}

	store, err := db.OpenSqlite(config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		return nil, nil, nil, err
	}

	if err := repositories.InitSchema(store); err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/bookings.json")
	if _, statErr := os.Stat(seedPath); statErr == nil {
		if err := repositories.SeedFromJSON(store, seedPath); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
	}

	repo := repositories.NewSqliteBookingRepository(store)
	return store, repo, repo, nil
}

// buildCaches prefers a shared Redis cache when REDIS_ADDR is set and
// reachable, falling back to the SQL-backed caches in the booking store.
func buildCaches(store *sql.DB) (matrix.DistanceCache, matrix.GeocodeCache) {
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err == nil {
			return cache.NewRedisDistanceCache(client), cache.NewRedisGeocodeCache(client)
		}
		log.Printf("redis unreachable at %s, using SQL caches", addr)
	}

	if strings.TrimSpace(os.Getenv("DATABASE_URL")) != "" {
		return cache.NewSQLDistanceCache(store), cache.NewSQLGeocodeCache(store)
	}
	return cache.NewSqliteDistanceCache(store), cache.NewSqliteGeocodeCache(store)
}

// buildNotifier publishes to RabbitMQ when a broker is configured and logs
// messages otherwise.
func buildNotifier() (ports.Notifier, func()) {
	url := strings.TrimSpace(os.Getenv("AMQP_URL"))
	if url == "" {
		return notify.LogNotifier{}, func() {}
	}

	n, err := notify.NewAMQPNotifier(url)
	if err != nil {
		log.Printf("amqp notifier unavailable, falling back to log notifier: %v", err)
		return notify.LogNotifier{}, func() {}
	}

	return n, func() { _ = n.Close() }
}
