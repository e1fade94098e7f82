package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ihute/transit-backend/internal/cache"
	"github.com/ihute/transit-backend/internal/config"
	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/services"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// release-holds runs a single hold sweep and exits. It is meant for cron
// hosts that do not run the API server.
func main() {
	var (
		dbURLFlag string
		batch     int
		timeout   time.Duration
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.IntVar(&batch, "batch", 0, "maximum bookings to release (overrides BOOKING_SWEEP_BATCH)")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall time limit for the sweep")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if dbURLFlag != "" {
		cfg.Database.URL = dbURLFlag
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}
	if batch <= 0 {
		batch = cfg.Booking.SweepBatchSize
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Build minimal database config without loading full app config
	dbCfg := cfg.Database
	dbCfg.MaxConnections = 2
	dbCfg.MaxIdleConnections = 1

	db, err := database.NewConnection(dbCfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// released seats must not linger in the server's availability cache
	var seatCache services.AvailabilityCache = services.NoopAvailabilityCache{}
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, cached availability expires by TTL")
		} else {
			defer client.Close()
			seatCache = cache.NewAvailabilityCache(client, cfg.Redis.AvailabilityTTL)
		}
	}

	store := database.NewStore(db)
	availability := services.NewAvailabilityService(store.Seats(), seatCache, logger)
	holds := services.NewHoldExpirationService(store, availability, nil, batch, logger)

	released, err := holds.RunOnce(ctx)
	if err != nil {
		log.Fatalf("hold sweep failed: %v", err)
	}

	fmt.Printf("Released %d expired hold(s).\n", released)
}
