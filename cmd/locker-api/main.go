package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/LockerBox/config"
	"github.com/BearBump/LockerBox/internal/broker/kafka"
	"github.com/BearBump/LockerBox/internal/cache/rediscache"
	"github.com/BearBump/LockerBox/internal/geocode"
	"github.com/BearBump/LockerBox/internal/services/locations"
	"github.com/BearBump/LockerBox/internal/storage/pglocker"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("failed to parse config, %v", err))
	}

	httpAddr := cfg.Locker.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.Locker.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "locker-api"
	}
	topic := cfg.Kafka.VendorSyncedTopicName
	if topic == "" {
		topic = "locker.vendor.synced"
	}
	countsTTL := time.Duration(cfg.Locker.CountsTTLSeconds) * time.Second
	if countsTTL <= 0 {
		countsTTL = 5 * time.Minute
	}
	geocodeTTL := time.Duration(cfg.Locker.GeocodeCacheTTLSeconds) * time.Second
	if geocodeTTL <= 0 {
		geocodeTTL = 24 * time.Hour
	}
	geocodeRPM := int64(cfg.Locker.GeocodeRateLimitPerMinute)
	if geocodeRPM <= 0 {
		geocodeRPM = 60
	}

	st := mustOpenPostgresWithRetry(cfg.Database.DSN(), 60*time.Second)
	defer st.Close()

	rc := rediscache.New(cfg.Redis.Addr())
	rl := rediscache.NewRateLimiter(cfg.Redis.Addr())

	svc := locations.New(st, rc, countsTTL)

	geocoder := geocode.New(nil).
		WithBaseURL(cfg.Locker.GeocodeBaseURL).
		WithCache(rc, geocodeTTL).
		WithRateLimit(rl, geocodeRPM)

	consumer := kafka.NewConsumer([]string{cfg.Kafka.Addr()}, topic, consumerGroup)
	defer func() { _ = consumer.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runLockerAPI(ctx, lockerAPIOpts{
		httpAddr:      httpAddr,
		swaggerPath:   os.Getenv("swaggerPath"),
		topic:         topic,
		consumerGroup: consumerGroup,
	}, svc, geocoder, consumer); err != nil && err != context.Canceled {
		panic(err)
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pglocker.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pglocker.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}
