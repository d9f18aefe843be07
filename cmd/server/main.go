package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"freight-service/internal/adapters/cache"
	"freight-service/internal/adapters/geocoding"
	"freight-service/internal/adapters/repositories"
	"freight-service/internal/api"
	"freight-service/internal/config"
	"freight-service/internal/platform/db"
	"freight-service/internal/platform/logger"
	"freight-service/internal/platform/metrics"
	"freight-service/internal/ports"
	"freight-service/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger.Setup(cfg.Environment)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg)
	_ = logger.Get(ctx).Sync()
	if err != nil {
		logger.Fatal(ctx, "server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var conn *sql.DB
	if cfg.Store.Backend == config.StorePostgres || cfg.Cache.Backend == config.CachePostgres {
		var err error
		conn, err = db.Open(ctx, cfg.Store.DatabaseURL, db.DefaultOptions())
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn); err != nil {
			return err
		}
	}

	stores, err := newStoreRepository(cfg, conn)
	if err != nil {
		return err
	}

	coordCache, closeCache, err := newCoordinateCache(ctx, cfg, conn)
	if err != nil {
		return err
	}
	defer closeCache()

	session := &http.Client{Timeout: cfg.Geocoding.LookupTimeout}
	geocoder, err := newGeocoder(cfg, session)
	if err != nil {
		return err
	}
	postal := geocoding.NewViaCEPClient(session, cfg.Geocoding.ViaCEPURL)

	resolver := services.NewCoordinateResolver(postal, geocoder, coordCache, services.ResolverOptions{
		TTL:           cfg.Cache.TTL,
		LookupTimeout: cfg.Geocoding.LookupTimeout,
		CountrySuffix: cfg.Geocoding.CountrySuffix,
		Metrics:       m,
	})

	router := api.NewRouter(api.Dependencies{
		Freight:  services.NewFreightCalculator(stores, resolver, m),
		Resolver: resolver,
		Bands:    services.NewBandService(stores),
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           http.TimeoutHandler(router, cfg.HTTP.RequestTimeout, `{"error":"request timed out"}`),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("store_backend", cfg.Store.Backend),
			zap.String("cache_backend", cfg.Cache.Backend),
			zap.String("geocoder", cfg.Geocoding.Provider),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStoreRepository(cfg *config.Config, conn *sql.DB) (ports.BandRepository, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		repo, err := repositories.NewMemoryStoreRepositoryFromSeed(cfg.Store.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("memory store: %w", err)
		}
		return repo, nil
	default:
		return repositories.NewPostgresStoreRepository(conn), nil
	}
}

func newCoordinateCache(ctx context.Context, cfg *config.Config, conn *sql.DB) (ports.CoordinateCache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis cache: ping %s: %w", cfg.Cache.RedisAddr, err)
		}
		return cache.NewRedisCoordinateCache(client, cfg.Cache.TTL), func() { _ = client.Close() }, nil
	case config.CachePostgres:
		return cache.NewSQLCoordinateCache(conn), func() {}, nil
	default:
		return cache.NewMemoryCoordinateCache(), func() {}, nil
	}
}

func newGeocoder(cfg *config.Config, session *http.Client) (ports.Geocoder, error) {
	if cfg.Geocoding.Provider == config.GeocoderORS {
		return geocoding.NewORSGeocoder(session, cfg.Geocoding.ORSURL, cfg.Geocoding.ORSAPIKey)
	}
	return geocoding.NewNominatimGeocoder(session, cfg.Geocoding.NominatimURL, cfg.Geocoding.UserAgent), nil
}
