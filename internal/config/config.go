// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"

	StorePostgres = "postgres"
	StoreMemory   = "memory"

	GeocoderNominatim = "nominatim"
	GeocoderORS       = "ors"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	HTTP struct {
		Addr              string        `env:"HTTP_ADDR" env-default:":8080"`
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
		ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
		WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"60s"`
		IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
		RequestTimeout    time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s"`
	}

	Store struct {
		Backend     string `env:"STORE_BACKEND" env-default:"postgres"`
		DatabaseURL string `env:"DATABASE_URL"`
		SeedPath    string `env:"SEED_PATH" env-default:"data/seeds/stores.json"`
	}

	Cache struct {
		Backend       string        `env:"CACHE_BACKEND" env-default:"memory"`
		TTL           time.Duration `env:"CACHE_TTL" env-default:"24h"`
		RedisAddr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
		RedisPassword string        `env:"REDIS_PASSWORD"`
		RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	}

	Geocoding struct {
		Provider      string        `env:"GEOCODER" env-default:"nominatim"`
		LookupTimeout time.Duration `env:"LOOKUP_TIMEOUT" env-default:"5s"`
		NominatimURL  string        `env:"NOMINATIM_URL" env-default:"https://nominatim.openstreetmap.org"`
		ViaCEPURL     string        `env:"VIACEP_URL" env-default:"https://viacep.com.br"`
		ORSURL        string        `env:"ORS_URL" env-default:"https://api.openrouteservice.org"`
		ORSAPIKey     string        `env:"ORS_API_KEY"`
		UserAgent     string        `env:"USER_AGENT" env-default:"freight-service/1.0"`
		CountrySuffix string        `env:"COUNTRY_SUFFIX" env-default:"Brasil"`
	}
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment take precedence over .env.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the combinations cleanenv cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case StorePostgres:
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store backend"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	case CachePostgres:
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}

	switch c.Geocoding.Provider {
	case GeocoderNominatim:
	case GeocoderORS:
		if strings.TrimSpace(c.Geocoding.ORSAPIKey) == "" {
			errs = append(errs, errors.New("ORS_API_KEY is required when GEOCODER=ors"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GEOCODER %q", c.Geocoding.Provider))
	}
	if c.Geocoding.LookupTimeout <= 0 {
		errs = append(errs, errors.New("LOOKUP_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }
