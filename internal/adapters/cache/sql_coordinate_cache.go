package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"freight-service/internal/platform/obs"
	"freight-service/internal/ports"
	"strings"
)

// SQLCoordinateCache is a PostgreSQL-backed cache mapping postal codes to
// coordinates. It survives restarts, which keeps cold starts from hammering
// the public geocoders.
type SQLCoordinateCache struct {
	DB *sql.DB
}

var _ ports.CoordinateCache = (*SQLCoordinateCache)(nil)

func NewSQLCoordinateCache(db *sql.DB) *SQLCoordinateCache {
	return &SQLCoordinateCache{DB: db}
}

// Fetch the cached coordinates for a postal code.
func (s *SQLCoordinateCache) Get(ctx context.Context, key string) (_ ports.CachedCoordinates, _ bool, err error) {
	defer obs.Time(ctx, "coords.sql.Get")(&err)

	if s.DB == nil {
		return ports.CachedCoordinates{}, false, errors.New("coordinate cache: db is nil")
	}

	q := `
	SELECT lat, lng, resolved_at
	FROM postal_code_coordinates
	WHERE postal_code = $1;
	`

	var e ports.CachedCoordinates
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&e.Coordinates.Lat, &e.Coordinates.Lng, &e.ResolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.CachedCoordinates{}, false, nil
	}
	if err != nil {
		return ports.CachedCoordinates{}, false, fmt.Errorf("get coordinate cache: query postal_code_coordinates table: %w", err)
	}

	return e, true, nil
}

// Store a postal code -> coordinate mapping, replacing any previous entry.
func (s *SQLCoordinateCache) Put(ctx context.Context, key string, entry ports.CachedCoordinates) error {
	if s.DB == nil {
		return errors.New("coordinate cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert coordinate cache: empty postal code key")
	}

	q := `
	INSERT INTO postal_code_coordinates (postal_code, lat, lng, resolved_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (postal_code) DO UPDATE
	SET lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		resolved_at = EXCLUDED.resolved_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, entry.Coordinates.Lat, entry.Coordinates.Lng, entry.ResolvedAt.UTC()); err != nil {
		return fmt.Errorf("insert coordinate cache postal_code=%q: %w", key, err)
	}

	return nil
}
