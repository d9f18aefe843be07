package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"freight-service/internal/domain"
	"freight-service/internal/platform/obs"
	"freight-service/internal/platform/serrors"
	"freight-service/internal/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgreSQL-backed implementation of the BandRepository port.
type PostgresStoreRepository struct{ DB *sql.DB }

var _ ports.BandRepository = (*PostgresStoreRepository)(nil)

func NewPostgresStoreRepository(db *sql.DB) *PostgresStoreRepository {
	return &PostgresStoreRepository{DB: db}
}

func (s *PostgresStoreRepository) GetStore(ctx context.Context, id string) (_ *domain.Store, err error) {
	defer obs.Time(ctx, "stores.GetStore")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres store repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		address
	FROM stores
	WHERE id = $1;
	`

	var store domain.Store
	var address sql.NullString
	err = s.DB.QueryRowContext(ctx, query, id).Scan(&store.ID, &store.Name, &address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, serrors.Wrap(serrors.ErrNotFound, ports.ErrStoreNotFound, "get store %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get store: query stores table: %w", err)
	}
	store.Address = address.String

	return &store, nil
}

// Return the store's bands ordered by ascending radius.
func (s *PostgresStoreRepository) ListBands(ctx context.Context, storeID string) (_ []domain.DeliveryBand, err error) {
	defer obs.Time(ctx, "stores.ListBands")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres store repository: DB is nil")
	}

	query := `
	SELECT
		id,
		store_id,
		name,
		radius_km,
		delivery_price
	FROM delivery_bands
	WHERE store_id = $1
	ORDER BY radius_km ASC, id ASC;
	`
	rows, err := s.DB.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list bands: query delivery_bands table: %w", err)
	}
	defer rows.Close()

	bands := make([]domain.DeliveryBand, 0, 8)
	for rows.Next() {
		var b domain.DeliveryBand
		if err := rows.Scan(&b.ID, &b.StoreID, &b.Name, &b.RadiusKm, &b.Price); err != nil {
			return nil, fmt.Errorf("list bands: scan row: %w", err)
		}
		bands = append(bands, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bands: row iteration: %w", err)
	}

	return bands, nil
}

func (s *PostgresStoreRepository) GetBand(ctx context.Context, storeID, bandID string) (*domain.DeliveryBand, error) {
	query := `
	SELECT
		id,
		store_id,
		name,
		radius_km,
		delivery_price
	FROM delivery_bands
	WHERE store_id = $1 AND id = $2;
	`

	var b domain.DeliveryBand
	err := s.DB.QueryRowContext(ctx, query, storeID, bandID).Scan(&b.ID, &b.StoreID, &b.Name, &b.RadiusKm, &b.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, serrors.Wrap(serrors.ErrNotFound, ports.ErrBandNotFound, "get band %q", bandID)
	}
	if err != nil {
		return nil, fmt.Errorf("get band: query delivery_bands table: %w", err)
	}

	return &b, nil
}

func (s *PostgresStoreRepository) CreateBand(ctx context.Context, band domain.DeliveryBand) (*domain.DeliveryBand, error) {
	band.ID = uuid.NewString()

	query := `
	INSERT INTO delivery_bands (
		id,
		store_id,
		name,
		radius_km,
		delivery_price
	)
	VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := s.DB.ExecContext(ctx, query, band.ID, band.StoreID, band.Name, band.RadiusKm, band.Price); err != nil {
		return nil, mapWriteError("create band", err)
	}

	return &band, nil
}

func (s *PostgresStoreRepository) UpdateBand(ctx context.Context, band domain.DeliveryBand) error {
	query := `
	UPDATE delivery_bands
	SET name = $3,
		radius_km = $4,
		delivery_price = $5
	WHERE store_id = $1 AND id = $2;
	`
	res, err := s.DB.ExecContext(ctx, query, band.StoreID, band.ID, band.Name, band.RadiusKm, band.Price)
	if err != nil {
		return mapWriteError("update band", err)
	}

	return requireAffected(res, "update band", band.ID)
}

func (s *PostgresStoreRepository) DeleteBand(ctx context.Context, storeID, bandID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM delivery_bands WHERE store_id = $1 AND id = $2;`, storeID, bandID)
	if err != nil {
		return fmt.Errorf("delete band: %w", err)
	}

	return requireAffected(res, "delete band", bandID)
}

func requireAffected(res sql.Result, op, bandID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return serrors.Wrap(serrors.ErrNotFound, ports.ErrBandNotFound, "%s %q", op, bandID)
	}
	return nil
}

// mapWriteError turns constraint violations into semantic errors.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return serrors.Wrap(serrors.ErrConflict, err, "%s: a band with this radius already exists", op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
