package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Initialize the PostgreSQL database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStoresQuery := `
	CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		address TEXT
	);
	`

	createBandsQuery := `
	CREATE TABLE IF NOT EXISTS delivery_bands (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		radius_km DOUBLE PRECISION NOT NULL CHECK (radius_km > 0),
		delivery_price DOUBLE PRECISION NOT NULL CHECK (delivery_price >= 0),
		UNIQUE (store_id, radius_km)
	);
	`

	createCoordinateCacheQuery := `
	CREATE TABLE IF NOT EXISTS postal_code_coordinates (
		postal_code TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		resolved_at TIMESTAMPTZ NOT NULL
	);
	`

	statements := []string{
		createStoresQuery,
		createBandsQuery,
		createCoordinateCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the database with stores and their bands from a JSON file.
// Existing stores are updated and their bands replaced.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	stores, err := LoadSeedFile(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed stores: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsertStore, err := tx.PrepareContext(ctx, `
	INSERT INTO stores (id, name, address)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		address = EXCLUDED.address;
	`)
	if err != nil {
		return fmt.Errorf("seed stores: prepare store upsert: %w", err)
	}
	defer upsertStore.Close()

	insertBand, err := tx.PrepareContext(ctx, `
	INSERT INTO delivery_bands (id, store_id, name, radius_km, delivery_price)
	VALUES ($1, $2, $3, $4, $5);
	`)
	if err != nil {
		return fmt.Errorf("seed stores: prepare band insert: %w", err)
	}
	defer insertBand.Close()

	for _, s := range stores {
		if _, err := upsertStore.ExecContext(ctx, s.ID, s.Name, nullableString(s.Address)); err != nil {
			return fmt.Errorf("seed stores: upsert store id=%s: %w", s.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM delivery_bands WHERE store_id = $1;`, s.ID); err != nil {
			return fmt.Errorf("seed stores: clear bands store id=%s: %w", s.ID, err)
		}
		for _, b := range s.Bands {
			if _, err := insertBand.ExecContext(ctx, uuid.NewString(), s.ID, bandName(b), b.RadiusKm, b.DeliveryPrice); err != nil {
				return fmt.Errorf("seed stores: insert band store id=%s radius=%.2f: %w", s.ID, b.RadiusKm, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed stores: commit tx: %w", err)
	}

	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
