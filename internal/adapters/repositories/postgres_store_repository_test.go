package repositories_test

import (
	"context"
	"freight-service/internal/adapters/repositories"
	"freight-service/internal/domain"
	"freight-service/internal/platform/db/dbtest"
	"freight-service/internal/platform/serrors"
	"freight-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostgresStoreRepository(t *testing.T) {
	db := dbtest.Postgres(t)
	ctx := context.Background()
	require.NoError(t, repositories.InitSchema(ctx, db))
	require.NoError(t, repositories.SeedFromJSON(ctx, db, "testdata/stores.json"))

	repo := repositories.NewPostgresStoreRepository(db)

	store, err := repo.GetStore(ctx, "store-1")
	require.NoError(t, err)
	require.Equal(t, "Store One", store.Name)

	store, err = repo.GetStore(ctx, "store-2")
	require.NoError(t, err)
	require.False(t, store.HasAddress())

	_, err = repo.GetStore(ctx, "missing")
	require.ErrorIs(t, err, ports.ErrStoreNotFound)

	bands, err := repo.ListBands(ctx, "store-1")
	require.NoError(t, err)
	require.Len(t, bands, 2)
	require.Equal(t, 5.0, bands[0].RadiusKm)
	require.Equal(t, 10.0, bands[1].RadiusKm)

	created, err := repo.CreateBand(ctx, domain.DeliveryBand{StoreID: "store-1", Name: "Far", RadiusKm: 20, Price: 30})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = repo.CreateBand(ctx, domain.DeliveryBand{StoreID: "store-1", Name: "Dup", RadiusKm: 20, Price: 31})
	require.ErrorIs(t, err, serrors.ErrConflict)

	created.Price = 35
	require.NoError(t, repo.UpdateBand(ctx, *created))
	got, err := repo.GetBand(ctx, "store-1", created.ID)
	require.NoError(t, err)
	require.Equal(t, 35.0, got.Price)

	require.NoError(t, repo.DeleteBand(ctx, "store-1", created.ID))
	require.ErrorIs(t, repo.DeleteBand(ctx, "store-1", created.ID), ports.ErrBandNotFound)
	require.ErrorIs(t, repo.UpdateBand(ctx, *created), ports.ErrBandNotFound)

	// Reseeding replaces bands rather than duplicating them.
	require.NoError(t, repositories.SeedFromJSON(ctx, db, "testdata/stores.json"))
	bands, err = repo.ListBands(ctx, "store-1")
	require.NoError(t, err)
	require.Len(t, bands, 2)
}
