package repos_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/architeacher/device-inventory/internal/adapters/repos"
	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_InsertAssignsIdentity(t *testing.T) {
	t.Parallel()

	repo := repos.NewMemoryRepository()
	ctx := context.Background()

	draft := &model.Device{Name: "Watch", Brand: "Garmin", State: model.StateInUse}
	stored, err := repo.Insert(ctx, draft)

	require.NoError(t, err)
	require.False(t, stored.ID.IsZero())
	require.False(t, stored.CreatedAt.IsZero())
	require.True(t, draft.ID.IsZero(), "input must not be mutated")

	fetched, err := repo.FetchByID(ctx, stored.ID)
	require.NoError(t, err)
	require.Equal(t, stored, fetched)

	fetched.Name = "mutated"
	again, err := repo.FetchByID(ctx, stored.ID)
	require.NoError(t, err)
	require.Equal(t, "Watch", again.Name)
}

func TestMemoryRepository_FetchByField(t *testing.T) {
	t.Parallel()

	repo := repos.NewMemoryRepository()
	ctx := context.Background()

	for _, device := range []*model.Device{
		{Name: "Watch", Brand: "Garmin", State: model.StateInUse},
		{Name: "Phone", Brand: "Acme", State: model.StateAvailable},
		{Name: "Edge", Brand: "Garmin"},
	} {
		_, err := repo.Insert(ctx, device)
		require.NoError(t, err)
	}

	byBrand, err := repo.FetchByField(ctx, "brand", "Garmin")
	require.NoError(t, err)
	require.Len(t, byBrand, 2)

	lowerBrand, err := repo.FetchByField(ctx, "brand", "garmin")
	require.NoError(t, err)
	require.Empty(t, lowerBrand)

	byState, err := repo.FetchByField(ctx, "state", model.StateAvailable)
	require.NoError(t, err)
	require.Len(t, byState, 1)
	require.Equal(t, "Phone", byState[0].Name)

	_, err = repo.FetchByField(ctx, "color", "red")
	require.ErrorIs(t, err, model.ErrUnknownField)

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestMemoryRepository_SaveKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	repo := repos.NewMemoryRepository()
	ctx := context.Background()

	stored, err := repo.Insert(ctx, &model.Device{Name: "Watch", Brand: "Garmin"})
	require.NoError(t, err)

	update := stored.Clone()
	update.Name = "Fenix"
	update.CreatedAt = update.CreatedAt.Add(-time.Hour)

	saved, err := repo.Save(ctx, update)
	require.NoError(t, err)
	require.Equal(t, "Fenix", saved.Name)
	require.Equal(t, stored.CreatedAt, saved.CreatedAt)
}

func TestMemoryRepository_DeleteByID(t *testing.T) {
	t.Parallel()

	repo := repos.NewMemoryRepository()
	ctx := context.Background()

	stored, err := repo.Insert(ctx, &model.Device{Name: "Watch", Brand: "Garmin"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, stored.ID))
	require.ErrorIs(t, repo.DeleteByID(ctx, stored.ID), model.ErrDeviceNotFound)

	_, err = repo.FetchByID(ctx, stored.ID)
	require.ErrorIs(t, err, model.ErrDeviceNotFound)
}

func TestMemoryRepository_ConcurrentInserts(t *testing.T) {
	t.Parallel()

	repo := repos.NewMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := repo.Insert(ctx, &model.Device{Name: "Watch", Brand: "Garmin"})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 50)
}
