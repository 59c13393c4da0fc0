package database

import (
	"context"
	"testing"

	"barberbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetService(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := &models.Service{
		Name:        "Стрижка",
		DurationMin: 40,
		BufferMin:   5,
		Price:       80000,
		IsActive:    true,
	}
	require.NoError(t, db.CreateService(ctx, svc))
	require.NotZero(t, svc.ID)

	got, err := db.GetServiceByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Стрижка", got.Name)
	assert.Equal(t, 40, got.DurationMin)
	assert.Equal(t, 5, got.BufferMin)
	assert.True(t, got.IsActive)
}

func TestCreateServiceValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	assert.Error(t, db.CreateService(ctx, &models.Service{Name: "x", DurationMin: 0}))
	assert.Error(t, db.CreateService(ctx, &models.Service{Name: "x", DurationMin: 30, BufferMin: -1}))
}

func TestGetActiveServicesOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateService(ctx, &models.Service{Name: "Борода", DurationMin: 20, IsActive: true, SortOrder: 2}))
	require.NoError(t, db.CreateService(ctx, &models.Service{Name: "Стрижка", DurationMin: 40, IsActive: true, SortOrder: 1}))
	require.NoError(t, db.CreateService(ctx, &models.Service{Name: "Архив", DurationMin: 30, IsActive: false, SortOrder: 0}))

	active, err := db.GetActiveServices(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Стрижка", active[0].Name)
	assert.Equal(t, "Борода", active[1].Name)

	all, err := db.GetAllServices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSetServiceActive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := &models.Service{Name: "Стрижка", DurationMin: 40, IsActive: true}
	require.NoError(t, db.CreateService(ctx, svc))

	require.NoError(t, db.SetServiceActive(ctx, svc.ID, false))

	got, err := db.GetServiceByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, db.SetServiceActive(ctx, 9999, true), ErrNotFound)
}

func TestUpdateService(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := &models.Service{Name: "Стрижка", DurationMin: 40, BufferMin: 5, IsActive: true}
	require.NoError(t, db.CreateService(ctx, svc))

	svc.DurationMin = 45
	svc.Price = 90000
	require.NoError(t, db.UpdateService(ctx, svc))

	got, err := db.GetServiceByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, got.DurationMin)
	assert.InDelta(t, 90000, got.Price, 0.001)

	missing := &models.Service{ID: 9999, Name: "x", DurationMin: 30}
	assert.ErrorIs(t, db.UpdateService(ctx, missing), ErrNotFound)
}

func TestSeedServices(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seed := []models.Service{
		{ID: 1, Name: "Стрижка", DurationMin: 40, BufferMin: 5, IsActive: true, SortOrder: 1},
		{ID: 2, Name: "Борода", DurationMin: 20, BufferMin: 5, IsActive: true, SortOrder: 2},
	}
	require.NoError(t, db.SeedServices(ctx, seed))

	// Правку администратора повторный сид не затирает
	edited, err := db.GetServiceByID(ctx, 1)
	require.NoError(t, err)
	edited.Price = 100000
	require.NoError(t, db.UpdateService(ctx, edited))

	require.NoError(t, db.SeedServices(ctx, seed))

	got, err := db.GetServiceByID(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 100000, got.Price, 0.001)

	all, err := db.GetAllServices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
