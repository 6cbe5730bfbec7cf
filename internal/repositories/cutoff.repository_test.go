package repositories

import (
	"context"
	"testing"
	"time"

	"fleetwash/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCutoffRepository_Get_AbsentSetting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCutoffRepository(database.DB{})

	setting, err := repo.Get(context.Background(), db)
	require.NoError(t, err)
	assert.Nil(t, setting)
}

func TestCutoffRepository_Save_CreatesThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewCutoffRepository(database.DB{})
	ctx := context.Background()

	initial := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	setting, err := repo.Save(ctx, db, initial, fixture.manager.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, initial, setting.CutoffDate)
	assert.Equal(t, fixture.manager.ID, setting.UpdatedBy)

	// Extending by 3 days updates the same row rather than inserting another
	extended := initial.AddDate(0, 0, 3)
	reason := "payroll correction window"
	updated, err := repo.Save(ctx, db, extended, fixture.manager.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, setting.ID, updated.ID)
	assert.Equal(t, extended, updated.CutoffDate)

	current, err := repo.Get(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.WithinDuration(t, extended, current.CutoffDate, time.Second)
}

func TestCutoffRepository_Save_NormalizesDate(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewCutoffRepository(database.DB{})

	setting, err := repo.Save(
		context.Background(),
		db,
		time.Date(2024, 2, 29, 18, 45, 12, 0, time.UTC),
		fixture.manager.ID,
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), setting.CutoffDate)
}

func TestCutoffRepository_History(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewCutoffRepository(database.DB{})
	ctx := context.Background()

	initial := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	_, err := repo.Save(ctx, db, initial, fixture.manager.ID, nil)
	require.NoError(t, err)

	extended := initial.AddDate(0, 0, 7)
	reason := "late submissions"
	_, err = repo.Save(ctx, db, extended, fixture.manager.ID, &reason)
	require.NoError(t, err)

	history, err := repo.History(ctx, db, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest first; the extension records the boundary it replaced
	latest := history[0]
	require.NotNil(t, latest.OldDate)
	assert.WithinDuration(t, initial, *latest.OldDate, time.Second)
	assert.WithinDuration(t, extended, latest.NewDate, time.Second)
	require.NotNil(t, latest.Reason)
	assert.Equal(t, reason, *latest.Reason)

	first := history[1]
	assert.Nil(t, first.OldDate)
	assert.WithinDuration(t, initial, first.NewDate, time.Second)
}
