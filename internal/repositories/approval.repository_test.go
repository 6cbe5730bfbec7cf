package repositories

import (
	"context"
	"testing"

	"fleetwash/internal/apperrors"
	"fleetwash/internal/database"
	. "fleetwash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalRepository_Create_OnePendingPerEntry(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewApprovalRepository(database.DB{})
	ctx := context.Background()

	entry := newEntry(fixture, serviceDate, fixture.owner.ID)
	require.NoError(t, db.Create(entry).Error)

	first := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "wrong vehicle",
	}
	require.NoError(t, repo.Create(ctx, db, first))

	stored, err := repo.GetByID(ctx, db, first.ID)
	require.NoError(t, err)
	assert.Equal(t, ApprovalStatusPending, stored.Status)

	second := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "second attempt",
	}
	err = repo.Create(ctx, db, second)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestApprovalRepository_Resolve(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewApprovalRepository(database.DB{})
	ctx := context.Background()

	entry := newEntry(fixture, serviceDate, fixture.owner.ID)
	require.NoError(t, db.Create(entry).Error)

	request := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "wrong vehicle",
	}
	require.NoError(t, repo.Create(ctx, db, request))

	resolved, err := repo.Resolve(ctx, db, request.ID, ApprovalStatusApproved, fixture.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, ApprovalStatusApproved, resolved.Status)
	require.NotNil(t, resolved.ReviewedBy)
	assert.Equal(t, fixture.manager.ID, *resolved.ReviewedBy)
	assert.NotNil(t, resolved.ReviewedAt)
	assert.True(t, resolved.IsResolved())
}

func TestApprovalRepository_Resolve_WriteOnce(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewApprovalRepository(database.DB{})
	ctx := context.Background()

	entry := newEntry(fixture, serviceDate, fixture.owner.ID)
	require.NoError(t, db.Create(entry).Error)

	request := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "wrong vehicle",
	}
	require.NoError(t, repo.Create(ctx, db, request))

	_, err := repo.Resolve(ctx, db, request.ID, ApprovalStatusDenied, fixture.manager.ID)
	require.NoError(t, err)

	// The denied verdict must stick, even against an approve attempt
	_, err = repo.Resolve(ctx, db, request.ID, ApprovalStatusApproved, fixture.manager.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	persisted, err := repo.GetByID(ctx, db, request.ID)
	require.NoError(t, err)
	assert.Equal(t, ApprovalStatusDenied, persisted.Status)
}

func TestApprovalRepository_Resolve_RejectsInvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewApprovalRepository(database.DB{})
	ctx := context.Background()

	entry := newEntry(fixture, serviceDate, fixture.owner.ID)
	require.NoError(t, db.Create(entry).Error)

	request := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "wrong vehicle",
	}
	require.NoError(t, repo.Create(ctx, db, request))

	_, err := repo.Resolve(ctx, db, request.ID, ApprovalStatusPending, fixture.manager.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApprovalRepository_ResolvedEntryAcceptsNewRequest(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewApprovalRepository(database.DB{})
	ctx := context.Background()

	entry := newEntry(fixture, serviceDate, fixture.owner.ID)
	require.NoError(t, db.Create(entry).Error)

	first := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "wrong vehicle",
	}
	require.NoError(t, repo.Create(ctx, db, first))

	_, err := repo.Resolve(ctx, db, first.ID, ApprovalStatusDenied, fixture.manager.ID)
	require.NoError(t, err)

	// Once resolved, the pending slot opens up again
	second := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "resubmitting with context",
	}
	assert.NoError(t, repo.Create(ctx, db, second))
}

func TestApprovalRepository_ListByManager(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewApprovalRepository(database.DB{})
	ctx := context.Background()

	entry := newEntry(fixture, serviceDate, fixture.owner.ID)
	require.NoError(t, db.Create(entry).Error)

	otherEntry := newEntry(fixture, serviceDate.AddDate(0, 0, 1), fixture.owner.ID)
	require.NoError(t, db.Create(otherEntry).Error)

	pending := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "wrong vehicle",
	}
	require.NoError(t, repo.Create(ctx, db, pending))

	resolved := &ApprovalRequest{
		EntryID:    otherEntry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "duplicate log",
	}
	require.NoError(t, repo.Create(ctx, db, resolved))
	_, err := repo.Resolve(ctx, db, resolved.ID, ApprovalStatusApproved, fixture.manager.ID)
	require.NoError(t, err)

	pendingOnly, err := repo.ListByManager(ctx, db, fixture.manager.ID, ApprovalStatusPending)
	require.NoError(t, err)
	require.Len(t, pendingOnly, 1)
	assert.Equal(t, pending.ID, pendingOnly[0].ID)
	assert.Equal(t, fixture.vehicle.ID, pendingOnly[0].Entry.VehicleID)

	all, err := repo.ListByManager(ctx, db, fixture.manager.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestApprovalRepository_ListByEmployee(t *testing.T) {
	db := setupTestDB(t)
	fixture := seedFixture(t, db)
	repo := NewApprovalRepository(database.DB{})
	ctx := context.Background()

	entry := newEntry(fixture, serviceDate, fixture.owner.ID)
	require.NoError(t, db.Create(entry).Error)

	request := &ApprovalRequest{
		EntryID:    entry.ID,
		EmployeeID: fixture.owner.ID,
		ManagerID:  fixture.manager.ID,
		Reason:     "wrong vehicle",
	}
	require.NoError(t, repo.Create(ctx, db, request))

	mine, err := repo.ListByEmployee(ctx, db, fixture.owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, request.ID, mine[0].ID)

	none, err := repo.ListByEmployee(ctx, db, fixture.other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
