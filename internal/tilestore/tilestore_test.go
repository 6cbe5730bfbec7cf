package tilestore

import (
	"context"
	"testing"
	"time"

	"fleetwash/internal/apperrors"
	. "fleetwash/internal/models"
	"fleetwash/internal/policy"
	"fleetwash/internal/roles"
	"fleetwash/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory ledger honoring the one-active-entry rule.
type fakeBackend struct {
	entries    map[uuid.UUID]*WashEntry
	requests   []*ApprovalRequest
	employeeID uuid.UUID
	failWith   error
	calls      int
}

func newFakeBackend(employeeID uuid.UUID) *fakeBackend {
	return &fakeBackend{
		entries:    make(map[uuid.UUID]*WashEntry),
		employeeID: employeeID,
	}
}

func (f *fakeBackend) takeFailure() error {
	err := f.failWith
	f.failWith = nil
	return err
}

func (f *fakeBackend) activeFor(vehicleID uuid.UUID, date time.Time) *WashEntry {
	for _, entry := range f.entries {
		if entry.VehicleID == vehicleID && entry.ServiceDate.Equal(date) && !entry.IsDeleted() {
			return entry
		}
	}
	return nil
}

func (f *fakeBackend) CreateEntry(
	ctx context.Context,
	vehicleID, locationID uuid.UUID,
	date time.Time,
) (*WashEntry, error) {
	f.calls++
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	if f.activeFor(vehicleID, date) != nil {
		return nil, apperrors.ErrConflict
	}

	entry := &WashEntry{
		VehicleID:   vehicleID,
		ServiceDate: date,
		LocationID:  locationID,
		EmployeeID:  f.employeeID,
	}
	entry.ID = uuid.New()
	f.entries[entry.ID] = entry
	return entry, nil
}

func (f *fakeBackend) SoftDeleteEntry(ctx context.Context, entryID uuid.UUID) (*WashEntry, error) {
	f.calls++
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	entry, ok := f.entries[entryID]
	if !ok || entry.IsDeleted() {
		return nil, apperrors.ErrNotFound
	}

	now := time.Now().UTC()
	entry.DeletedAt = &now
	return entry, nil
}

func (f *fakeBackend) RestoreEntry(ctx context.Context, entryID uuid.UUID) (*WashEntry, error) {
	f.calls++
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	entry, ok := f.entries[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if f.activeFor(entry.VehicleID, entry.ServiceDate) != nil {
		return nil, apperrors.ErrConflict
	}

	entry.DeletedAt = nil
	return entry, nil
}

func (f *fakeBackend) SubmitApproval(
	ctx context.Context,
	entryID uuid.UUID,
	reason string,
) (*ApprovalRequest, error) {
	f.calls++
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, apperrors.ErrValidation
	}

	request := &ApprovalRequest{
		EntryID:    entryID,
		EmployeeID: f.employeeID,
		Reason:     reason,
	}
	request.ID = uuid.New()
	f.requests = append(f.requests, request)
	return request, nil
}

func (f *fakeBackend) DayEntries(
	ctx context.Context,
	locationID uuid.UUID,
	date time.Time,
) ([]*WashEntry, error) {
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	var entries []*WashEntry
	for _, entry := range f.entries {
		if entry.LocationID == locationID && entry.ServiceDate.Equal(date) && !entry.IsDeleted() {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

type storeFixture struct {
	store      *Store
	backend    *fakeBackend
	vehicleID  uuid.UUID
	locationID uuid.UUID
	actor      policy.Actor
}

func newStoreFixture(t *testing.T, date time.Time) storeFixture {
	t.Helper()

	actor := policy.Actor{ID: uuid.New(), Role: roles.Employee}
	vehicleID := uuid.New()
	locationID := uuid.New()

	backend := newFakeBackend(actor.ID)
	store := New(backend, actor, locationID, date, nil)
	require.NoError(t, store.Refresh(context.Background(), []uuid.UUID{vehicleID}))

	return storeFixture{
		store:      store,
		backend:    backend,
		vehicleID:  vehicleID,
		locationID: locationID,
		actor:      actor,
	}
}

func TestStore_ToggleAddThenRemove(t *testing.T) {
	today := utils.Today()
	f := newStoreFixture(t, today)
	ctx := context.Background()

	result, err := f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
	assert.True(t, result.Tile.Washed)
	assert.Equal(t, f.actor.ID, result.Tile.OwnerID)
	assert.False(t, result.Tile.Pending)

	result, err = f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
	assert.False(t, result.Tile.Washed)
}

func TestStore_ToggleUnknownVehicle(t *testing.T) {
	f := newStoreFixture(t, utils.Today())

	_, err := f.store.Toggle(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_DeniedForOtherOwner(t *testing.T) {
	today := utils.Today()
	f := newStoreFixture(t, today)
	ctx := context.Background()

	// Another employee's entry lands on the board
	other := uuid.New()
	entry, err := f.backend.CreateEntry(ctx, f.vehicleID, f.locationID, today)
	require.NoError(t, err)
	entry.EmployeeID = other
	require.NoError(t, f.store.Refresh(ctx, []uuid.UUID{f.vehicleID}))

	callsBefore := f.backend.calls
	result, err := f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, result.Outcome)
	assert.Equal(t, policy.ReasonOwnedByOther, result.Reason)

	// Denials never reach the backend and the ledger is unchanged
	assert.Equal(t, callsBefore, f.backend.calls)
	assert.True(t, result.Tile.Washed)
	assert.Equal(t, other, result.Tile.OwnerID)
}

func TestStore_RetroactiveRemoveEscalates(t *testing.T) {
	yesterday := utils.Today().AddDate(0, 0, -1)
	f := newStoreFixture(t, yesterday)
	ctx := context.Background()

	entry, err := f.backend.CreateEntry(ctx, f.vehicleID, f.locationID, yesterday)
	require.NoError(t, err)
	require.NoError(t, f.store.Refresh(ctx, []uuid.UUID{f.vehicleID}))

	result, err := f.store.Toggle(ctx, f.vehicleID, "logged against wrong vehicle")
	require.NoError(t, err)
	assert.Equal(t, OutcomeEscalated, result.Outcome)
	require.NotNil(t, result.Request)
	assert.Equal(t, entry.ID, result.Request.EntryID)

	// The tile's committed state is untouched while the request is pending
	tile, ok := f.store.Tile(f.vehicleID)
	require.True(t, ok)
	assert.True(t, tile.Washed)
	assert.False(t, tile.Pending)
	assert.False(t, entry.IsDeleted())
}

func TestStore_ConflictRevertsToUnwashed(t *testing.T) {
	today := utils.Today()
	f := newStoreFixture(t, today)
	ctx := context.Background()

	// A racing client commits first, unseen by this store
	_, err := f.backend.CreateEntry(ctx, f.vehicleID, f.locationID, today)
	require.NoError(t, err)

	result, err := f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, result.Outcome)
	assert.Equal(t, policy.ReasonAlreadyRecorded, result.Reason)

	tile, ok := f.store.Tile(f.vehicleID)
	require.True(t, ok)
	assert.False(t, tile.Washed)
	assert.False(t, tile.Pending)
}

func TestStore_NetworkFailureReverts(t *testing.T) {
	today := utils.Today()
	f := newStoreFixture(t, today)
	ctx := context.Background()

	f.backend.failWith = apperrors.ErrNetwork
	_, err := f.store.Toggle(ctx, f.vehicleID, "")
	assert.Error(t, err)

	tile, ok := f.store.Tile(f.vehicleID)
	require.True(t, ok)
	assert.False(t, tile.Washed)
	assert.False(t, tile.Pending)

	// The user can re-click once the transport recovers
	result, err := f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
}

func TestStore_UndoRestoresOriginalEntry(t *testing.T) {
	today := utils.Today()
	f := newStoreFixture(t, today)
	ctx := context.Background()

	added, err := f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)
	originalEntryID := added.Tile.EntryID

	removed, err := f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)
	assert.False(t, removed.Tile.Washed)

	restored, err := f.store.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, restored.Outcome)
	assert.True(t, restored.Tile.Washed)
	assert.Equal(t, f.actor.ID, restored.Tile.OwnerID)
	assert.Equal(t, originalEntryID, restored.Tile.EntryID)
}

func TestStore_UndoOfAddFreesTheSlot(t *testing.T) {
	today := utils.Today()
	f := newStoreFixture(t, today)
	ctx := context.Background()

	_, err := f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)

	result, err := f.store.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, result.Tile.Washed)

	// The slot is free again: a fresh create succeeds instead of conflicting
	result, err = f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
	assert.True(t, result.Tile.Washed)
}

func TestStore_UndoSlotIsSingle(t *testing.T) {
	today := utils.Today()
	f := newStoreFixture(t, today)
	ctx := context.Background()

	_, err := f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)

	_, err = f.store.Undo(ctx)
	require.NoError(t, err)

	// The slot was consumed
	_, err = f.store.Undo(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestStore_RefreshDiscardsUndoSlot(t *testing.T) {
	today := utils.Today()
	f := newStoreFixture(t, today)
	ctx := context.Background()

	_, err := f.store.Toggle(ctx, f.vehicleID, "")
	require.NoError(t, err)

	require.NoError(t, f.store.Refresh(ctx, []uuid.UUID{f.vehicleID}))

	_, err = f.store.Undo(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestStore_RefreshRebuildsFromLedger(t *testing.T) {
	today := utils.Today()
	f := newStoreFixture(t, today)
	ctx := context.Background()

	entry, err := f.backend.CreateEntry(ctx, f.vehicleID, f.locationID, today)
	require.NoError(t, err)

	newVehicle := uuid.New()
	require.NoError(t, f.store.Refresh(ctx, []uuid.UUID{f.vehicleID, newVehicle}))

	tile, ok := f.store.Tile(f.vehicleID)
	require.True(t, ok)
	assert.True(t, tile.Washed)
	assert.Equal(t, entry.ID, tile.EntryID)

	blank, ok := f.store.Tile(newVehicle)
	require.True(t, ok)
	assert.False(t, blank.Washed)

	assert.Len(t, f.store.Snapshot(), 2)
}

// refreshingBackend refreshes the store with a replacement scope while a
// create is in flight, simulating a board switch racing a commit.
type refreshingBackend struct {
	*fakeBackend
	store    *Store
	newScope []uuid.UUID
}

func (r *refreshingBackend) CreateEntry(
	ctx context.Context,
	vehicleID, locationID uuid.UUID,
	date time.Time,
) (*WashEntry, error) {
	entry, err := r.fakeBackend.CreateEntry(ctx, vehicleID, locationID, date)
	if err != nil {
		return nil, err
	}
	if err := r.store.Refresh(ctx, r.newScope); err != nil {
		return nil, err
	}
	return entry, nil
}

func TestStore_ScopeChangeDuringCommit(t *testing.T) {
	today := utils.Today()
	ctx := context.Background()

	actor := policy.Actor{ID: uuid.New(), Role: roles.Employee}
	vehicleID := uuid.New()
	replacement := uuid.New()

	backend := &refreshingBackend{
		fakeBackend: newFakeBackend(actor.ID),
		newScope:    []uuid.UUID{replacement},
	}
	store := New(backend, actor, uuid.New(), today, nil)
	backend.store = store
	require.NoError(t, store.Refresh(ctx, []uuid.UUID{vehicleID}))

	// The refresh drops the toggled vehicle before the commit re-acquires
	// the lock; the ledger write still stands.
	result, err := store.Toggle(ctx, vehicleID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
	assert.True(t, result.Tile.Washed)
	assert.Equal(t, actor.ID, result.Tile.OwnerID)

	// The arena reflects the replacement scope only
	_, ok := store.Tile(vehicleID)
	assert.False(t, ok)
	_, ok = store.Tile(replacement)
	assert.True(t, ok)

	// The refresh cleared the undo slot and the commit must not restore it
	_, err = store.Undo(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestStore_CutoffLocksTile(t *testing.T) {
	lockedDay := utils.Today().AddDate(0, 0, -5)
	cutoff := utils.Today()

	actor := policy.Actor{ID: uuid.New(), Role: roles.Employee}
	vehicleID := uuid.New()
	backend := newFakeBackend(actor.ID)
	store := New(backend, actor, uuid.New(), lockedDay, &cutoff)
	require.NoError(t, store.Refresh(context.Background(), []uuid.UUID{vehicleID}))

	result, err := store.Toggle(context.Background(), vehicleID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, result.Outcome)
	assert.Equal(t, policy.ReasonPeriodClosed, result.Reason)

	// A manager on the same board is not locked out
	managerStore := New(backend, policy.Actor{ID: uuid.New(), Role: roles.Manager}, uuid.New(), lockedDay, &cutoff)
	require.NoError(t, managerStore.Refresh(context.Background(), []uuid.UUID{vehicleID}))

	result, err = managerStore.Toggle(context.Background(), vehicleID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
}
