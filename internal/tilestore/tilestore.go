// Package tilestore owns the per-vehicle tile arena behind the wash board.
// Tiles live here and nowhere else: callers read snapshots or call Toggle,
// Undo, and Refresh, never mutate state directly. All committed state is a
// projection of the ledger; Refresh replaces it wholesale rather than
// patching, so a stale client can always recover by reloading.
package tilestore

import (
	"context"
	"errors"
	"sync"
	"time"

	"fleetwash/internal/apperrors"
	. "fleetwash/internal/models"
	"fleetwash/internal/policy"
	"fleetwash/internal/utils"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
)

// Backend is the server surface the store mutates through.
type Backend interface {
	CreateEntry(ctx context.Context, vehicleID, locationID uuid.UUID, date time.Time) (*WashEntry, error)
	SoftDeleteEntry(ctx context.Context, entryID uuid.UUID) (*WashEntry, error)
	RestoreEntry(ctx context.Context, entryID uuid.UUID) (*WashEntry, error)
	SubmitApproval(ctx context.Context, entryID uuid.UUID, reason string) (*ApprovalRequest, error)
	DayEntries(ctx context.Context, locationID uuid.UUID, date time.Time) ([]*WashEntry, error)
}

type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeDenied    Outcome = "denied"
	OutcomeEscalated Outcome = "escalated"
	OutcomeIgnored   Outcome = "ignored"
)

// Result reports what a toggle did so the UI can message the user.
type Result struct {
	Outcome Outcome
	Reason  string
	Tile    Tile
	Request *ApprovalRequest
}

// Tile is one vehicle's wash status for the store's day. Pending means a
// mutation is in flight; the committed fields still hold the last known
// ledger state underneath it.
type Tile struct {
	VehicleID uuid.UUID
	Washed    bool
	OwnerID   uuid.UUID
	EntryID   uuid.UUID
	Pending   bool
}

type undoAction string

const (
	undoRemove  undoAction = "remove"  // undoes an add
	undoRestore undoAction = "restore" // undoes a remove
)

// undoRecord is a single slot, not a stack. Each committed mutation
// overwrites it.
type undoRecord struct {
	vehicleID uuid.UUID
	action    undoAction
	entryID   uuid.UUID
}

// Store holds the tile arena for one (location, date) scope and one actor.
type Store struct {
	mu         sync.Mutex
	backend    Backend
	actor      policy.Actor
	locationID uuid.UUID
	date       time.Time
	cutoff     *time.Time
	tiles      map[uuid.UUID]*Tile
	undo       *undoRecord
	log        logger.Logger
}

func New(backend Backend, actor policy.Actor, locationID uuid.UUID, date time.Time, cutoff *time.Time) *Store {
	return &Store{
		backend:    backend,
		actor:      actor,
		locationID: locationID,
		date:       utils.DateOnly(date),
		cutoff:     cutoff,
		tiles:      make(map[uuid.UUID]*Tile),
		log:        logger.New("tilestore"),
	}
}

// Refresh rebuilds every tile from the ledger. Local committed state is
// discarded, never merged, and the undo slot is cleared because its entry
// ids may no longer be valid.
func (s *Store) Refresh(ctx context.Context, vehicleIDs []uuid.UUID) error {
	log := s.log.Function("Refresh")

	entries, err := s.backend.DayEntries(ctx, s.locationID, s.date)
	if err != nil {
		return log.Err("failed to load day entries", err, "locationID", s.locationID)
	}

	byVehicle := make(map[uuid.UUID]*WashEntry, len(entries))
	for _, entry := range entries {
		byVehicle[entry.VehicleID] = entry
	}

	tiles := make(map[uuid.UUID]*Tile, len(vehicleIDs))
	for _, vehicleID := range vehicleIDs {
		tile := &Tile{VehicleID: vehicleID}
		if entry, ok := byVehicle[vehicleID]; ok {
			tile.Washed = true
			tile.OwnerID = entry.EmployeeID
			tile.EntryID = entry.ID
		}
		tiles[vehicleID] = tile
	}

	s.mu.Lock()
	s.tiles = tiles
	s.undo = nil
	s.mu.Unlock()

	return nil
}

// SetCutoff updates the boundary the store evaluates locks against, used
// when a cutoff-changed notification arrives.
func (s *Store) SetCutoff(cutoff *time.Time) {
	s.mu.Lock()
	s.cutoff = cutoff
	s.mu.Unlock()
}

// Snapshot returns a copy of every tile for rendering.
func (s *Store) Snapshot() []Tile {
	s.mu.Lock()
	defer s.mu.Unlock()

	tiles := make([]Tile, 0, len(s.tiles))
	for _, tile := range s.tiles {
		tiles = append(tiles, *tile)
	}
	return tiles
}

// Tile returns one vehicle's tile.
func (s *Store) Tile(vehicleID uuid.UUID) (Tile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tile, ok := s.tiles[vehicleID]
	if !ok {
		return Tile{}, false
	}
	return *tile, true
}

// Toggle flips one tile: add when unwashed, remove when washed. A tile
// with a mutation already in flight ignores the click rather than queueing
// a second one. Denials never reach the backend; escalations file an
// approval request and leave the tile's committed state alone.
func (s *Store) Toggle(ctx context.Context, vehicleID uuid.UUID, reason string) (Result, error) {
	log := s.log.Function("Toggle")

	s.mu.Lock()
	tile, ok := s.tiles[vehicleID]
	if !ok {
		s.mu.Unlock()
		return Result{}, log.ErrorWithType(apperrors.ErrNotFound, "unknown vehicle tile", "vehicleID", vehicleID)
	}
	if tile.Pending {
		result := Result{Outcome: OutcomeIgnored, Tile: *tile}
		s.mu.Unlock()
		return result, nil
	}

	action := policy.ActionAdd
	if tile.Washed {
		action = policy.ActionRemove
	}

	decision := policy.Decide(policy.DecideInput{
		Action: action,
		Tile:   policy.TileCommitted{Washed: tile.Washed, OwnerID: tile.OwnerID, EntryID: tile.EntryID},
		Actor:  s.actor,
		Date:   s.date,
		Cutoff: s.cutoff,
		Today:  utils.Today(),
	})

	if decision.Outcome == policy.OutcomeDenied {
		result := Result{Outcome: OutcomeDenied, Reason: decision.Reason, Tile: *tile}
		s.mu.Unlock()
		return result, nil
	}

	if decision.Outcome == policy.OutcomeRequiresApproval {
		entryID := tile.EntryID
		committed := *tile
		s.mu.Unlock()
		return s.escalate(ctx, entryID, reason, committed)
	}

	tile.Pending = true
	committed := *tile
	s.mu.Unlock()

	if action == policy.ActionAdd {
		return s.commitAdd(ctx, log, vehicleID, committed)
	}
	return s.commitRemove(ctx, log, vehicleID, committed)
}

func (s *Store) commitAdd(ctx context.Context, log logger.Logger, vehicleID uuid.UUID, committed Tile) (Result, error) {
	entry, err := s.backend.CreateEntry(ctx, vehicleID, s.locationID, s.date)
	if err != nil {
		s.revert(vehicleID, committed)
		if errors.Is(err, apperrors.ErrConflict) {
			return Result{Outcome: OutcomeDenied, Reason: policy.ReasonAlreadyRecorded, Tile: committedWithoutPending(committed)}, nil
		}
		return Result{}, log.Err("create failed, tile reverted", err, "vehicleID", vehicleID)
	}

	s.mu.Lock()
	tile, ok := s.tiles[vehicleID]
	if !ok {
		// A refresh narrowed the scope while the call was in flight. The
		// ledger write stands; the rebuilt arena already reflects it, so
		// there is no local tile to update and no undo slot to set.
		s.mu.Unlock()
		return Result{
			Outcome: OutcomeCommitted,
			Tile:    Tile{VehicleID: vehicleID, Washed: true, OwnerID: entry.EmployeeID, EntryID: entry.ID},
		}, nil
	}
	tile.Washed = true
	tile.OwnerID = entry.EmployeeID
	tile.EntryID = entry.ID
	tile.Pending = false
	s.undo = &undoRecord{vehicleID: vehicleID, action: undoRemove, entryID: entry.ID}
	result := Result{Outcome: OutcomeCommitted, Tile: *tile}
	s.mu.Unlock()

	return result, nil
}

func (s *Store) commitRemove(ctx context.Context, log logger.Logger, vehicleID uuid.UUID, committed Tile) (Result, error) {
	removed, err := s.backend.SoftDeleteEntry(ctx, committed.EntryID)
	if err != nil {
		s.revert(vehicleID, committed)
		return Result{}, log.Err("remove failed, tile reverted", err, "vehicleID", vehicleID)
	}

	s.mu.Lock()
	tile, ok := s.tiles[vehicleID]
	if !ok {
		s.mu.Unlock()
		return Result{
			Outcome: OutcomeCommitted,
			Tile:    Tile{VehicleID: vehicleID},
		}, nil
	}
	tile.Washed = false
	tile.OwnerID = uuid.Nil
	tile.EntryID = uuid.Nil
	tile.Pending = false
	s.undo = &undoRecord{vehicleID: vehicleID, action: undoRestore, entryID: removed.ID}
	result := Result{Outcome: OutcomeCommitted, Tile: *tile}
	s.mu.Unlock()

	return result, nil
}

// escalate files the approval request without ever marking the tile
// pending; the entry stays active until a manager rules.
func (s *Store) escalate(ctx context.Context, entryID uuid.UUID, reason string, committed Tile) (Result, error) {
	log := s.log.Function("escalate")

	request, err := s.backend.SubmitApproval(ctx, entryID, reason)
	if err != nil {
		return Result{}, log.Err("failed to submit approval request", err, "entryID", entryID)
	}

	return Result{Outcome: OutcomeEscalated, Tile: committed, Request: request}, nil
}

// Undo replays the inverse of the last committed toggle and clears the
// slot. Valid until another toggle overwrites the slot, regardless of how
// much time has passed; the UI hides the control after its visibility
// window but eligibility is purely slot-based.
func (s *Store) Undo(ctx context.Context) (Result, error) {
	log := s.log.Function("Undo")

	s.mu.Lock()
	record := s.undo
	if record == nil {
		s.mu.Unlock()
		return Result{}, log.ErrorWithType(apperrors.ErrInvalidState, "nothing to undo")
	}
	s.undo = nil
	tile, ok := s.tiles[record.vehicleID]
	if !ok {
		s.mu.Unlock()
		return Result{}, log.ErrorWithType(apperrors.ErrNotFound, "unknown vehicle tile", "vehicleID", record.vehicleID)
	}
	committed := *tile
	tile.Pending = true
	s.mu.Unlock()

	switch record.action {
	case undoRemove:
		_, err := s.backend.SoftDeleteEntry(ctx, record.entryID)
		if err != nil {
			s.revert(record.vehicleID, committed)
			return Result{}, log.Err("undo remove failed, tile reverted", err, "entryID", record.entryID)
		}
		s.mu.Lock()
		tile, ok := s.tiles[record.vehicleID]
		if !ok {
			s.mu.Unlock()
			return Result{Outcome: OutcomeCommitted, Tile: Tile{VehicleID: record.vehicleID}}, nil
		}
		tile.Washed = false
		tile.OwnerID = uuid.Nil
		tile.EntryID = uuid.Nil
		tile.Pending = false
		result := Result{Outcome: OutcomeCommitted, Tile: *tile}
		s.mu.Unlock()
		return result, nil

	case undoRestore:
		restored, err := s.backend.RestoreEntry(ctx, record.entryID)
		if err != nil {
			s.revert(record.vehicleID, committed)
			return Result{}, log.Err("undo restore failed, tile reverted", err, "entryID", record.entryID)
		}
		s.mu.Lock()
		tile, ok := s.tiles[record.vehicleID]
		if !ok {
			s.mu.Unlock()
			return Result{
				Outcome: OutcomeCommitted,
				Tile:    Tile{VehicleID: record.vehicleID, Washed: true, OwnerID: restored.EmployeeID, EntryID: restored.ID},
			}, nil
		}
		tile.Washed = true
		tile.OwnerID = restored.EmployeeID
		tile.EntryID = restored.ID
		tile.Pending = false
		result := Result{Outcome: OutcomeCommitted, Tile: *tile}
		s.mu.Unlock()
		return result, nil
	}

	return Result{}, log.ErrorWithType(apperrors.ErrInvalidState, "unknown undo action", "action", record.action)
}

// revert restores a tile to its pre-mutation committed state after a
// backend failure.
func (s *Store) revert(vehicleID uuid.UUID, committed Tile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tile, ok := s.tiles[vehicleID]
	if !ok {
		return
	}
	*tile = committed
	tile.Pending = false
}

func committedWithoutPending(tile Tile) Tile {
	tile.Pending = false
	return tile
}
