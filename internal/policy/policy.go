// Package policy is the single authority for wash-entry mutation decisions.
// Ownership, same-day, and cutoff rules live here and nowhere else; ledger
// and UI callers consume decisions instead of re-implementing the checks.
//
// Decide is pure: it never touches the database, the clock, or the network,
// so every rule is unit-testable in isolation from the ledger.
package policy

import (
	"time"

	"fleetwash/internal/roles"
	"fleetwash/internal/utils"

	"github.com/google/uuid"
)

type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

type Outcome string

const (
	OutcomeAllowed          Outcome = "allowed"
	OutcomeDenied           Outcome = "denied"
	OutcomeRequiresApproval Outcome = "requires_approval"
)

// Denial reasons surfaced to the user verbatim.
const (
	ReasonOwnedByOther    = "owned by other"
	ReasonPeriodClosed    = "period closed"
	ReasonAlreadyRecorded = "already recorded"
	ReasonNothingRecorded = "nothing recorded"
)

type Decision struct {
	Outcome Outcome
	Reason  string
}

func Allowed() Decision {
	return Decision{Outcome: OutcomeAllowed}
}

func Denied(reason string) Decision {
	return Decision{Outcome: OutcomeDenied, Reason: reason}
}

func RequiresApproval() Decision {
	return Decision{Outcome: OutcomeRequiresApproval}
}

// Actor identifies who is attempting the mutation.
type Actor struct {
	ID   uuid.UUID
	Role roles.Role
}

// TileCommitted is the committed wash state of one vehicle tile as the
// caller last reconciled it from the ledger.
type TileCommitted struct {
	Washed  bool
	OwnerID uuid.UUID
	EntryID uuid.UUID
}

// DecideInput carries everything Decide needs; the caller supplies the
// current cutoff boundary and today's date so the function stays pure.
type DecideInput struct {
	Action Action
	Tile   TileCommitted
	Actor  Actor
	Date   time.Time
	Cutoff *time.Time
	Today  time.Time
}

// Decide classifies a requested toggle. Rules apply in strict precedence:
//
//  1. removing another employee's entry is denied outright
//  2. removing on any day but the entry's own day escalates to approval
//  3. dates behind the cutoff are closed for non-privileged roles
//  4. adding over an existing active entry is denied (the ledger's unique
//     index is the final backstop for races)
func Decide(in DecideInput) Decision {
	if in.Action == ActionRemove {
		if !in.Tile.Washed {
			return Denied(ReasonNothingRecorded)
		}
		if in.Tile.OwnerID != in.Actor.ID {
			return Denied(ReasonOwnedByOther)
		}
		if !utils.SameDay(in.Date, in.Today) {
			return RequiresApproval()
		}
	}

	if IsLocked(in.Date, in.Cutoff, in.Actor.Role) {
		return Denied(ReasonPeriodClosed)
	}

	if in.Action == ActionAdd && in.Tile.Washed {
		return Denied(ReasonAlreadyRecorded)
	}

	return Allowed()
}

// IsLocked reports whether the date sits behind the cutoff boundary for the
// given role. With no cutoff configured nothing is locked.
func IsLocked(date time.Time, cutoff *time.Time, role roles.Role) bool {
	if cutoff == nil {
		return false
	}
	if !utils.DateOnly(date).Before(utils.DateOnly(*cutoff)) {
		return false
	}
	return !roles.CanOverrideCutoff(role)
}
