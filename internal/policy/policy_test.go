package policy

import (
	"testing"
	"time"

	"fleetwash/internal/roles"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var (
	today     = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	yesterday = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	owner = Actor{ID: uuid.New(), Role: roles.Employee}
	other = Actor{ID: uuid.New(), Role: roles.Employee}
)

func washedTile(ownerID uuid.UUID) TileCommitted {
	return TileCommitted{Washed: true, OwnerID: ownerID, EntryID: uuid.New()}
}

func TestDecide_Precedence(t *testing.T) {
	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		input    DecideInput
		expected Decision
	}{
		{
			name: "add on empty tile is allowed",
			input: DecideInput{
				Action: ActionAdd,
				Tile:   TileCommitted{},
				Actor:  owner,
				Date:   today,
				Today:  today,
			},
			expected: Allowed(),
		},
		{
			name: "add over existing entry is denied",
			input: DecideInput{
				Action: ActionAdd,
				Tile:   washedTile(other.ID),
				Actor:  owner,
				Date:   today,
				Today:  today,
			},
			expected: Denied(ReasonAlreadyRecorded),
		},
		{
			name: "same day remove by owner is allowed",
			input: DecideInput{
				Action: ActionRemove,
				Tile:   washedTile(owner.ID),
				Actor:  owner,
				Date:   today,
				Today:  today,
			},
			expected: Allowed(),
		},
		{
			name: "remove of another employee's entry is denied",
			input: DecideInput{
				Action: ActionRemove,
				Tile:   washedTile(owner.ID),
				Actor:  other,
				Date:   today,
				Today:  today,
			},
			expected: Denied(ReasonOwnedByOther),
		},
		{
			name: "retroactive remove by owner escalates",
			input: DecideInput{
				Action: ActionRemove,
				Tile:   washedTile(owner.ID),
				Actor:  owner,
				Date:   yesterday,
				Today:  today,
			},
			expected: RequiresApproval(),
		},
		{
			name: "ownership outranks escalation for retroactive remove",
			input: DecideInput{
				Action: ActionRemove,
				Tile:   washedTile(owner.ID),
				Actor:  other,
				Date:   yesterday,
				Today:  today,
			},
			expected: Denied(ReasonOwnedByOther),
		},
		{
			name: "remove on empty tile is denied",
			input: DecideInput{
				Action: ActionRemove,
				Tile:   TileCommitted{},
				Actor:  owner,
				Date:   today,
				Today:  today,
			},
			expected: Denied(ReasonNothingRecorded),
		},
		{
			name: "add behind cutoff denied for employee",
			input: DecideInput{
				Action: ActionAdd,
				Tile:   TileCommitted{},
				Actor:  Actor{ID: owner.ID, Role: roles.Employee},
				Date:   time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
				Cutoff: &cutoff,
				Today:  today,
			},
			expected: Denied(ReasonPeriodClosed),
		},
		{
			name: "add behind cutoff allowed for manager",
			input: DecideInput{
				Action: ActionAdd,
				Tile:   TileCommitted{},
				Actor:  Actor{ID: owner.ID, Role: roles.Manager},
				Date:   time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
				Cutoff: &cutoff,
				Today:  today,
			},
			expected: Allowed(),
		},
		{
			name: "escalation outranks cutoff for owner retroactive remove",
			input: DecideInput{
				Action: ActionRemove,
				Tile:   washedTile(owner.ID),
				Actor:  owner,
				Date:   time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
				Cutoff: &cutoff,
				Today:  today,
			},
			expected: RequiresApproval(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Decide(tc.input))
		})
	}
}

func TestIsLocked(t *testing.T) {
	cutoff := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		date     time.Time
		cutoff   *time.Time
		role     roles.Role
		expected bool
	}{
		{"no cutoff configured", yesterday, nil, roles.Employee, false},
		{"date before cutoff locks employee", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), &cutoff, roles.Employee, true},
		{"date on cutoff stays open", cutoff, &cutoff, roles.Employee, false},
		{"date after cutoff stays open", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), &cutoff, roles.Employee, false},
		{"manager overrides lock", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), &cutoff, roles.Manager, false},
		{"admin overrides lock", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), &cutoff, roles.Admin, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsLocked(tc.date, tc.cutoff, tc.role))
		})
	}
}

func TestIsLocked_TimeComponentIgnored(t *testing.T) {
	cutoff := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	lateOnCutoffDay := time.Date(2024, 3, 10, 23, 15, 0, 0, time.UTC)

	assert.False(t, IsLocked(lateOnCutoffDay, &cutoff, roles.Employee))
}
