// Package apperrors defines the error taxonomy shared by the wash ledger,
// mutation policy, and approval workflow. Every component classifies failures
// with these sentinels so handlers can map them to transport status codes
// with errors.Is instead of string matching.
package apperrors

import "errors"

var (
	// ErrValidation marks a request missing or malforming required input.
	ErrValidation = errors.New("validation error")

	// ErrConflict marks a duplicate active wash entry for a (vehicle, date).
	ErrConflict = errors.New("conflict")

	// ErrPermission marks an actor acting outside their ownership or role.
	ErrPermission = errors.New("permission denied")

	// ErrTemporalPolicy marks a mutation inside a closed accounting period.
	ErrTemporalPolicy = errors.New("period closed")

	// ErrNotFound marks a missing entry, request, vehicle, or manager.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks a transition a state machine does not permit,
	// such as resolving an already-resolved approval request.
	ErrInvalidState = errors.New("invalid state")

	// ErrNoManagerAssigned marks an escalation by an employee without a
	// manager to route the request to.
	ErrNoManagerAssigned = errors.New("no manager assigned")

	// ErrNetwork marks a transient transport failure from the backing
	// store. It is the only class eligible for user-initiated retry.
	ErrNetwork = errors.New("network error")
)
