package repositories

import (
	"errors"
	"strings"

	"fleetwash/internal/apperrors"
	"fleetwash/internal/database"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Repository struct {
	User     UserRepository
	Vehicle  VehicleRepository
	Entry    EntryRepository
	Approval ApprovalRepository
	Cutoff   CutoffRepository
	Audit    AuditRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:     NewUserRepository(db),
		Vehicle:  NewVehicleRepository(db),
		Entry:    NewEntryRepository(db),
		Approval: NewApprovalRepository(db),
		Cutoff:   NewCutoffRepository(db),
		Audit:    NewAuditRepository(db),
	}
}

// translateUniqueViolation maps a driver-level unique constraint failure to
// the Conflict sentinel. Postgres reports SQLSTATE 23505; the sqlite driver
// used in tests reports a constraint message.
func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrConflict
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apperrors.ErrConflict
	}

	msg := err.Error()
	if strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed") {
		return apperrors.ErrConflict
	}

	return err
}
