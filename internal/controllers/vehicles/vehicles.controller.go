package vehiclesController

import (
	"context"

	"fleetwash/config"
	"fleetwash/internal/apperrors"
	"fleetwash/internal/database"
	. "fleetwash/internal/models"
	"fleetwash/internal/repositories"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
)

type VehiclesControllerInterface interface {
	ListByLocation(ctx context.Context, user *User, locationID uuid.UUID) ([]*Vehicle, error)
	GetByNumber(ctx context.Context, user *User, number string) (*Vehicle, error)
}

type VehiclesController struct {
	vehicleRepo repositories.VehicleRepository
	db          database.DB
	Config      config.Config
}

func New(
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) VehiclesControllerInterface {
	return &VehiclesController{
		vehicleRepo: repos.Vehicle,
		db:          db,
		Config:      config,
	}
}

func (c *VehiclesController) ListByLocation(
	ctx context.Context,
	user *User,
	locationID uuid.UUID,
) ([]*Vehicle, error) {
	log := logger.NewWithContext(ctx, "vehiclesController").Function("ListByLocation")

	if locationID == uuid.Nil {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "locationId is required")
	}

	return c.vehicleRepo.GetByLocation(ctx, c.db.SQL, locationID)
}

func (c *VehiclesController) GetByNumber(
	ctx context.Context,
	user *User,
	number string,
) (*Vehicle, error) {
	log := logger.NewWithContext(ctx, "vehiclesController").Function("GetByNumber")

	if number == "" {
		return nil, log.ErrorWithType(apperrors.ErrValidation, "number is required")
	}

	return c.vehicleRepo.GetByNumber(ctx, c.db.SQL, number)
}
