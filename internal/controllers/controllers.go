package controllers

import (
	"fleetwash/config"
	"fleetwash/internal/database"
	"fleetwash/internal/events"
	"fleetwash/internal/repositories"
	"fleetwash/internal/services"

	adminController "fleetwash/internal/controllers/admin"
	approvalsController "fleetwash/internal/controllers/approvals"
	cutoffController "fleetwash/internal/controllers/cutoff"
	entriesController "fleetwash/internal/controllers/entries"
	vehiclesController "fleetwash/internal/controllers/vehicles"
)

type Controllers struct {
	Entries   entriesController.EntriesControllerInterface
	Approvals approvalsController.ApprovalsControllerInterface
	Cutoff    cutoffController.CutoffControllerInterface
	Vehicles  vehiclesController.VehiclesControllerInterface
	Admin     adminController.AdminControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Entries:   entriesController.New(repos, services, eventBus, config, db),
		Approvals: approvalsController.New(repos, services, eventBus, config, db),
		Cutoff:    cutoffController.New(repos, services, eventBus, config, db),
		Vehicles:  vehiclesController.New(repos, config, db),
		Admin:     adminController.New(repos, config, db),
	}
}
