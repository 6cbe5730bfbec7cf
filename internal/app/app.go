package app

import (
	"context"
	"fleetwash/config"
	"fleetwash/internal/controllers"
	"fleetwash/internal/database"
	"fleetwash/internal/events"
	"fleetwash/internal/handlers/middleware"
	"fleetwash/internal/jobs"
	"fleetwash/internal/repositories"
	"fleetwash/internal/services"
	"fleetwash/internal/websockets"
	"fleetwash/pkg/logger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	Services    services.Service
	Repository  repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	repos := repositories.New(db)
	svcs := services.New(db, config, repos)
	ctrls := controllers.New(svcs, repos, eventBus, config, db)

	websocket, err := websockets.New(db, eventBus, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	mw := middleware.New(db, eventBus, config, repos)

	if config.SchedulerEnabled {
		reminderJob := jobs.NewStaleApprovalReminderJob(
			repos.Approval,
			eventBus,
			db,
			services.Daily,
		)
		if err := svcs.Scheduler.AddJob(reminderJob); err != nil {
			return &App{}, log.Err("failed to register stale approval reminder job", err)
		}

		if err := svcs.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
		log.Info("Scheduler started", "jobs", svcs.Scheduler.GetJobCount())
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  mw,
		Websocket:   websocket,
		EventBus:    eventBus,
		Services:    svcs,
		Repository:  repos,
		Controllers: ctrls,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.Audit,
		a.Controllers.Entries,
		a.Controllers.Approvals,
		a.Controllers.Cutoff,
		a.Controllers.Vehicles,
		a.Controllers.Admin,
		a.Repository.User,
		a.Repository.Vehicle,
		a.Repository.Entry,
		a.Repository.Approval,
		a.Repository.Cutoff,
		a.Repository.Audit,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil && a.Services.Scheduler.IsRunning() {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
