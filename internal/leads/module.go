// Package leads provides the lead management bounded context module.
package leads

import (
	"context"

	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/assignment"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// Deps are the cross-module collaborators the leads module needs.
type Deps struct {
	Stages   service.StageProvider
	Rotation assignment.SettingsProvider
	// Enqueuer may be nil when no task queue is configured; delayed
	// assignment queueing is then unavailable.
	Enqueuer assignment.DelayedEnqueuer
	Region   string
	Bus      events.Bus
	Logger   *logger.Logger
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, deps Deps) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, deps.Stages, deps.Region, deps.Bus, deps.Logger)
	assigner := assignment.New(repo, deps.Rotation, deps.Enqueuer, deps.Bus, deps.Logger)

	subscribeLogging(deps.Bus, deps.Logger)

	return &Module{
		handler: handler.New(svc, assigner, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for use by other modules (the
// spreadsheet module imports rows through it).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

// subscribeLogging wires audit logging for lead lifecycle events.
func subscribeLogging(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if created, ok := e.(events.LeadCreated); ok {
			log.Info("lead created", "lead_id", created.LeadID.String(), "duplicate", created.Duplicate)
		}
		return nil
	}))

	bus.Subscribe(events.LeadsAssigned{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if assigned, ok := e.(events.LeadsAssigned); ok {
			log.Info("leads assigned", "assignee", assigned.Assignee, "count", assigned.Count)
		}
		return nil
	}))

	bus.Subscribe(events.LeadArchived{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if archived, ok := e.(events.LeadArchived); ok {
			log.Info("lead archived", "lead_id", archived.LeadID.String(), "reason", archived.Reason)
		}
		return nil
	}))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
