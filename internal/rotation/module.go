// Package rotation provides the rotation policy bounded context module.
package rotation

import (
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/rotation/handler"
	"leadflow_backend/internal/rotation/repository"
	"leadflow_backend/internal/rotation/service"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the rotation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the rotation module. enqueuer may be nil
// when no task queue is configured.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, enqueuer service.ReshuffleEnqueuer) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, enqueuer)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "rotation"
}

// Service returns the rotation service for use by other modules
// (the assignment orchestrator reads fresh settings through it).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts rotation routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/rotation"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
