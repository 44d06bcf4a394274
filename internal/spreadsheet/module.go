// Package spreadsheet provides bulk lead import and export over .xlsx files.
package spreadsheet

import (
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/spreadsheet/handler"
	"leadflow_backend/internal/spreadsheet/service"
	"leadflow_backend/platform/logger"
)

// Module is the spreadsheet module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// Leads bundles the two slices of the leads module the spreadsheet
// module operates through.
type Leads interface {
	service.LeadWriter
	service.LeadReader
}

// NewModule creates and initializes the spreadsheet module.
func NewModule(leads Leads, log *logger.Logger) *Module {
	svc := service.New(leads, leads, log)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "spreadsheet"
}

// RegisterRoutes mounts spreadsheet routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
