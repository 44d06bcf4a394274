// Package service exposes rotation settings reads/writes and the reshuffle trigger.
package service

import (
	"context"

	"leadflow_backend/internal/rotation/domain"
	"leadflow_backend/internal/rotation/transport"
	"leadflow_backend/platform/apperr"
)

// Repository is the settings persistence interface needed by the service.
type Repository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

// ReshuffleEnqueuer schedules a cold-lead reshuffle task. Implemented by the
// scheduler client; nil when no task queue is configured.
type ReshuffleEnqueuer interface {
	EnqueueColdLeadReshuffle(ctx context.Context) error
}

// Service handles rotation settings operations.
type Service struct {
	repo     Repository
	enqueuer ReshuffleEnqueuer
}

// New creates a new rotation service. enqueuer may be nil.
func New(repo Repository, enqueuer ReshuffleEnqueuer) *Service {
	return &Service{repo: repo, enqueuer: enqueuer}
}

// Settings returns a fresh policy snapshot. Callers must not cache it across
// assignment attempts.
func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return domain.Settings{}, apperr.Unavailable("failed to load rotation settings", err)
	}
	return settings, nil
}

// Get returns the current settings as a transport response.
func (s *Service) Get(ctx context.Context) (transport.SettingsResponse, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return transport.SettingsResponse{}, err
	}
	return toResponse(settings), nil
}

// Update replaces the settings singleton.
func (s *Service) Update(ctx context.Context, req transport.UpdateSettingsRequest) (transport.SettingsResponse, error) {
	updated, err := s.repo.Update(ctx, domain.Settings{
		AllowAssignRotation:      req.AllowAssignRotation,
		DelayAssignRotation:      req.DelayAssignRotation,
		WorkFrom:                 req.WorkFrom,
		WorkTo:                   req.WorkTo,
		ReshuffleColdLeads:       req.ReshuffleColdLeads,
		ReshuffleColdLeadsNumber: req.ReshuffleColdLeadsNumber,
	})
	if err != nil {
		return transport.SettingsResponse{}, apperr.Unavailable("failed to save rotation settings", err)
	}

	return toResponse(updated), nil
}

// RequestReshuffle enqueues a cold-lead reshuffle task when the feature is
// enabled and a task queue is available.
func (s *Service) RequestReshuffle(ctx context.Context) (transport.ReshuffleResponse, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return transport.ReshuffleResponse{}, err
	}

	if !settings.ReshuffleColdLeads {
		return transport.ReshuffleResponse{Enqueued: false, Reason: "cold lead reshuffle is disabled"}, nil
	}
	if s.enqueuer == nil {
		return transport.ReshuffleResponse{Enqueued: false, Reason: "task queue not configured"}, nil
	}

	if err := s.enqueuer.EnqueueColdLeadReshuffle(ctx); err != nil {
		return transport.ReshuffleResponse{}, apperr.Unavailable("failed to enqueue reshuffle task", err)
	}

	return transport.ReshuffleResponse{Enqueued: true}, nil
}

func toResponse(settings domain.Settings) transport.SettingsResponse {
	return transport.SettingsResponse{
		AllowAssignRotation:      settings.AllowAssignRotation,
		DelayAssignRotation:      settings.DelayAssignRotation,
		WorkFrom:                 settings.WorkFrom,
		WorkTo:                   settings.WorkTo,
		ReshuffleColdLeads:       settings.ReshuffleColdLeads,
		ReshuffleColdLeadsNumber: settings.ReshuffleColdLeadsNumber,
	}
}
