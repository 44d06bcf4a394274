// Package assignment orchestrates rotation-gated batch assignment of leads.
package assignment

import (
	"context"
	"strings"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/transport"
	pipelinedomain "leadflow_backend/internal/pipeline/domain"
	rotationdomain "leadflow_backend/internal/rotation/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Assigner is the batch write the orchestrator needs from the leads store.
type Assigner interface {
	AssignLeads(ctx context.Context, ids []uuid.UUID, assignee, stage string) (int, error)
}

// SettingsProvider yields a fresh rotation policy snapshot per attempt.
type SettingsProvider interface {
	Settings(ctx context.Context) (rotationdomain.Settings, error)
}

// DelayedEnqueuer schedules an assignment batch to run at a later instant.
// Implemented by the scheduler client; nil when no task queue is configured.
type DelayedEnqueuer interface {
	EnqueueDelayedAssignment(ctx context.Context, ids []uuid.UUID, assignee string, at time.Time) error
}

// Service gates batch assignments behind the rotation policy.
type Service struct {
	repo     Assigner
	settings SettingsProvider
	enqueuer DelayedEnqueuer
	bus      events.Bus
	log      *logger.Logger

	now func() time.Time
}

// New creates the assignment service. enqueuer may be nil.
func New(repo Assigner, settings SettingsProvider, enqueuer DelayedEnqueuer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: settings,
		enqueuer: enqueuer,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// Assign applies the batch to the given assignee, or refuses it whole. The
// guard runs against a fresh settings snapshot; when it blocks, no lead in
// the batch is touched. With delayed rotation in effect a caller may opt in
// to queueing the batch for the next window opening instead.
func (s *Service) Assign(ctx context.Context, req transport.AssignLeadsRequest) (transport.AssignLeadsResponse, error) {
	if strings.TrimSpace(req.Assignee) == "" {
		return transport.AssignLeadsResponse{}, apperr.Validation("assignee is required")
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return transport.AssignLeadsResponse{}, err
	}

	decision := rotationdomain.CanAssignNow(settings, s.now())
	if !decision.OK {
		if s.canQueue(req, settings, decision) {
			runAt := rotationdomain.NextWindowOpen(settings, s.now())
			if err := s.enqueuer.EnqueueDelayedAssignment(ctx, req.LeadIDs, req.Assignee, runAt); err != nil {
				return transport.AssignLeadsResponse{}, apperr.Unavailable("failed to queue delayed assignment", err)
			}
			s.log.Info("assignment queued for next window",
				"assignee", req.Assignee,
				"leads", len(req.LeadIDs),
				"run_at", runAt,
			)
			return transport.AssignLeadsResponse{Queued: true, Reason: decision.Reason}, nil
		}
		return transport.AssignLeadsResponse{Reason: decision.Reason}, nil
	}

	count, err := s.repo.AssignLeads(ctx, req.LeadIDs, req.Assignee, pipelinedomain.StagePending)
	if err != nil {
		return transport.AssignLeadsResponse{}, apperr.Unavailable("failed to assign leads", err)
	}

	s.bus.Publish(ctx, events.LeadsAssigned{
		BaseEvent: events.NewBaseEvent(),
		LeadIDs:   req.LeadIDs,
		Assignee:  req.Assignee,
		Count:     count,
	})

	return transport.AssignLeadsResponse{Assigned: count}, nil
}

// canQueue allows queueing only for the delayed-rotation refusal: a disabled
// rotation is a hard stop, never a deferral.
func (s *Service) canQueue(req transport.AssignLeadsRequest, settings rotationdomain.Settings, decision rotationdomain.Decision) bool {
	return req.QueueIfBlocked &&
		s.enqueuer != nil &&
		settings.DelayAssignRotation &&
		decision.Reason == rotationdomain.ReasonDelayed
}
