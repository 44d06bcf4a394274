package service

import (
	"context"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/internal/pipeline/classifier"
	pipelinedomain "leadflow_backend/internal/pipeline/domain"

	"github.com/google/uuid"
)

// RecordAction logs an action against a lead and classifies its intent into
// a stage move. Classification runs against a fresh definition snapshot; an
// unrecognized intent records the action but leaves the stage alone.
func (s *Service) RecordAction(ctx context.Context, leadID uuid.UUID, req transport.RecordActionRequest) (transport.ActionResponse, error) {
	defs, err := s.stages.Definitions(ctx)
	if err != nil {
		return transport.ActionResponse{}, err
	}

	stage := classifier.Classify(req.NextAction, defs)

	action, err := s.repo.RecordAction(ctx, repository.RecordActionParams{
		LeadID:     leadID,
		NextAction: req.NextAction,
		Notes:      req.Notes,
		StageSet:   stage,
	})
	if err != nil {
		return transport.ActionResponse{}, mapRepoError(err)
	}

	if stage != pipelinedomain.StageUnchanged {
		s.log.Info("lead stage moved by action",
			"lead_id", leadID.String(),
			"next_action", req.NextAction,
			"stage", stage,
		)
	}

	return toActionResponse(action), nil
}

// ListActions returns a lead's action history, newest first.
func (s *Service) ListActions(ctx context.Context, leadID uuid.UUID) ([]transport.ActionResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return nil, mapRepoError(err)
	}

	actions, err := s.repo.ListActions(ctx, leadID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]transport.ActionResponse, 0, len(actions))
	for _, action := range actions {
		out = append(out, toActionResponse(action))
	}
	return out, nil
}

func toActionResponse(action repository.Action) transport.ActionResponse {
	return transport.ActionResponse{
		ID:         action.ID,
		LeadID:     action.LeadID,
		NextAction: action.NextAction,
		Notes:      action.Notes,
		StageSet:   action.StageSet,
		CreatedAt:  action.CreatedAt,
	}
}
