// Package service handles stage-definition management and stage validation.
package service

import (
	"context"
	"errors"

	"leadflow_backend/internal/pipeline/domain"
	"leadflow_backend/internal/pipeline/repository"
	"leadflow_backend/internal/pipeline/transport"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the service.
type Repository interface {
	List(ctx context.Context) ([]domain.StageDefinition, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, params repository.CreateStageParams) (domain.StageDefinition, error)
	Update(ctx context.Context, id uuid.UUID, params repository.CreateStageParams) (domain.StageDefinition, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Replace(ctx context.Context, params []repository.CreateStageParams) ([]domain.StageDefinition, error)
}

// Service handles stage-definition operations.
type Service struct {
	repo Repository
}

// New creates a new pipeline service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Definitions returns a fresh snapshot of the live stage-definition list.
// The classifier and stage validation must always go through this; snapshots
// are never cached across invocations.
func (s *Service) Definitions(ctx context.Context) ([]domain.StageDefinition, error) {
	defs, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Unavailable("failed to load stage definitions", err)
	}
	return defs, nil
}

// ValidateStage checks that a non-empty stage name is allowed: present in the
// live definition list or the Duplicate sentinel. An empty stage is allowed.
func (s *Service) ValidateStage(ctx context.Context, stage string) error {
	if stage == "" || stage == domain.StageDuplicate {
		return nil
	}

	exists, err := s.repo.ExistsByName(ctx, stage)
	if err != nil {
		return apperr.Unavailable("failed to validate stage", err)
	}
	if !exists {
		return apperr.Validation("unknown stage: " + stage)
	}
	return nil
}

// List returns all stage definitions.
func (s *Service) List(ctx context.Context) ([]transport.StageDefinitionResponse, error) {
	defs, err := s.Definitions(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(defs), nil
}

// Create adds a stage definition.
func (s *Service) Create(ctx context.Context, req transport.StageDefinitionRequest) (transport.StageDefinitionResponse, error) {
	def, err := s.repo.Create(ctx, toParams(req))
	if err != nil {
		return transport.StageDefinitionResponse{}, mapRepoError(err)
	}
	return toResponse(def), nil
}

// Update modifies a stage definition.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.StageDefinitionRequest) (transport.StageDefinitionResponse, error) {
	def, err := s.repo.Update(ctx, id, toParams(req))
	if err != nil {
		return transport.StageDefinitionResponse{}, mapRepoError(err)
	}
	return toResponse(def), nil
}

// Delete removes a stage definition.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// Replace swaps the whole definition list atomically.
func (s *Service) Replace(ctx context.Context, req transport.ReplaceStagesRequest) ([]transport.StageDefinitionResponse, error) {
	params := make([]repository.CreateStageParams, 0, len(req.Stages))
	for _, stage := range req.Stages {
		params = append(params, toParams(stage))
	}

	defs, err := s.repo.Replace(ctx, params)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return toResponses(defs), nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("stage definition not found")
	case errors.Is(err, repository.ErrDuplicateName):
		return apperr.Conflict("stage name already exists")
	default:
		return apperr.Unavailable("stage definition store failed", err)
	}
}

func toParams(req transport.StageDefinitionRequest) repository.CreateStageParams {
	return repository.CreateStageParams{
		Name:         req.Name,
		NameAr:       req.NameAr,
		Type:         req.Type,
		Color:        req.Color,
		Icon:         req.Icon,
		DisplayOrder: req.DisplayOrder,
	}
}

func toResponse(def domain.StageDefinition) transport.StageDefinitionResponse {
	return transport.StageDefinitionResponse{
		ID:           def.ID,
		Name:         def.Name,
		NameAr:       def.NameAr,
		Type:         def.Type,
		Color:        def.Color,
		Icon:         def.Icon,
		DisplayOrder: def.DisplayOrder,
		CreatedAt:    def.CreatedAt,
		UpdatedAt:    def.UpdatedAt,
	}
}

func toResponses(defs []domain.StageDefinition) []transport.StageDefinitionResponse {
	out := make([]transport.StageDefinitionResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, toResponse(def))
	}
	return out
}
