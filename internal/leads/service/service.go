// Package service contains the lead management business logic: CRUD,
// duplicate detection, action recording and duplicate conflict resolution.
package service

import (
	"context"
	"errors"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	pipelinedomain "leadflow_backend/internal/pipeline/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	defaultPage     = 1
	defaultPageSize = 25
	maxPageSize     = 200
)

// Repository defines the data access interface needed by the service.
type Repository interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
	List(ctx context.Context, params repository.ListLeadsParams) ([]repository.Lead, int, error)
	ListAll(ctx context.Context) ([]repository.Lead, error)
	DedupPool(ctx context.Context) ([]domain.Contact, error)
	AppendNote(ctx context.Context, id uuid.UUID, note string) error
	TransferOwnership(ctx context.Context, id uuid.UUID, assignee, note string) error
	Archive(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	ListArchived(ctx context.Context) ([]repository.ArchivedLead, error)
	RecordAction(ctx context.Context, params repository.RecordActionParams) (repository.Action, error)
	ListActions(ctx context.Context, leadID uuid.UUID) ([]repository.Action, error)
}

// StageProvider is the slice of the pipeline module the leads service needs:
// live stage definitions for classification and stage-name validation.
type StageProvider interface {
	Definitions(ctx context.Context) ([]pipelinedomain.StageDefinition, error)
	ValidateStage(ctx context.Context, stage string) error
}

// Service handles lead operations.
type Service struct {
	repo    Repository
	stages  StageProvider
	matcher *domain.Matcher
	region  string
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new leads service.
func New(repo Repository, stages StageProvider, region string, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		stages:  stages,
		matcher: domain.NewMatcher(region),
		region:  region,
		bus:     bus,
		log:     log,
	}
}

// Create stores a new lead. The incoming record is always persisted; when it
// matches an existing lead its stage is forced to Duplicate and the original
// is reported back, but nothing is silently dropped.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.CreateLeadResponse, error) {
	if err := s.stages.ValidateStage(ctx, req.Stage); err != nil {
		return transport.CreateLeadResponse{}, err
	}

	pool, err := s.repo.DedupPool(ctx)
	if err != nil {
		return transport.CreateLeadResponse{}, apperr.Unavailable("failed to load leads for duplicate check", err)
	}

	phones := phone.SplitMulti(req.Phone)
	original, isDuplicate := s.matcher.FindOriginal(domain.Candidate{
		Phones: phones,
		Email:  req.Email,
	}, pool, uuid.Nil)

	stage := req.Stage
	if isDuplicate {
		stage = pipelinedomain.StageDuplicate
	}

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      s.storagePhone(phones),
		Company:    req.Company,
		Stage:      stage,
		AssignedTo: req.AssignedTo,
		Notes:      req.Notes,
	})
	if err != nil {
		return transport.CreateLeadResponse{}, apperr.Unavailable("failed to create lead", err)
	}

	resp := transport.CreateLeadResponse{Lead: toLeadResponse(lead)}
	if isDuplicate {
		resp.Duplicate = &transport.DuplicateInfo{
			OriginalID:   original.ID,
			OriginalName: original.Name,
			CreatedAt:    original.CreatedAt,
		}
		s.log.DuplicateDetected(lead.ID.String(), original.ID.String())
		s.bus.Publish(ctx, events.DuplicateDetected{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     lead.ID,
			OriginalID: original.ID,
		})
	}
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Duplicate: isDuplicate,
	})

	return resp, nil
}

// Get returns a single lead.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}
	return toLeadResponse(lead), nil
}

// Update applies a partial update. A changed phone is re-normalized with the
// same rule used on create, so stored numbers stay comparable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	if req.Stage != nil {
		if err := s.stages.ValidateStage(ctx, *req.Stage); err != nil {
			return transport.LeadResponse{}, err
		}
	}

	params := repository.UpdateLeadParams{
		Name:       req.Name,
		Email:      req.Email,
		Company:    req.Company,
		Stage:      req.Stage,
		AssignedTo: req.AssignedTo,
		Notes:      req.Notes,
	}
	if req.Phone != nil {
		normalized := s.storagePhone(phone.SplitMulti(*req.Phone))
		params.Phone = &normalized
	}

	lead, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}
	return toLeadResponse(lead), nil
}

// List returns a filtered page of leads.
func (s *Service) List(ctx context.Context, query transport.ListLeadsQuery) (transport.LeadListResponse, error) {
	page := query.Page
	if page < 1 {
		page = defaultPage
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	leads, total, err := s.repo.List(ctx, repository.ListLeadsParams{
		Stage:      query.Stage,
		AssignedTo: query.AssignedTo,
		Search:     query.Search,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return transport.LeadListResponse{}, apperr.Unavailable("failed to list leads", err)
	}

	return transport.LeadListResponse{
		Leads:    toLeadResponses(leads),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Archive moves a lead to the deleted archive. Archiving an already-archived
// lead is a no-op, not an error.
func (s *Service) Archive(ctx context.Context, id uuid.UUID, reason string) error {
	moved, err := s.repo.Archive(ctx, id, reason)
	if err != nil {
		return apperr.Unavailable("failed to archive lead", err)
	}
	if moved {
		s.bus.Publish(ctx, events.LeadArchived{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    id,
			Reason:    reason,
		})
	}
	return nil
}

// ListArchived returns the deleted-leads archive.
func (s *Service) ListArchived(ctx context.Context) ([]transport.ArchivedLeadResponse, error) {
	archived, err := s.repo.ListArchived(ctx)
	if err != nil {
		return nil, apperr.Unavailable("failed to list archived leads", err)
	}

	out := make([]transport.ArchivedLeadResponse, 0, len(archived))
	for _, lead := range archived {
		out = append(out, transport.ArchivedLeadResponse{
			ID:         lead.ID,
			Name:       lead.Name,
			Email:      lead.Email,
			Phone:      lead.Phone,
			Company:    lead.Company,
			Stage:      lead.Stage,
			AssignedTo: lead.AssignedTo,
			Reason:     lead.Reason,
			CreatedAt:  lead.CreatedAt,
			DeletedAt:  lead.DeletedAt,
		})
	}
	return out, nil
}

// ExportAll returns every active lead, oldest first, for spreadsheet export.
func (s *Service) ExportAll(ctx context.Context) ([]transport.LeadResponse, error) {
	leads, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Unavailable("failed to load leads for export", err)
	}
	return toLeadResponses(leads), nil
}

// CheckDuplicate runs the matcher for an arbitrary phone/email pair without
// persisting anything.
func (s *Service) CheckDuplicate(ctx context.Context, req transport.CheckDuplicateRequest) (transport.CheckDuplicateResponse, error) {
	pool, err := s.repo.DedupPool(ctx)
	if err != nil {
		return transport.CheckDuplicateResponse{}, apperr.Unavailable("failed to load leads for duplicate check", err)
	}

	original, found := s.matcher.FindOriginal(domain.Candidate{
		Phones: phone.SplitMulti(req.Phone),
		Email:  req.Email,
	}, pool, req.ExcludeID)

	resp := transport.CheckDuplicateResponse{IsDuplicate: found}
	if found {
		resp.Original = &transport.DuplicateInfo{
			OriginalID:   original.ID,
			OriginalName: original.Name,
			CreatedAt:    original.CreatedAt,
		}
	}
	return resp, nil
}

// ListDuplicates scans the whole pool and returns every original/duplicate
// pair. Each duplicate appears once, paired with its earliest-created
// original.
func (s *Service) ListDuplicates(ctx context.Context) ([]transport.DuplicatePairResponse, error) {
	leads, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Unavailable("failed to load leads for duplicate scan", err)
	}

	pool := make([]domain.Contact, 0, len(leads))
	byID := make(map[uuid.UUID]repository.Lead, len(leads))
	for _, lead := range leads {
		pool = append(pool, domain.Contact{
			ID:        lead.ID,
			Name:      lead.Name,
			Phone:     lead.Phone,
			Email:     lead.Email,
			CreatedAt: lead.CreatedAt,
		})
		byID[lead.ID] = lead
	}

	pairs := make([]transport.DuplicatePairResponse, 0)
	for _, contact := range pool {
		original, found := s.matcher.FindOriginal(domain.CandidateFromContact(contact), pool, contact.ID)
		if !found {
			continue
		}
		// Only report the pair from the later-created side, so every
		// duplicate shows up exactly once against its original. Equal
		// timestamps tie-break on ID so the pair still surfaces.
		if original.CreatedAt.After(contact.CreatedAt) {
			continue
		}
		if original.CreatedAt.Equal(contact.CreatedAt) && contact.ID.String() < original.ID.String() {
			continue
		}
		pairs = append(pairs, transport.DuplicatePairResponse{
			Original:  toLeadResponse(byID[original.ID]),
			Duplicate: toLeadResponse(byID[contact.ID]),
		})
	}
	return pairs, nil
}

// storagePhone normalizes each number for storage and rejoins multi-number
// fields with the canonical separator.
func (s *Service) storagePhone(phones []string) string {
	normalized := make([]string, 0, len(phones))
	for _, raw := range phones {
		normalized = append(normalized, phone.NormalizeE164(raw, s.region))
	}
	return phone.JoinMulti(normalized)
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return apperr.Unavailable("lead store failed", err)
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:          lead.ID,
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Company:     lead.Company,
		Stage:       lead.Stage,
		AssignedTo:  lead.AssignedTo,
		Notes:       lead.Notes,
		CreatedAt:   lead.CreatedAt,
		LastContact: lead.LastContact,
		UpdatedAt:   lead.UpdatedAt,
	}
}

func toLeadResponses(leads []repository.Lead) []transport.LeadResponse {
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, toLeadResponse(lead))
	}
	return out
}
