package service

import (
	"context"
	"errors"
	"fmt"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/phone"

	"github.com/google/uuid"
)

// Duplicate conflict resolutions.
const (
	ResolutionWarn         = "warn"
	ResolutionTransfer     = "transfer"
	ResolutionKeepOriginal = "keep_original"
)

const archiveReasonDuplicate = "duplicate of earlier lead"

// ResolveDuplicate applies one of the three duplicate resolutions to a lead
// flagged as a duplicate of an earlier original.
//
//   - warn: keep both records; append a system note naming the original.
//   - transfer: keep both records; move the duplicate to the original's
//     assignee and append the audit note in one write.
//   - keep_original: archive the duplicate. Retrying on an already-archived
//     duplicate is a no-op, not an error.
func (s *Service) ResolveDuplicate(ctx context.Context, leadID uuid.UUID, req transport.ResolveDuplicateRequest) (transport.ResolveDuplicateResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) && req.Resolution == ResolutionKeepOriginal {
			return transport.ResolveDuplicateResponse{Resolution: req.Resolution}, nil
		}
		return transport.ResolveDuplicateResponse{}, mapRepoError(err)
	}

	pool, err := s.repo.DedupPool(ctx)
	if err != nil {
		return transport.ResolveDuplicateResponse{}, apperr.Unavailable("failed to load leads for duplicate check", err)
	}

	original, found := s.matcher.FindOriginal(domain.Candidate{
		Phones: phone.SplitMulti(lead.Phone),
		Email:  lead.Email,
	}, pool, lead.ID)
	if !found {
		return transport.ResolveDuplicateResponse{}, apperr.Validation("lead has no duplicate to resolve")
	}

	note := fmt.Sprintf("[system] duplicate of %s (%s)", original.Name, original.ID)

	switch req.Resolution {
	case ResolutionWarn:
		if err := s.repo.AppendNote(ctx, lead.ID, note); err != nil {
			return transport.ResolveDuplicateResponse{}, mapRepoError(err)
		}

	case ResolutionTransfer:
		originalLead, err := s.repo.GetByID(ctx, original.ID)
		if err != nil {
			return transport.ResolveDuplicateResponse{}, mapRepoError(err)
		}
		transferNote := fmt.Sprintf("[system] transferred to %q, owner of duplicate original %s (%s)",
			originalLead.AssignedTo, original.Name, original.ID)
		if err := s.repo.TransferOwnership(ctx, lead.ID, originalLead.AssignedTo, transferNote); err != nil {
			return transport.ResolveDuplicateResponse{}, mapRepoError(err)
		}

	case ResolutionKeepOriginal:
		if err := s.Archive(ctx, lead.ID, archiveReasonDuplicate); err != nil {
			return transport.ResolveDuplicateResponse{}, err
		}
		return transport.ResolveDuplicateResponse{
			Resolution: req.Resolution,
			Lead:       toLeadResponse(lead),
		}, nil

	default:
		return transport.ResolveDuplicateResponse{}, apperr.Validation("unknown resolution: " + req.Resolution)
	}

	updated, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return transport.ResolveDuplicateResponse{}, mapRepoError(err)
	}
	return transport.ResolveDuplicateResponse{
		Resolution: req.Resolution,
		Lead:       toLeadResponse(updated),
	}, nil
}
