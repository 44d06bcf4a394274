package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Action struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	NextAction string
	Notes      string
	StageSet   string
	CreatedAt  time.Time
}

type RecordActionParams struct {
	LeadID     uuid.UUID
	NextAction string
	Notes      string
	// StageSet is the stage the lead moves to as part of this action.
	// Empty means the stage is left untouched.
	StageSet string
}

// RecordAction inserts the action row and applies its side effects to the
// lead (stage move, appended notes, refreshed last_contact) in one
// transaction, so the history and the lead never disagree.
func (r *Repository) RecordAction(ctx context.Context, params RecordActionParams) (Action, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Action{}, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1)`, params.LeadID).Scan(&exists); err != nil {
		return Action{}, err
	}
	if !exists {
		return Action{}, ErrNotFound
	}

	var action Action
	err = tx.QueryRow(ctx, `
		INSERT INTO lead_actions (lead_id, next_action, notes, stage_set)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, next_action, notes, stage_set, created_at
	`, params.LeadID, params.NextAction, params.Notes, params.StageSet).Scan(
		&action.ID, &action.LeadID, &action.NextAction, &action.Notes,
		&action.StageSet, &action.CreatedAt,
	)
	if err != nil {
		return Action{}, err
	}

	if params.StageSet != "" {
		if _, err := tx.Exec(ctx, `
			UPDATE leads SET stage = $2, updated_at = now() WHERE id = $1
		`, params.LeadID, params.StageSet); err != nil {
			return Action{}, err
		}
	}
	if params.Notes != "" {
		if _, err := tx.Exec(ctx, `
			UPDATE leads
			SET notes = CASE WHEN notes = '' THEN $2 ELSE notes || E'\n' || $2 END,
			    updated_at = now()
			WHERE id = $1
		`, params.LeadID, params.Notes); err != nil {
			return Action{}, err
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE leads SET last_contact = now(), updated_at = now() WHERE id = $1
	`, params.LeadID); err != nil {
		return Action{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Action{}, err
	}
	return action, nil
}

// ListActions returns the action history of a lead, newest first.
func (r *Repository) ListActions(ctx context.Context, leadID uuid.UUID) ([]Action, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, next_action, notes, stage_set, created_at
		FROM lead_actions
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make([]Action, 0)
	for rows.Next() {
		var action Action
		if err := rows.Scan(&action.ID, &action.LeadID, &action.NextAction,
			&action.Notes, &action.StageSet, &action.CreatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// AppendNote adds a line to the lead's notes without touching anything else.
func (r *Repository) AppendNote(ctx context.Context, id uuid.UUID, note string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET notes = CASE WHEN notes = '' THEN $2 ELSE notes || E'\n' || $2 END,
		    updated_at = now()
		WHERE id = $1
	`, id, note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TransferOwnership moves the lead to a new assignee and appends the audit
// note in a single statement.
func (r *Repository) TransferOwnership(ctx context.Context, id uuid.UUID, assignee, note string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET assigned_to = $2,
		    notes = CASE WHEN notes = '' THEN $3 ELSE notes || E'\n' || $3 END,
		    updated_at = now()
		WHERE id = $1
	`, id, assignee, note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
