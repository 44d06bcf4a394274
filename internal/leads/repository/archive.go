package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ArchivedLead struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Phone      string
	Company    string
	Stage      string
	AssignedTo string
	Notes      string
	Reason     string
	CreatedAt  time.Time
	DeletedAt  time.Time
}

// Archive moves the lead into deleted_leads and removes it from the active
// pool in one transaction. It reports false when the lead was already gone,
// which makes repeated archive calls idempotent.
func (r *Repository) Archive(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO deleted_leads (id, name, email, phone, company, stage, assigned_to, notes, reason, created_at)
		SELECT id, name, email, phone, company, stage, assigned_to, notes, $2, created_at
		FROM leads WHERE id = $1
	`, id, reason)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM lead_actions WHERE lead_id = $1`, id); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ListArchived returns archived leads, most recently deleted first.
func (r *Repository) ListArchived(ctx context.Context) ([]ArchivedLead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, company, stage, assigned_to, notes, reason, created_at, deleted_at
		FROM deleted_leads
		ORDER BY deleted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	archived := make([]ArchivedLead, 0)
	for rows.Next() {
		var lead ArchivedLead
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Phone,
			&lead.Company, &lead.Stage, &lead.AssignedTo, &lead.Notes,
			&lead.Reason, &lead.CreatedAt, &lead.DeletedAt); err != nil {
			return nil, err
		}
		archived = append(archived, lead)
	}
	return archived, rows.Err()
}
