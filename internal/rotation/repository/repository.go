// Package repository persists the rotation settings singleton.
package repository

import (
	"context"

	"leadflow_backend/internal/rotation/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The settings table holds exactly one row, keyed by this id.
const singletonID = 1

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the current rotation settings, creating the singleton row with
// defaults on first access.
func (r *Repository) Get(ctx context.Context) (domain.Settings, error) {
	defaults := domain.DefaultSettings()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO rotation_settings (
			id, allow_assign_rotation, delay_assign_rotation, work_from, work_to,
			reshuffle_cold_leads, reshuffle_cold_leads_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, singletonID, defaults.AllowAssignRotation, defaults.DelayAssignRotation,
		defaults.WorkFrom, defaults.WorkTo,
		defaults.ReshuffleColdLeads, defaults.ReshuffleColdLeadsNumber)
	if err != nil {
		return domain.Settings{}, err
	}

	var settings domain.Settings
	err = r.pool.QueryRow(ctx, `
		SELECT allow_assign_rotation, delay_assign_rotation, work_from, work_to,
			reshuffle_cold_leads, reshuffle_cold_leads_number
		FROM rotation_settings WHERE id = $1
	`, singletonID).Scan(
		&settings.AllowAssignRotation, &settings.DelayAssignRotation,
		&settings.WorkFrom, &settings.WorkTo,
		&settings.ReshuffleColdLeads, &settings.ReshuffleColdLeadsNumber,
	)
	if err != nil {
		return domain.Settings{}, err
	}

	return settings, nil
}

// Update replaces the singleton settings row.
func (r *Repository) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rotation_settings (
			id, allow_assign_rotation, delay_assign_rotation, work_from, work_to,
			reshuffle_cold_leads, reshuffle_cold_leads_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			allow_assign_rotation = EXCLUDED.allow_assign_rotation,
			delay_assign_rotation = EXCLUDED.delay_assign_rotation,
			work_from = EXCLUDED.work_from,
			work_to = EXCLUDED.work_to,
			reshuffle_cold_leads = EXCLUDED.reshuffle_cold_leads,
			reshuffle_cold_leads_number = EXCLUDED.reshuffle_cold_leads_number,
			updated_at = now()
	`, singletonID, settings.AllowAssignRotation, settings.DelayAssignRotation,
		settings.WorkFrom, settings.WorkTo,
		settings.ReshuffleColdLeads, settings.ReshuffleColdLeadsNumber)
	if err != nil {
		return domain.Settings{}, err
	}

	return settings, nil
}
