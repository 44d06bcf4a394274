// Package repository persists operator-configurable stage definitions.
package repository

import (
	"context"
	"errors"

	"leadflow_backend/internal/pipeline/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("stage definition not found")

// ErrDuplicateName is returned when a stage name collides case-insensitively.
var ErrDuplicateName = errors.New("stage name already exists")

const uniqueViolationCode = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const stageColumns = `id, name, name_ar, type, color, icon, display_order, created_at, updated_at`

// List returns all stage definitions ordered for display.
func (r *Repository) List(ctx context.Context) ([]domain.StageDefinition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+stageColumns+`
		FROM stage_definitions
		ORDER BY display_order ASC, lower(name) ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := make([]domain.StageDefinition, 0)
	for rows.Next() {
		def, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, rows.Err()
}

// ExistsByName reports whether a stage with the given name exists,
// case-insensitively.
func (r *Repository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM stage_definitions WHERE lower(name) = lower($1))
	`, name).Scan(&exists)
	return exists, err
}

type CreateStageParams struct {
	Name         string
	NameAr       string
	Type         string
	Color        string
	Icon         string
	DisplayOrder int
}

func (r *Repository) Create(ctx context.Context, params CreateStageParams) (domain.StageDefinition, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO stage_definitions (name, name_ar, type, color, icon, display_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+stageColumns+`
	`, params.Name, params.NameAr, params.Type, params.Color, params.Icon, params.DisplayOrder)

	def, err := scanStage(row)
	if isUniqueViolation(err) {
		return domain.StageDefinition{}, ErrDuplicateName
	}
	return def, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params CreateStageParams) (domain.StageDefinition, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE stage_definitions
		SET name = $2, name_ar = $3, type = $4, color = $5, icon = $6,
			display_order = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+stageColumns+`
	`, id, params.Name, params.NameAr, params.Type, params.Color, params.Icon, params.DisplayOrder)

	def, err := scanStage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StageDefinition{}, ErrNotFound
	}
	if isUniqueViolation(err) {
		return domain.StageDefinition{}, ErrDuplicateName
	}
	return def, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stage_definitions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace swaps the whole definition list in one transaction, preserving the
// given order as display order.
func (r *Repository) Replace(ctx context.Context, params []CreateStageParams) ([]domain.StageDefinition, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM stage_definitions`); err != nil {
		return nil, err
	}

	defs := make([]domain.StageDefinition, 0, len(params))
	for order, p := range params {
		row := tx.QueryRow(ctx, `
			INSERT INTO stage_definitions (name, name_ar, type, color, icon, display_order)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+stageColumns+`
		`, p.Name, p.NameAr, p.Type, p.Color, p.Icon, order)

		def, err := scanStage(row)
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return defs, nil
}

func scanStage(row pgx.Row) (domain.StageDefinition, error) {
	var def domain.StageDefinition
	err := row.Scan(
		&def.ID, &def.Name, &def.NameAr, &def.Type, &def.Color, &def.Icon,
		&def.DisplayOrder, &def.CreatedAt, &def.UpdatedAt,
	)
	return def, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
