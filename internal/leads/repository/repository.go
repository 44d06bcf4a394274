package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID          uuid.UUID
	Name        string
	Email       string
	Phone       string
	Company     string
	Stage       string
	AssignedTo  string
	Notes       string
	CreatedAt   time.Time
	LastContact time.Time
	UpdatedAt   time.Time
}

const leadColumns = `id, name, email, phone, company, stage, assigned_to, notes, created_at, last_contact, updated_at`

type CreateLeadParams struct {
	Name       string
	Email      string
	Phone      string
	Company    string
	Stage      string
	AssignedTo string
	Notes      string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, company, stage, assigned_to, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+leadColumns+`
	`, params.Name, params.Email, params.Phone, params.Company, params.Stage,
		params.AssignedTo, params.Notes)

	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1
	`, id)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type UpdateLeadParams struct {
	Name       *string
	Email      *string
	Phone      *string
	Company    *string
	Stage      *string
	AssignedTo *string
	Notes      *string
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			company = COALESCE($5, company),
			stage = COALESCE($6, stage),
			assigned_to = COALESCE($7, assigned_to),
			notes = COALESCE($8, notes),
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, params.Name, params.Email, params.Phone, params.Company,
		params.Stage, params.AssignedTo, params.Notes)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type ListLeadsParams struct {
	Stage      string
	AssignedTo string
	Search     string
	Page       int
	PageSize   int
}

// List returns one page of leads plus the total match count.
func (r *Repository) List(ctx context.Context, params ListLeadsParams) ([]Lead, int, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if params.Stage != "" {
		addArg("stage = $%d", params.Stage)
	}
	if params.AssignedTo != "" {
		addArg("assigned_to = $%d", params.AssignedTo)
	}
	if params.Search != "" {
		addArg("(name ILIKE $%[1]d OR email ILIKE $%[1]d OR phone ILIKE $%[1]d OR company ILIKE $%[1]d)",
			"%"+params.Search+"%")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.PageSize
	args = append(args, params.PageSize, offset)
	query := fmt.Sprintf(`
		SELECT `+leadColumns+` FROM leads %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListAll returns the full active pool ordered by creation time, oldest
// first. Used by the duplicate scan and the spreadsheet export.
func (r *Repository) ListAll(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// DedupPool returns the matcher view of the active pool.
func (r *Repository) DedupPool(ctx context.Context) ([]domain.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, email, created_at FROM leads ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pool := make([]domain.Contact, 0)
	for rows.Next() {
		var contact domain.Contact
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.Phone, &contact.Email, &contact.CreatedAt); err != nil {
			return nil, err
		}
		pool = append(pool, contact)
	}

	return pool, rows.Err()
}

// AssignLeads sets the assignee and resets the stage for the whole batch in
// a single statement, so a reader never observes a half-applied batch.
// Unknown ids are tolerated no-ops; the returned count reflects them.
func (r *Repository) AssignLeads(ctx context.Context, ids []uuid.UUID, assignee, stage string) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET assigned_to = $2, stage = $3, updated_at = now()
		WHERE id = ANY($1)
	`, ids, assignee, stage)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ReleaseColdLeads returns up to limit assigned leads whose last contact is
// older than the cutoff back to the unassigned pool.
func (r *Repository) ReleaseColdLeads(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET assigned_to = '', updated_at = now()
		WHERE id IN (
			SELECT id FROM leads
			WHERE assigned_to <> '' AND last_contact < $1
			ORDER BY last_contact ASC
			LIMIT $2
		)
	`, cutoff, limit)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company,
		&lead.Stage, &lead.AssignedTo, &lead.Notes,
		&lead.CreatedAt, &lead.LastContact, &lead.UpdatedAt,
	)
	return lead, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
