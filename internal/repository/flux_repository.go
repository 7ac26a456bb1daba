package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fluxboard/internal/domain"
)

const fluxColumns = `id::text, created_at, updated_at, client_name, client_email, client_phone, address, city,
               post_code, type_flux, game_model, state, details, assignee_id::text, assignee_email, created_by::text`

// FluxQuery selects rows from the flux table.
type FluxQuery struct {
	OrderBy    string
	Ascending  bool
	TypeFlux   *domain.FluxType
	AssigneeID *string
	State      *string
}

// FluxRepository is the store surface the dashboard needs for flux.
type FluxRepository interface {
	List(ctx context.Context, query FluxQuery) ([]domain.Flux, error)
	GetByID(ctx context.Context, id string) (*domain.Flux, error)
	UpdateState(ctx context.Context, id, state string) error
	UpdateAssignee(ctx context.Context, id, assigneeID, assigneeEmail string) error
}

type fluxRepository struct {
	pool *pgxpool.Pool
}

// NewFluxRepository instantiates repository.
func NewFluxRepository(pool *pgxpool.Pool) FluxRepository {
	return &fluxRepository{pool: pool}
}

var fluxOrderColumns = map[string]struct{}{
	"created_at":  {},
	"updated_at":  {},
	"client_name": {},
	"city":        {},
	"type_flux":   {},
	"state":       {},
}

func (r *fluxRepository) List(ctx context.Context, query FluxQuery) ([]domain.Flux, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if query.TypeFlux != nil {
		args = append(args, string(*query.TypeFlux))
		clauses = append(clauses, fmt.Sprintf("type_flux=$%d", len(args)))
	}
	if query.AssigneeID != nil {
		args = append(args, *query.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if query.State != nil {
		args = append(args, *query.State)
		clauses = append(clauses, fmt.Sprintf("state=$%d", len(args)))
	}

	orderBy := query.OrderBy
	if _, ok := fluxOrderColumns[orderBy]; !ok {
		orderBy = "created_at"
	}
	direction := "DESC"
	if query.Ascending {
		direction = "ASC"
	}

	sql := fmt.Sprintf(`SELECT %s FROM flux WHERE %s ORDER BY %s %s`,
		fluxColumns, strings.Join(clauses, " AND "), orderBy, direction)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFlux(rows)
}

func (r *fluxRepository) GetByID(ctx context.Context, id string) (*domain.Flux, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	query := fmt.Sprintf(`SELECT %s FROM flux WHERE id=$1`, fluxColumns)
	f, err := scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *fluxRepository) UpdateState(ctx context.Context, id, state string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	const query = `UPDATE flux SET state=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, state, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateAssignee sets both assignee columns in one statement.
func (r *fluxRepository) UpdateAssignee(ctx context.Context, id, assigneeID, assigneeEmail string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	const query = `UPDATE flux SET assignee_id=$1, assignee_email=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, assigneeID, assigneeEmail, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanOne(row pgx.Row) (*domain.Flux, error) {
	var f domain.Flux
	var typeFlux string
	if err := row.Scan(
		&f.ID,
		&f.CreatedAt,
		&f.UpdatedAt,
		&f.ClientName,
		&f.ClientEmail,
		&f.ClientPhone,
		&f.Address,
		&f.City,
		&f.PostCode,
		&typeFlux,
		&f.GameModel,
		&f.State,
		&f.Details,
		&f.AssigneeID,
		&f.AssigneeEmail,
		&f.CreatedBy,
	); err != nil {
		return nil, err
	}
	f.TypeFlux = domain.FluxType(typeFlux)
	return &f, nil
}

func scanFlux(rows pgx.Rows) ([]domain.Flux, error) {
	result := []domain.Flux{}
	for rows.Next() {
		f, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	return result, rows.Err()
}
