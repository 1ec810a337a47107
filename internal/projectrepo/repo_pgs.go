// Package projectrepo manages repository layer of projects.
package projectrepo

import (
	"context"
	"database/sql"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/pkg/dbpkg"
	"github.com/doomscrollr/crowdbank/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates project repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns project RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    projects (owner_id, title, description, funding_goal)
VALUES
    ($1, $2, $3, $4)
RETURNING id, owner_id, title, description, funding_goal, current_funding, created_at
`

// Create creates the project and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateProjectParams) (domain.Project, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.OwnerID,
		arg.Title,
		arg.Description,
		arg.FundingGoal,
	)

	var p domain.Project

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.FundingGoal,
		&p.CurrentFunding,
		&p.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "projects_owner_id_fkey":
				return p, domain.ErrAccountNotFound
			case "projects_funding_goal_check":
				return p, domain.ErrInvalidFundingGoal
			}
		}

		return p, errorspkg.ErrInternal
	}

	return p, nil
}

const getQuery = `
SELECT
	id, owner_id, title, description, funding_goal, current_funding, created_at
FROM projects
WHERE id = $1
`

// Get returns the project with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int32) (domain.Project, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var p domain.Project

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.FundingGoal,
		&p.CurrentFunding,
		&p.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return p, domain.ErrProjectNotFound
		}

		return p, errorspkg.ErrInternal
	}

	return p, nil
}

const listQuery = `
SELECT
	id, owner_id, title, description, funding_goal, current_funding, created_at
FROM projects
WHERE owner_id = $1 OR $1 = 0
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

// List returns projects newest first, optionally filtered by owner.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListProjectsParams) ([]domain.Project, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, arg.OwnerID, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Project{}

	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.Title,
			&p.Description,
			&p.FundingGoal,
			&p.CurrentFunding,
			&p.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, p)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const addFundingQuery = `
UPDATE projects
SET current_funding = current_funding + $1
WHERE id = $2
RETURNING id, owner_id, title, description, funding_goal, current_funding, created_at
`

// AddFunding adds amount to the project's funding total and returns the
// changed project. It runs inside the ledger transfer transaction only;
// the UPDATE holds the project row lock until that transaction ends.
func (r *RepoPGS) AddFunding(ctx context.Context, amount string, id int32) (domain.Project, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addFundingQuery, amount, id)

	var p domain.Project

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.FundingGoal,
		&p.CurrentFunding,
		&p.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return p, domain.ErrProjectNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			switch string(pqErr.Code) {
			case "40001", "40P01", "55P03":
				return p, domain.ErrConcurrencyConflict
			}
		}

		return p, errorspkg.ErrInternal
	}

	return p, nil
}
