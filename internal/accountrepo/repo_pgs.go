// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/pkg/dbpkg"
	"github.com/doomscrollr/crowdbank/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (owner, balance, bio)
VALUES
    ($1, $2, $3)
RETURNING id, owner, balance, bio, created_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, owner, balance, bio string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, owner, balance, bio)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&a.Bio,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_owner_fkey":
				return a, domain.ErrOwnerNotFound
			case "accounts_owner_key":
				return a, domain.ErrAccountAlreadyExists
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING id, owner, balance, bio, created_at
`

// AddBalance changes the account's balance and returns the changed account.
//
// The UPDATE takes a row lock for the rest of the enclosing transaction, so
// concurrent transfers touching the same account serialize here. A balance
// driven below zero trips the accounts_balance_check constraint.
func (r *RepoPGS) AddBalance(ctx context.Context, amount string, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, id)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&a.Bio,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}

			switch string(pqErr.Code) {
			case "40001", "40P01", "55P03":
				return a, domain.ErrConcurrencyConflict
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, owner, balance, bio, created_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&a.Bio,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByOwnerQuery = `
SELECT
	id, owner, balance, bio, created_at
FROM accounts
WHERE owner = $1
`

// GetByOwner returns the account owned by the given user.
func (r *RepoPGS) GetByOwner(ctx context.Context, owner string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByOwnerQuery, owner)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&a.Bio,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const updateBioQuery = `
UPDATE accounts
SET bio = $1
WHERE owner = $2
RETURNING id, owner, balance, bio, created_at
`

// UpdateBio changes the bio of the owner's account and returns the
// changed account.
func (r *RepoPGS) UpdateBio(ctx context.Context, owner, bio string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateBioQuery, bio, owner)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&a.Bio,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const insertFollowQuery = `
INSERT INTO
    follows (follower_id, followee_id)
VALUES
    ($1, $2)
ON CONFLICT (follower_id, followee_id) DO NOTHING
`

const deleteFollowQuery = `
DELETE FROM follows
WHERE follower_id = $1 AND followee_id = $2
`

// ToggleFollow makes follower follow followee, or unfollow if already
// following. It reports whether the follower follows the followee afterwards.
func (r *RepoPGS) ToggleFollow(ctx context.Context, followerID, followeeID int32) (bool, error) {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, insertFollowQuery, followerID, followeeID)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "follows_check":
				return false, domain.ErrSelfFollow
			case "follows_follower_id_fkey", "follows_followee_id_fkey":
				return false, domain.ErrAccountNotFound
			}
		}

		return false, errorspkg.ErrInternal
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	if inserted > 0 {
		return true, nil
	}

	if _, err := r.db.ExecContext(ctx, deleteFollowQuery, followerID, followeeID); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return false, nil
}

const followCountsQuery = `
SELECT
	(SELECT count(*) FROM follows WHERE followee_id = $1),
	(SELECT count(*) FROM follows WHERE follower_id = $1)
`

// FollowCounts returns the follower and following counts for the account.
func (r *RepoPGS) FollowCounts(ctx context.Context, id int32) (followers, following int64, err error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, followCountsQuery, id)

	if err := row.Scan(&followers, &following); err != nil {
		l.Error().Err(err).Send()
		return 0, 0, errorspkg.ErrInternal
	}

	return followers, following, nil
}
