// Package ledgerrepo manages repository layer of the funding ledger.
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doomscrollr/crowdbank/internal/accountrepo"
	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/internal/projectrepo"
	"github.com/doomscrollr/crowdbank/pkg/dbpkg"
	"github.com/doomscrollr/crowdbank/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Postgres error codes that mean the transaction lost a lock or
// serialization conflict and should be retried by the caller.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// Bound how long the balance updates may wait on a contended row lock.
// A timed out wait fails with pg code 55P03 and rolls the transfer back.
const lockTimeoutQuery = `SET LOCAL lock_timeout = '5s'`

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns ledger RepoPGS scoped to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns ledger RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    transfers (sender_id, receiver_id, project_id, amount)
VALUES
    ($1, $2, $3, $4)
RETURNING id, sender_id, receiver_id, project_id, amount, created_at
`

// Create inserts the immutable transfer record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.SenderID,
		arg.ReceiverID,
		arg.ProjectID,
		arg.Amount,
	)

	var t domain.Transfer
	err := row.Scan(
		&t.ID,
		&t.SenderID,
		&t.ReceiverID,
		&t.ProjectID,
		&t.Amount,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transfers_sender_id_fkey", "transfers_receiver_id_fkey":
				return t, domain.ErrAccountNotFound
			case "transfers_project_id_fkey":
				return t, domain.ErrProjectNotFound
			case "transfers_amount_check":
				return t, domain.ErrInvalidAmount
			}

			switch string(pqErr.Code) {
			case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
				return t, domain.ErrConcurrencyConflict
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, sender_id, receiver_id, project_id, amount, created_at
FROM transfers
WHERE id = $1
`

// Get returns the transfer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var t domain.Transfer

	err := row.Scan(
		&t.ID,
		&t.SenderID,
		&t.ReceiverID,
		&t.ProjectID,
		&t.Amount,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransferNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listQuery = `
SELECT
	id, sender_id, receiver_id, project_id, amount, created_at
FROM transfers
WHERE
    sender_id = $1 OR receiver_id = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns the transfers sent or received by the given account.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery,
		arg.AccountID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transfer{}

	for rows.Next() {
		var t domain.Transfer
		if err := rows.Scan(
			&t.ID,
			&t.SenderID,
			&t.ReceiverID,
			&t.ProjectID,
			&t.Amount,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

// Transfer moves money from the sender to the receiver and credits the
// project's funding total.
//
// It updates both account balances, adds the amount to the project and
// inserts the transfer record within a single database transaction. The
// balance UPDATEs take row locks, executed in consistent account id order
// to avoid deadlocks, and the accounts_balance_check constraint rejects a
// debit past zero under the lock. Either all four writes commit or none do.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	if _, err := tx.ExecContext(ctx, lockTimeoutQuery); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	accountRepo := accountrepo.NewRepoPGS(tx)
	projectRepo := projectrepo.NewRepoPGS(tx)
	ledgerRepo := NewTxRepoPGS(tx)

	var sender, receiver domain.Account
	// To avoid deadlocks execute balance updates in consistent id order
	if arg.SenderID < arg.ReceiverID {
		argAddBalance := addBalanceParams{
			account1ID: arg.SenderID,
			amount1:    "-" + arg.Amount,
			account2ID: arg.ReceiverID,
			amount2:    arg.Amount,
		}

		sender, receiver, err = addBalances(ctx, accountRepo, argAddBalance)
	} else {
		argAddBalance := addBalanceParams{
			account1ID: arg.ReceiverID,
			amount1:    arg.Amount,
			account2ID: arg.SenderID,
			amount2:    "-" + arg.Amount,
		}

		receiver, sender, err = addBalances(ctx, accountRepo, argAddBalance)
	}

	if err != nil {
		l.Warn().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	result.Sender, result.Receiver = sender, receiver

	result.Project, err = projectRepo.AddFunding(ctx, arg.Amount, arg.ProjectID)
	if err != nil {
		l.Warn().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	result.Transfer, err = ledgerRepo.Create(ctx, arg)
	if err != nil {
		l.Warn().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.TransferTxResult{}, commitErr(err)
	}

	return result, nil
}

type addBalanceParams struct {
	account1ID int32
	amount1    string
	account2ID int32
	amount2    string
}

func addBalances(ctx context.Context, r *accountrepo.RepoPGS, arg addBalanceParams) (domain.Account, domain.Account, error) {
	account1, err := r.AddBalance(ctx, arg.amount1, arg.account1ID)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	account2, err := r.AddBalance(ctx, arg.amount2, arg.account2ID)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	return account1, account2, nil
}

// commitErr maps a retryable commit failure to ErrConcurrencyConflict and
// every other failure to ErrInternal.
func commitErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return domain.ErrConcurrencyConflict
		}
	}

	return errorspkg.ErrInternal
}
