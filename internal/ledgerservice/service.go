// Package ledgerservice manages business logic layer of the funding ledger.
package ledgerservice

import (
	"context"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/pkg/moneypkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
	Get(ctx context.Context, id int64) (domain.Transfer, error)
	List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error)
}

// AccountService provides the account lookups needed to validate transfers.
type AccountService interface {
	Get(ctx context.Context, id int32) (domain.Account, error)
}

// ProjectService provides the project lookups needed to validate transfers.
type ProjectService interface {
	Get(ctx context.Context, id int32) (domain.Project, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	repo           Repo
	accountService AccountService
	projectService ProjectService
}

// New returns ledger service struct to manage ledger business logic.
func New(r Repo, as AccountService, ps ProjectService) *Service {
	return &Service{
		repo:           r,
		accountService: as,
		projectService: ps,
	}
}

// validRequest checks the transfer preconditions in order, each
// short-circuiting on failure. All checks run before any mutation; the
// balance check here is a fast path that the transfer transaction repeats
// authoritatively under the sender's row lock.
func (s *Service) validRequest(ctx context.Context, fromUsername string, arg domain.CreateTransferParams) error {
	l := zerolog.Ctx(ctx)

	sender, err := s.accountService.Get(ctx, arg.SenderID)
	if err != nil {
		l.Info().Err(err).Send()
		return err
	}

	if sender.Owner != fromUsername {
		l.Warn().
			Str("owner", sender.Owner).
			Str("caller", fromUsername).
			Msg("transfer from foreign account rejected")

		return domain.ErrInvalidOwner
	}

	if _, err := s.accountService.Get(ctx, arg.ReceiverID); err != nil {
		l.Info().Err(err).Send()
		return err
	}

	if _, err := s.projectService.Get(ctx, arg.ProjectID); err != nil {
		l.Info().Err(err).Send()
		return err
	}

	amount, err := moneypkg.Parse(arg.Amount)
	if err != nil {
		l.Info().Err(err).Str("amount", arg.Amount).Send()
		return domain.ErrInvalidAmount
	}

	if arg.SenderID == arg.ReceiverID {
		return domain.ErrSelfTransfer
	}

	senderBalance, err := decimal.NewFromString(sender.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return err
	}

	if senderBalance.LessThan(amount) {
		return domain.ErrInsufficientBalance
	}

	return nil
}

// Transfer checks if the transfer request is valid and then executes the
// transfer as a single atomic unit against the backing store.
func (s *Service) Transfer(ctx context.Context, fromUsername string, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	if err := s.validRequest(ctx, fromUsername, arg); err != nil {
		return domain.TransferTxResult{}, err
	}

	result, err := s.repo.Transfer(ctx, arg)
	if err != nil {
		return result, err
	}

	return result, nil
}

// Get returns the transfer with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Transfer, error) {
	return s.repo.Get(ctx, id)
}

// List returns the transfers sent or received by the given account.
// Only the account's owner may list them.
func (s *Service) List(ctx context.Context, owner string, accountID, pageSize, pageID int32) ([]domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.accountService.Get(ctx, accountID)
	if err != nil {
		l.Info().Err(err).Send()
		return nil, err
	}

	if account.Owner != owner {
		l.Warn().
			Str("owner", account.Owner).
			Str("caller", owner).
			Msg("transfer listing for foreign account rejected")

		return nil, domain.ErrInvalidOwner
	}

	arg := domain.ListTransfersParams{
		AccountID: accountID,
		Limit:     pageSize,
		Offset:    (pageID - 1) * pageSize,
	}

	return s.repo.List(ctx, arg)
}
