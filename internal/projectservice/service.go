// Package projectservice manages business logic layer of projects.
package projectservice

import (
	"context"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/pkg/moneypkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by project service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package projectservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateProjectParams) (domain.Project, error)
	Get(ctx context.Context, id int32) (domain.Project, error)
	List(ctx context.Context, arg domain.ListProjectsParams) ([]domain.Project, error)
}

// AccountGetter resolves the caller's account.
type AccountGetter interface {
	GetByOwner(ctx context.Context, owner string) (domain.Account, error)
}

// Service facilitates project service layer logic.
type Service struct {
	repo     Repo
	accounts AccountGetter
}

// New returns project service struct to manage project business logic.
func New(pr Repo, ag AccountGetter) *Service {
	return &Service{
		repo:     pr,
		accounts: ag,
	}
}

// Create creates and returns a project owned by the given user's account.
func (s *Service) Create(ctx context.Context, owner, title, description, fundingGoal string) (domain.Project, error) {
	l := zerolog.Ctx(ctx)

	if !moneypkg.IsValid(fundingGoal) {
		l.Info().Str("funding_goal", fundingGoal).Msg("invalid funding goal")
		return domain.Project{}, domain.ErrInvalidFundingGoal
	}

	account, err := s.accounts.GetByOwner(ctx, owner)
	if err != nil {
		return domain.Project{}, err
	}

	arg := domain.CreateProjectParams{
		OwnerID:     account.ID,
		Title:       title,
		Description: description,
		FundingGoal: fundingGoal,
	}

	return s.repo.Create(ctx, arg)
}

// Get returns the project for the given project ID.
func (s *Service) Get(ctx context.Context, id int32) (domain.Project, error) {
	return s.repo.Get(ctx, id)
}

// List returns projects newest first, optionally filtered by owner account.
func (s *Service) List(ctx context.Context, ownerID, pageSize, pageID int32) ([]domain.Project, error) {
	arg := domain.ListProjectsParams{
		OwnerID: ownerID,
		Limit:   pageSize,
		Offset:  (pageID - 1) * pageSize,
	}

	return s.repo.List(ctx, arg)
}
