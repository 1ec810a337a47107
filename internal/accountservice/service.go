// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/doomscrollr/crowdbank/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Get(ctx context.Context, id int32) (domain.Account, error)
	GetByOwner(ctx context.Context, owner string) (domain.Account, error)
	UpdateBio(ctx context.Context, owner, bio string) (domain.Account, error)
	ToggleFollow(ctx context.Context, followerID, followeeID int32) (bool, error)
	FollowCounts(ctx context.Context, id int32) (followers, following int64, err error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account business logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Get returns the account for the given account ID.
func (s *Service) Get(ctx context.Context, id int32) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByOwner returns the account owned by the given user.
func (s *Service) GetByOwner(ctx context.Context, owner string) (domain.Account, error) {
	return s.repo.GetByOwner(ctx, owner)
}

// UpdateBio changes the bio shown on the owner's account profile.
func (s *Service) UpdateBio(ctx context.Context, owner, bio string) (domain.Account, error) {
	return s.repo.UpdateBio(ctx, owner, bio)
}

// Profile returns the account's public profile with follow counts.
func (s *Service) Profile(ctx context.Context, id int32) (domain.Profile, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}

	followers, following, err := s.repo.FollowCounts(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{
		Account:   account,
		Followers: followers,
		Following: following,
	}, nil
}

// ToggleFollow makes the caller follow the account, or unfollow if already
// following. It reports whether the caller follows the account afterwards.
func (s *Service) ToggleFollow(ctx context.Context, followerOwner string, followeeID int32) (bool, error) {
	follower, err := s.repo.GetByOwner(ctx, followerOwner)
	if err != nil {
		return false, err
	}

	if follower.ID == followeeID {
		return false, domain.ErrSelfFollow
	}

	if _, err := s.repo.Get(ctx, followeeID); err != nil {
		return false, err
	}

	return s.repo.ToggleFollow(ctx, follower.ID, followeeID)
}
