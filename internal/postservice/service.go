// Package postservice manages business logic layer of social posts.
package postservice

import (
	"context"

	"github.com/doomscrollr/crowdbank/internal/domain"
)

// Repo provides data access layer interface needed by post service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package postservice
type Repo interface {
	Create(ctx context.Context, authorID int32, content string) (domain.Post, error)
	Get(ctx context.Context, id int64) (domain.Post, error)
	List(ctx context.Context, arg domain.ListPostsParams) ([]domain.Post, error)
	ToggleLike(ctx context.Context, postID int64, accountID int32) (bool, error)
	CreateComment(ctx context.Context, postID int64, authorID int32, content string) (domain.Comment, error)
	ListComments(ctx context.Context, postID int64, limit, offset int32) ([]domain.Comment, error)
}

// AccountGetter resolves the caller's account.
type AccountGetter interface {
	GetByOwner(ctx context.Context, owner string) (domain.Account, error)
}

// Service facilitates post service layer logic.
type Service struct {
	repo     Repo
	accounts AccountGetter
}

// New returns post service struct to manage post business logic.
func New(pr Repo, ag AccountGetter) *Service {
	return &Service{
		repo:     pr,
		accounts: ag,
	}
}

// Create creates a post authored by the given user's account.
func (s *Service) Create(ctx context.Context, owner, content string) (domain.Post, error) {
	account, err := s.accounts.GetByOwner(ctx, owner)
	if err != nil {
		return domain.Post{}, err
	}

	return s.repo.Create(ctx, account.ID, content)
}

// Get returns the post with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Post, error) {
	return s.repo.Get(ctx, id)
}

// List returns posts newest first, optionally filtered by author account.
func (s *Service) List(ctx context.Context, authorID, pageSize, pageID int32) ([]domain.Post, error) {
	arg := domain.ListPostsParams{
		AuthorID: authorID,
		Limit:    pageSize,
		Offset:   (pageID - 1) * pageSize,
	}

	return s.repo.List(ctx, arg)
}

// ToggleLike likes the post on behalf of the given user or removes
// the existing like. It reports whether the post is liked afterwards.
func (s *Service) ToggleLike(ctx context.Context, owner string, postID int64) (bool, error) {
	account, err := s.accounts.GetByOwner(ctx, owner)
	if err != nil {
		return false, err
	}

	if _, err = s.repo.Get(ctx, postID); err != nil {
		return false, err
	}

	return s.repo.ToggleLike(ctx, postID, account.ID)
}

// Comment creates a comment on the post by the given user's account.
func (s *Service) Comment(ctx context.Context, owner string, postID int64, content string) (domain.Comment, error) {
	account, err := s.accounts.GetByOwner(ctx, owner)
	if err != nil {
		return domain.Comment{}, err
	}

	return s.repo.CreateComment(ctx, postID, account.ID, content)
}

// ListComments returns comments of the post oldest first.
func (s *Service) ListComments(ctx context.Context, postID int64, pageSize, pageID int32) ([]domain.Comment, error) {
	return s.repo.ListComments(ctx, postID, pageSize, (pageID-1)*pageSize)
}
