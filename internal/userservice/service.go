// Package userservice manages business logic layer of users.
package userservice

import (
	"context"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/pkg/errorspkg"
	"github.com/doomscrollr/crowdbank/pkg/passpkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, domain.Account, error)
	Get(ctx context.Context, username string) (domain.User, error)
	UpdatePassword(ctx context.Context, username, hashedPassword string) (domain.User, error)
	List(ctx context.Context, arg domain.ListUsersParams) ([]domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New returns user service struct to manage user business logic.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// NewUserWithAccount returns user with removed sensitive data
// together with the account opened for them.
func NewUserWithAccount(u domain.User, a domain.Account) domain.UserWithAccount {
	return domain.UserWithAccount{
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		Account:   a,
	}
}

// Create creates the user along with their zero balance account.
func (s *Service) Create(ctx context.Context, username, password, fullname, email string) (domain.UserWithAccount, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWithAccount

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	arg := domain.CreateUserParams{
		Username:       username,
		HashedPassword: hashedPassword,
		FullName:       fullname,
		Email:          email,
	}

	gotUser, gotAccount, err := s.repo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	result = NewUserWithAccount(gotUser, gotAccount)

	return result, nil
}

// ChangePassword verifies the user's old password and stores the hash of
// the new one.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	gotUser, err := s.repo.Get(ctx, username)
	if err != nil {
		return domain.User{}, err
	}

	if err := passpkg.Check(oldPassword, gotUser.HashedPassword); err != nil {
		l.Warn().Err(err).Send()
		return domain.User{}, domain.ErrWrongPassword
	}

	hashedPassword, err := passpkg.Hash(newPassword)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.User{}, errorspkg.ErrInternal
	}

	return s.repo.UpdatePassword(ctx, username, hashedPassword)
}

// List returns users matching the search term, paginated.
func (s *Service) List(ctx context.Context, search string, pageSize, pageID int32) ([]domain.User, error) {
	arg := domain.ListUsersParams{
		Search: search,
		Limit:  pageSize,
		Offset: (pageID - 1) * pageSize,
	}

	return s.repo.List(ctx, arg)
}

// CheckPassword checks if the password is valid for the given username.
func (s *Service) CheckPassword(ctx context.Context, username, pass string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	gotUser, err := s.repo.Get(ctx, username)
	if err != nil {
		return domain.User{}, err
	}

	err = passpkg.Check(pass, gotUser.HashedPassword)
	if err != nil {
		l.Warn().Err(err).Send()
		return domain.User{}, domain.ErrWrongPassword
	}

	return gotUser, nil
}
