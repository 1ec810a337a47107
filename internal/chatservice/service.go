// Package chatservice manages business logic layer of private chats.
package chatservice

import (
	"context"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by chat service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package chatservice
type Repo interface {
	GetOrCreateConversation(ctx context.Context, accountID1, accountID2 int32) (domain.Conversation, error)
	GetConversation(ctx context.Context, id int32) (domain.Conversation, error)
	ListConversations(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Conversation, error)
	CreateMessage(ctx context.Context, conversationID int32, senderID int32, text string) (domain.Message, error)
	ListMessages(ctx context.Context, conversationID int32, limit, offset int32) ([]domain.Message, error)
}

// AccountGetter resolves the caller's account.
type AccountGetter interface {
	Get(ctx context.Context, id int32) (domain.Account, error)
	GetByOwner(ctx context.Context, owner string) (domain.Account, error)
}

// Service facilitates chat service layer logic.
type Service struct {
	repo     Repo
	accounts AccountGetter
}

// New returns chat service struct to manage chat business logic.
func New(cr Repo, ag AccountGetter) *Service {
	return &Service{
		repo:     cr,
		accounts: ag,
	}
}

// Send delivers a message from the given user to the receiver account,
// creating the conversation between the pair if it does not exist yet.
func (s *Service) Send(ctx context.Context, owner string, receiverID int32, text string) (domain.Message, error) {
	l := zerolog.Ctx(ctx)

	sender, err := s.accounts.GetByOwner(ctx, owner)
	if err != nil {
		return domain.Message{}, err
	}

	if sender.ID == receiverID {
		l.Info().Int32("account_id", sender.ID).Msg("attempt to message own account")
		return domain.Message{}, domain.ErrSelfConversation
	}

	if _, err = s.accounts.Get(ctx, receiverID); err != nil {
		return domain.Message{}, err
	}

	conv, err := s.repo.GetOrCreateConversation(ctx, sender.ID, receiverID)
	if err != nil {
		return domain.Message{}, err
	}

	return s.repo.CreateMessage(ctx, conv.ID, sender.ID, text)
}

// ListConversations returns the given user's conversations newest first.
func (s *Service) ListConversations(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Conversation, error) {
	account, err := s.accounts.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	return s.repo.ListConversations(ctx, account.ID, pageSize, (pageID-1)*pageSize)
}

// ListMessages returns messages of the conversation oldest first.
// Only participants of the conversation may read it.
func (s *Service) ListMessages(ctx context.Context, owner string, conversationID int32, pageSize, pageID int32) ([]domain.Message, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.accounts.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.Account1 != account.ID && conv.Account2 != account.ID {
		l.Warn().Int32("account_id", account.ID).Int32("conversation_id", conv.ID).Msg("not a participant")
		return nil, domain.ErrNotParticipant
	}

	return s.repo.ListMessages(ctx, conversationID, pageSize, (pageID-1)*pageSize)
}
