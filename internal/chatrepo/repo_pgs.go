// Package chatrepo manages repository layer of conversations and messages.
package chatrepo

import (
	"context"
	"database/sql"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/pkg/dbpkg"
	"github.com/doomscrollr/crowdbank/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates chat repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns chat RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// Conversations store the pair in ascending account id order so a pair of
// accounts maps to exactly one row regardless of who messaged first.
const getOrCreateConversationQuery = `
WITH new_conversation AS (
	INSERT INTO conversations (account1_id, account2_id)
	VALUES (least($1::int, $2::int), greatest($1::int, $2::int))
	ON CONFLICT (account1_id, account2_id) DO NOTHING
	RETURNING id, account1_id, account2_id, created_at
)
SELECT id, account1_id, account2_id, created_at FROM new_conversation
UNION ALL
SELECT id, account1_id, account2_id, created_at FROM conversations
WHERE account1_id = least($1::int, $2::int) AND account2_id = greatest($1::int, $2::int)
LIMIT 1
`

// GetOrCreateConversation returns the conversation between the two
// accounts, creating it if it does not exist yet.
func (r *RepoPGS) GetOrCreateConversation(ctx context.Context, accountID1, accountID2 int32) (domain.Conversation, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getOrCreateConversationQuery, accountID1, accountID2)

	var c domain.Conversation

	err := row.Scan(
		&c.ID,
		&c.Account1,
		&c.Account2,
		&c.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "conversations_check":
				return c, domain.ErrSelfConversation
			case "conversations_account1_id_fkey", "conversations_account2_id_fkey":
				return c, domain.ErrAccountNotFound
			}
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const getConversationQuery = `
SELECT
	id, account1_id, account2_id, created_at
FROM conversations
WHERE id = $1
`

// GetConversation returns the conversation with the given id.
func (r *RepoPGS) GetConversation(ctx context.Context, id int32) (domain.Conversation, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getConversationQuery, id)

	var c domain.Conversation

	err := row.Scan(
		&c.ID,
		&c.Account1,
		&c.Account2,
		&c.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return c, domain.ErrConversationNotFound
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const listConversationsQuery = `
SELECT
	id, account1_id, account2_id, created_at
FROM conversations
WHERE account1_id = $1 OR account2_id = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// ListConversations returns the conversations the account participates in.
func (r *RepoPGS) ListConversations(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Conversation, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listConversationsQuery, accountID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Conversation{}

	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.Account1, &c.Account2, &c.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const createMessageQuery = `
INSERT INTO
    messages (conversation_id, sender_id, text)
VALUES
    ($1, $2, $3)
RETURNING id, conversation_id, sender_id, text, created_at
`

// CreateMessage creates a message in the conversation and then returns it.
func (r *RepoPGS) CreateMessage(ctx context.Context, conversationID int32, senderID int32, text string) (domain.Message, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createMessageQuery, conversationID, senderID, text)

	var m domain.Message

	err := row.Scan(
		&m.ID,
		&m.ConversationID,
		&m.SenderID,
		&m.Text,
		&m.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "messages_conversation_id_fkey" {
				return m, domain.ErrConversationNotFound
			}
		}

		return m, errorspkg.ErrInternal
	}

	return m, nil
}

const listMessagesQuery = `
SELECT
	id, conversation_id, sender_id, text, created_at
FROM messages
WHERE conversation_id = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// ListMessages returns the conversation's messages oldest first.
func (r *RepoPGS) ListMessages(ctx context.Context, conversationID int32, limit, offset int32) ([]domain.Message, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listMessagesQuery, conversationID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Message{}

	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
