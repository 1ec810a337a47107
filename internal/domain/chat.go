package domain

import (
	"errors"
	"time"
)

var (
	// ErrConversationNotFound indicates that the conversation is not found.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrNotParticipant indicates that the account does not belong to the conversation.
	ErrNotParticipant = errors.New("account is not a conversation participant")
	// ErrSelfConversation indicates an attempt to message one's own account.
	ErrSelfConversation = errors.New("cannot message own account")
)

// Conversation is a private chat between two accounts, unique per pair.
type Conversation struct {
	ID        int32     `json:"id"`
	Account1  int32     `json:"account1_id"`
	Account2  int32     `json:"account2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message holds a chat message.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int32     `json:"conversation_id"`
	SenderID       int32     `json:"sender_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}
