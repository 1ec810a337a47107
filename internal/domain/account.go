package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrAccountAlreadyExists indicates that the user already has an account.
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrSelfFollow indicates an attempt to follow one's own account.
	ErrSelfFollow = errors.New("cannot follow own account")
)

// Account holds a user's balance and public profile data.
//
// Every user owns exactly one account, created together with the user.
// The balance is mutated only by the ledger transfer transaction.
type Account struct {
	ID        int32     `json:"id"`
	Owner     string    `json:"owner"`
	Balance   string    `json:"balance"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the public representation of an account with follow counts.
type Profile struct {
	Account   Account `json:"account"`
	Followers int64   `json:"followers"`
	Following int64   `json:"following"`
}
