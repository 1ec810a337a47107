package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidAmount indicates a non-numeric, non-positive or too precise amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSelfTransfer indicates that sender and receiver are the same account.
	ErrSelfTransfer = errors.New("sender and receiver accounts must differ")
	// ErrInsufficientBalance indicates that the sender does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidOwner indicates that the user is unauthorized to transfer money from the account.
	ErrInvalidOwner = errors.New("unauthorized owner")
	// ErrTransferNotFound indicates that the transfer is not found.
	ErrTransferNotFound = errors.New("transfer not found")
	// ErrConcurrencyConflict indicates that the transfer lost a lock or
	// serialization conflict and may be retried by the caller.
	ErrConcurrencyConflict = errors.New("concurrent transfer conflict, retry")
)

// Transfer is an immutable ledger record of value moved between two
// accounts to fund a project. Rows are never updated or deleted.
type Transfer struct {
	ID         int64     `json:"id"`
	SenderID   int32     `json:"sender_id"`
	ReceiverID int32     `json:"receiver_id"`
	ProjectID  int32     `json:"project_id"`
	Amount     string    `json:"amount"` // always positive
	CreatedAt  time.Time `json:"created_at"`
}

// CreateTransferParams is the input data for the transfer transaction.
type CreateTransferParams struct {
	SenderID   int32  `json:"sender_id"`
	ReceiverID int32  `json:"receiver_id"`
	ProjectID  int32  `json:"project_id"`
	Amount     string `json:"amount"`
}

// ListTransfersParams is the input data to list an account's transfers.
type ListTransfersParams struct {
	AccountID int32 `json:"account_id"`
	Limit     int32 `json:"limit"`
	Offset    int32 `json:"offset"`
}

// TransferTxResult is the result of the transfer transaction.
type TransferTxResult struct {
	Transfer Transfer `json:"transfer"`
	Sender   Account  `json:"sender"`
	Receiver Account  `json:"receiver"`
	Project  Project  `json:"project"`
}
