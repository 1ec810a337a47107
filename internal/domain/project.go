package domain

import (
	"errors"
	"time"
)

var (
	// ErrProjectNotFound indicates that the project is not found.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidFundingGoal indicates a non-positive or malformed funding goal.
	ErrInvalidFundingGoal = errors.New("invalid funding goal")
)

// Project holds crowdfunding project data.
//
// CurrentFunding is a denormalized sum of all transfers targeting the
// project; it is mutated only by the ledger transfer transaction.
type Project struct {
	ID             int32     `json:"id"`
	OwnerID        int32     `json:"owner_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	FundingGoal    string    `json:"funding_goal"`
	CurrentFunding string    `json:"current_funding"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateProjectParams is the input data to create a project.
type CreateProjectParams struct {
	OwnerID     int32  `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FundingGoal string `json:"funding_goal"`
}

// ListProjectsParams is the input data to list projects newest first.
type ListProjectsParams struct {
	OwnerID int32 `json:"owner_id"` // 0 lists projects of all owners
	Limit   int32 `json:"limit"`
	Offset  int32 `json:"offset"`
}
