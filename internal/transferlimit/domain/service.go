package domain

import (
	"context"
	"errors"
)

const (
	ReasonDailyCap   = "daily_cap_exceeded"
	ReasonMonthlyCap = "monthly_cap_exceeded"
)

// Decision is the outcome of a transfer check. A denial is a normal
// business outcome, not an error; errors are reserved for invalid input
// and infrastructure failures.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	Requested int64  `json:"requested"`
	Current   int64  `json:"current"`
	Cap       int64  `json:"cap"`
}

type CheckRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

type Tracker interface {
	// CheckAndReserve atomically validates the amount against the user's
	// daily and monthly caps and, if allowed, adds it to the accumulators.
	CheckAndReserve(ctx context.Context, req CheckRequest) (*Decision, error)
	GetByUser(ctx context.Context, userID string) (*TransferLimit, error)
}

var (
	ErrNotFound      = errors.New("transfer_limit_not_found")
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidAmount = errors.New("invalid_amount")
)
