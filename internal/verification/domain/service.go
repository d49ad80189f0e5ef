package domain

import (
	"context"
	"errors"
)

type SubmitRequest struct {
	UserID         string `json:"user_id"`
	RequestedLevel Level  `json:"requested_level"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
}

type ReviewRequest struct {
	UserID     string `json:"user_id"`
	ReviewedBy string `json:"reviewed_by"`
}

type DowngradeRequest struct {
	UserID     string `json:"user_id"`
	Level      Level  `json:"level"`
	ReviewedBy string `json:"reviewed_by"`
	Reason     string `json:"reason,omitempty"`
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*UserVerification, error)
	Approve(ctx context.Context, req ReviewRequest) (*UserVerification, error)
	Reject(ctx context.Context, req ReviewRequest) (*UserVerification, error)
	Downgrade(ctx context.Context, req DowngradeRequest) (*UserVerification, error)
	GetByUser(ctx context.Context, userID string) (*UserVerification, error)
}

var (
	ErrNotFound        = errors.New("verification_not_found")
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidLevel    = errors.New("invalid_level")
	ErrInvalidDocument = errors.New("invalid_document")
	ErrNotPending      = errors.New("verification_not_pending")
	ErrLevelRegression = errors.New("level_regression")
)
