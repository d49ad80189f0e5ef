package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Level is a user's KYC tier. Transfer caps are a pure function of level.
type Level string

const (
	LevelNone   Level = "none"
	LevelOne    Level = "level_1"
	LevelTwo    Level = "level_2"
)

// Rank orders levels for the one-directional upgrade rule.
func (l Level) Rank() int {
	switch l {
	case LevelOne:
		return 1
	case LevelTwo:
		return 2
	default:
		return 0
	}
}

func (l Level) Valid() bool {
	switch l {
	case LevelNone, LevelOne, LevelTwo:
		return true
	default:
		return false
	}
}

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusApproved VerificationStatus = "approved"
	StatusRejected VerificationStatus = "rejected"
)

// UserVerification is one user's KYC record. Level transitions go through
// admin approval and are one-directional unless an admin explicitly
// downgrades.
type UserVerification struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID snowflake.ID `gorm:"not null;uniqueIndex" json:"user_id"`

	Level  Level              `gorm:"type:text;not null;default:'none'" json:"level"`
	Status VerificationStatus `gorm:"type:text;not null;default:'pending'" json:"status"`

	DocumentType   *string `gorm:"type:text" json:"document_type,omitempty"`
	DocumentNumber *string `gorm:"type:text" json:"document_number,omitempty"`

	RequestedLevel *Level     `gorm:"type:text" json:"requested_level,omitempty"`
	ReviewedBy     *string    `gorm:"type:text" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UserVerification) TableName() string { return "user_verifications" }
