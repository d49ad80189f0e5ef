package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	verificationdomain "github.com/gshop/marketplace/internal/verification/domain"
)

// TransferLimit tracks one user's withdrawal usage against the caps for
// their verification level. Accumulators reset lazily on the first
// transfer after a day or month boundary rather than by a scheduled job.
type TransferLimit struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID snowflake.ID `gorm:"not null;uniqueIndex" json:"user_id"`

	VerificationLevel verificationdomain.Level `gorm:"column:verification_level;type:text;not null;default:'none'" json:"verification_level"`

	DailyTransferred    int64 `gorm:"not null;default:0" json:"daily_transferred"`
	MonthlyTransferred  int64 `gorm:"not null;default:0" json:"monthly_transferred"`
	LifetimeTransferred int64 `gorm:"not null;default:0" json:"lifetime_transferred"`

	DailyTransferCount    int64 `gorm:"not null;default:0" json:"daily_transfer_count"`
	MonthlyTransferCount  int64 `gorm:"not null;default:0" json:"monthly_transfer_count"`
	LifetimeTransferCount int64 `gorm:"not null;default:0" json:"lifetime_transfer_count"`

	DailyResetAt   time.Time `gorm:"not null" json:"daily_reset_at"`
	MonthlyResetAt time.Time `gorm:"not null" json:"monthly_reset_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (TransferLimit) TableName() string { return "transfer_limits" }
