package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Well-known configuration keys. The settlement and invoicing paths look
// these up by name, so they must stay stable once deployed.
const (
	KeySellerCommissionRate     = "seller_commission_rate"
	KeyBuyerPlatformFeeRate     = "buyer_platform_fee_rate"
	KeyInvoiceNumberingSequence = "invoice_numbering_sequence"
)

const (
	CategoryCommissions = "commissions"
	CategoryInvoicing   = "invoicing"
)

// PlatformConfig is one active value per key. Updates are full replacements;
// rows are never deleted.
type PlatformConfig struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Key         string            `gorm:"type:text;not null;uniqueIndex" json:"key"`
	Value       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"value"`
	Description *string           `gorm:"type:text" json:"description,omitempty"`
	Category    string            `gorm:"type:text;not null;index" json:"category"`
	UpdatedBy   *string           `gorm:"type:text" json:"updated_by,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PlatformConfig) TableName() string { return "platform_config" }

// RateValue is the structured value stored under the two rate keys.
type RateValue struct {
	Rate float64 `json:"rate"`
	Type string  `json:"type"`
}

// NumberingSequence is the structured value under invoice_numbering_sequence.
// Current is the last sequence handed out; the next invoice takes Current+1.
type NumberingSequence struct {
	Prefix  string `json:"prefix"`
	Current int64  `json:"current"`
	Padding int    `json:"padding"`
}

// Format renders the sequence value seq as an invoice number, e.g.
// prefix "GSHOP", padding 8, seq 123 -> "GSHOP-00000123".
func (n NumberingSequence) Format(seq int64) (string, error) {
	if n.Prefix == "" {
		return "", ErrInvalidSequence
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}
	padding := n.Padding
	if padding <= 0 {
		padding = 1
	}
	return fmt.Sprintf("%s-%0*d", n.Prefix, padding, seq), nil
}

// RateFromValue extracts the percentage rate out of a stored config value.
func RateFromValue(value datatypes.JSONMap) (float64, error) {
	raw, ok := value["rate"]
	if !ok {
		return 0, ErrInvalidValue
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, ErrInvalidValue
	}
}

// SequenceFromValue extracts the numbering sequence out of a stored value.
func SequenceFromValue(value datatypes.JSONMap) (NumberingSequence, error) {
	seq := NumberingSequence{Padding: 1}

	prefix, ok := value["prefix"].(string)
	if !ok || prefix == "" {
		return NumberingSequence{}, ErrInvalidSequence
	}
	seq.Prefix = prefix

	current, err := toInt64(value["current"])
	if err != nil || current < 0 {
		return NumberingSequence{}, ErrInvalidSequence
	}
	seq.Current = current

	if rawPadding, ok := value["padding"]; ok {
		padding, err := toInt64(rawPadding)
		if err != nil || padding < 1 || padding > 12 {
			return NumberingSequence{}, ErrInvalidSequence
		}
		seq.Padding = int(padding)
	}

	return seq, nil
}

// Value renders the sequence back into its storage shape.
func (n NumberingSequence) Value() datatypes.JSONMap {
	return datatypes.JSONMap{
		"prefix":  n.Prefix,
		"current": n.Current,
		"padding": n.Padding,
	}
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, ErrInvalidValue
	}
}
