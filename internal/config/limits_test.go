package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLimitsConfigIsValid(t *testing.T) {
	require.NoError(t, validateLimitsConfig(DefaultLimitsConfig()))
}

func TestValidateLimitsConfig(t *testing.T) {
	valid := DefaultLimitsConfig()

	zeroed := valid
	zeroed.Level1.DailyCap = 0
	assert.Error(t, validateLimitsConfig(zeroed))

	inverted := valid
	inverted.None.DailyCap = inverted.None.MonthlyCap + 1
	assert.Error(t, validateLimitsConfig(inverted))

	decreasing := valid
	decreasing.Level2.DailyCap = valid.Level1.DailyCap - 1
	assert.Error(t, validateLimitsConfig(decreasing))
}

func TestStaticHolderReturnsFixedTable(t *testing.T) {
	cfg := DefaultLimitsConfig()
	cfg.None.DailyCap = 123

	holder := NewStaticLimitsHolder(cfg)
	assert.Equal(t, int64(123), holder.Get().None.DailyCap)
}
