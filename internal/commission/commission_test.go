package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate_ReferenceAmounts(t *testing.T) {
	// 100,000.00 order, 7% commission, 3% buyer fee.
	res := Calculate(10000000, 7, 3)
	assert.Equal(t, int64(300000), res.PlatformFeeAmount)
	assert.Equal(t, int64(700000), res.SellerCommissionAmount)
	assert.Equal(t, int64(9300000), res.SellerNetAmount)
}

func TestCalculate_CommissionPlusNetIsTotal(t *testing.T) {
	totals := []int64{1, 99, 101, 333333, 10000000, 987654321}
	sellerRates := []float64{0, 0.5, 7, 12.5, 50}
	for _, total := range totals {
		for _, rate := range sellerRates {
			res := Calculate(total, rate, 3)
			assert.Equal(t, total, res.SellerCommissionAmount+res.SellerNetAmount,
				"total=%d rate=%v", total, rate)
		}
	}
}

func TestCalculate_RoundsHalfUp(t *testing.T) {
	// 1.01 at 7% = 0.0707 -> 0.07; 1.50 at 7% = 0.105 -> 0.11 (half-up).
	assert.Equal(t, int64(7), Calculate(101, 7, 3).SellerCommissionAmount)
	assert.Equal(t, int64(11), Calculate(150, 7, 3).SellerCommissionAmount)
	// Buyer fee rounds the same way: 1.50 at 3% = 0.045 -> 0.05.
	assert.Equal(t, int64(5), Calculate(150, 7, 3).PlatformFeeAmount)
}

func TestCalculate_ZeroRates(t *testing.T) {
	res := Calculate(10000000, 0, 0)
	assert.Zero(t, res.PlatformFeeAmount)
	assert.Zero(t, res.SellerCommissionAmount)
	assert.Equal(t, int64(10000000), res.SellerNetAmount)
}

func TestCalculate_NonPositiveTotal(t *testing.T) {
	assert.Equal(t, Result{}, Calculate(0, 7, 3))
	assert.Equal(t, Result{}, Calculate(-100, 7, 3))
}

func TestRateInRange(t *testing.T) {
	assert.True(t, RateInRange(0))
	assert.True(t, RateInRange(7))
	assert.True(t, RateInRange(50))
	assert.False(t, RateInRange(-0.01))
	assert.False(t, RateInRange(50.01))
}
