// Package commission computes the platform's settlement amounts for a
// delivered order. Rates arrive as a frozen snapshot taken by the caller at
// calculation time; nothing here reads live configuration.
package commission

import "math"

// RateMin and RateMax bound every configurable percentage rate. Writes
// outside this range are rejected at the configuration boundary, so the
// calculator trusts its inputs.
const (
	RateMin = 0
	RateMax = 50
)

// RateInRange reports whether a percentage rate is within [RateMin, RateMax].
func RateInRange(rate float64) bool {
	return rate >= RateMin && rate <= RateMax
}

// Result holds the settlement amounts for one order, in centavos.
type Result struct {
	// PlatformFeeAmount is charged to the buyer on top of the order total.
	// It is bookkeeping here; collection happens upstream at checkout.
	PlatformFeeAmount int64

	// SellerCommissionAmount is retained by the platform from the seller.
	SellerCommissionAmount int64

	// SellerNetAmount = orderTotal - SellerCommissionAmount, exactly.
	SellerNetAmount int64
}

// Calculate derives fee, commission, and seller net from the order total and
// the frozen percentage rates (e.g. 7 for 7%). Fee and commission are rounded
// half-up; the net is derived by subtraction so commission + net equals the
// order total with no residual centavo.
func Calculate(orderTotal int64, sellerCommissionRate, buyerPlatformFeeRate float64) Result {
	if orderTotal <= 0 {
		return Result{}
	}

	fee := int64(math.Round(float64(orderTotal) * buyerPlatformFeeRate / 100))
	cut := int64(math.Round(float64(orderTotal) * sellerCommissionRate / 100))

	return Result{
		PlatformFeeAmount:      fee,
		SellerCommissionAmount: cut,
		SellerNetAmount:        orderTotal - cut,
	}
}
