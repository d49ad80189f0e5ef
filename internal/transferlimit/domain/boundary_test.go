package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameCalendarDay(t *testing.T) {
	base := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC)

	assert.True(t, SameCalendarDay(base, base.Add(29*time.Minute)))
	assert.False(t, SameCalendarDay(base, base.Add(31*time.Minute)))

	// Comparison happens in UTC regardless of the input location.
	bogota := time.FixedZone("America/Bogota", -5*60*60)
	local := time.Date(2025, time.March, 10, 20, 0, 0, 0, bogota) // 01:00 UTC on the 11th
	assert.False(t, SameCalendarDay(base, local))
}

func TestSameCalendarMonth(t *testing.T) {
	a := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC)
	assert.True(t, SameCalendarMonth(a, b))

	assert.False(t, SameCalendarMonth(b, b.Add(time.Second)))

	// Same month number in a different year is a different window.
	assert.False(t, SameCalendarMonth(a, a.AddDate(1, 0, 0)))
}
