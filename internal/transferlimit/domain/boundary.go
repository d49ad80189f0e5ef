package domain

import "time"

// SameCalendarDay reports whether a and b fall on the same UTC date.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// SameCalendarMonth reports whether a and b fall in the same UTC month.
func SameCalendarMonth(a, b time.Time) bool {
	ay, am, _ := a.UTC().Date()
	by, bm, _ := b.UTC().Date()
	return ay == by && am == bm
}
