// Package streak computes the daily login streak.
//
// The rules are small but the day-boundary semantics are the whole point:
// two logins on the same calendar day must not inflate the streak, a login
// on the very next day extends it by one, and any longer gap resets it.
//
// DAY-BOUNDARY CONVENTION:
// All comparisons use UTC calendar days. The convention is fixed here, in
// one place, so the rule is deterministic and testable — "same day" never
// depends on the server's local timezone or on where the phone happens to
// be when it logs in near midnight.
package streak

import "time"

// Next returns the streak value after a successful login at now.
//
//   - lastLogin nil            → 1 (first-ever login)
//   - same UTC day as now      → current, unchanged
//   - exactly the previous day → current + 1
//   - anything else            → 1 (gap of 2+ days, or a clock-skewed
//     lastLogin in the future)
//
// Next is pure. The caller persists the returned value and sets
// lastLogin = now unconditionally, even when the streak is unchanged.
func Next(now time.Time, lastLogin *time.Time, current int) int {
	if lastLogin == nil {
		return 1
	}

	today := utcDay(now)
	lastDay := utcDay(*lastLogin)

	switch today.Sub(lastDay) {
	case 0:
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}

// Day returns t's UTC calendar date formatted "2006-01-02". The usage
// snapshot keys use the same convention as the streak so the two never
// disagree about what "today" means.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// utcDay truncates t to midnight UTC. Subtracting two utcDay values always
// yields a whole multiple of 24h, which makes the switch in Next exact.
func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
