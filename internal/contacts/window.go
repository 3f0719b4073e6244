package contacts

import "time"

// Window is an inclusive month/day range used for upcoming-birthday
// matching. Birth years are ignored entirely; a window that crosses a month
// boundary (including December to January) is represented by two edges.
type Window struct {
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// UpcomingWindow computes the forward window [today, today+days].
func UpcomingWindow(today time.Time, days int) Window {
	end := today.AddDate(0, 0, days)
	return Window{
		StartMonth: today.Month(),
		StartDay:   today.Day(),
		EndMonth:   end.Month(),
		EndDay:     end.Day(),
	}
}

// SameMonth reports whether the window stays inside one calendar month.
func (w Window) SameMonth() bool {
	return w.StartMonth == w.EndMonth
}

// Contains reports whether the month/day of dob falls inside the window.
// A Feb 29 birth date simply never matches when day 29 of February is not
// in scope; there is no special casing.
func (w Window) Contains(dob time.Time) bool {
	month, day := dob.Month(), dob.Day()
	if w.SameMonth() {
		return month == w.StartMonth && day >= w.StartDay && day <= w.EndDay
	}
	return (month == w.StartMonth && day >= w.StartDay) ||
		(month == w.EndMonth && day <= w.EndDay)
}
