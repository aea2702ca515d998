package model

import (
	"time"
)

// DisplayDateFormat is the day-first layout stored in the ledger's Tanggal
// column, e.g. "30/08/2026 14.05". Period filters depend on this exact
// ordering; rows written with a different locale ordering will not match.
const DisplayDateFormat = "02/01/2006 15.04"

// displayDateOnly is accepted when parsing legacy rows without a time part.
const displayDateOnly = "02/01/2006"

// jakarta is the display timezone for all stored dates.
var jakarta = loadJakarta()

func loadJakarta() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// DisplayTimezone returns the timezone used for stored dates.
func DisplayTimezone() *time.Location {
	return jakarta
}

// FormatDisplayDate renders t in the stored display format, in WIB.
func FormatDisplayDate(t time.Time) string {
	return t.In(jakarta).Format(DisplayDateFormat)
}

// ParseDisplayDate parses a stored Tanggal cell. It returns false rather
// than an error on malformed input: period filters skip such rows instead
// of aborting the report.
func ParseDisplayDate(s string) (time.Time, bool) {
	if t, err := time.ParseInLocation(DisplayDateFormat, s, jakarta); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(displayDateOnly, s, jakarta); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// SameDay reports whether a and b fall on the same calendar day in WIB.
func SameDay(a, b time.Time) bool {
	a, b = a.In(jakarta), b.In(jakarta)
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// WeekStart returns midnight of the Sunday that starts the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.In(jakarta)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, jakarta)
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}
