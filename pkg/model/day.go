package model

import "time"

// DayLayout is the wire format for calendar dates (check-in, due dates, ...).
const DayLayout = "2006-01-02"

func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}

// ParseDayIn parses s as a calendar date in the location of ref.
func ParseDayIn(s string, ref time.Time) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, ref.Location())
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
