package service

import "time"

const dayLayout = "2006-01-02"

// parseDay parses a YYYY-MM-DD string into a UTC midnight timestamp.
func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.UTC)
}

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// clockTime formats a timestamp as the wall-clock HH:MM stored on ledger rows.
func clockTime(t time.Time) string {
	return t.UTC().Format("15:04")
}
