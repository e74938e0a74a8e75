package shared

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DayWindow returns the [start, end) bounds of the calendar day containing t,
// evaluated in t's location. Aggregations over "a day" always use this window
// so the boundary is defined in exactly one place.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24 * time.Hour)
}

// ParseDate parses a YYYY-MM-DD string in the supplied location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, loc)
}
