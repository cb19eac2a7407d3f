package workperiods

import "time"

// DateFormatAPI is the date layout used in URLs and API queries.
const DateFormatAPI = "2006-01-02"

// Week is a Sunday-start calendar week.
type Week struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WeekOf returns the week containing date. Time of day is dropped.
func WeekOf(date time.Time) Week {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 6)
	return Week{Start: start, End: end}
}

// Equal compares week bounds by calendar date.
func (w Week) Equal(other Week) bool {
	return sameDate(w.Start, other.Start) && sameDate(w.End, other.End)
}

// After reports whether w starts after other on the calendar.
func (w Week) After(other Week) bool {
	return dateKey(w.Start) > dateKey(other.Start)
}

func sameDate(a, b time.Time) bool {
	return dateKey(a) == dateKey(b)
}

func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// filterPeriodsByStartDate keeps periods starting on or after start.
func filterPeriodsByStartDate(periods []WorkPeriod, start time.Time) []WorkPeriod {
	if start.IsZero() {
		return periods
	}
	out := make([]WorkPeriod, 0, len(periods))
	for _, p := range periods {
		if dateKey(p.StartDate) >= dateKey(start) {
			out = append(out, p)
		}
	}
	return out
}
