// Package timewindow resolves the absolute reporting windows used when
// querying the source API.
package timewindow

import "time"

// WeekWindow returns the Monday 00:00:00 start and Sunday 23:59:59 end
// of the week containing reference, shifted back offsetWeeks whole
// weeks. A zero reference means the current time.
func WeekWindow(offsetWeeks int, reference time.Time) (time.Time, time.Time) {
	if reference.IsZero() {
		reference = time.Now()
	}
	// time.Weekday counts Sunday as 0; the window starts on Monday.
	daysSinceMonday := (int(reference.Weekday()) + 6) % 7
	monday := reference.AddDate(0, 0, -daysSinceMonday-7*offsetWeeks)
	start := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, reference.Location())
	end := start.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end
}

// MonthWindow returns the first instant of a calendar month and
// 23:59:59 of its last day, shifted back offsetMonths whole months
// from the month containing reference. Month arithmetic rolls over
// year boundaries.
func MonthWindow(offsetMonths int, reference time.Time) (time.Time, time.Time) {
	if reference.IsZero() {
		reference = time.Now()
	}
	loc := reference.Location()
	start := time.Date(reference.Year(), reference.Month()-time.Month(offsetMonths), 1, 0, 0, 0, 0, loc)
	// Day 0 of the following month normalizes to the last day of start's month.
	end := time.Date(start.Year(), start.Month()+1, 0, 23, 59, 59, 0, loc)
	return start, end
}

// WeekLabel formats a week window header for display.
func WeekLabel(start, end time.Time) string {
	return "📅 WEEK (" + start.Format("Jan 02") + " - " + end.Format("Jan 02") + ")"
}

// MonthLabel formats a month window header for display.
func MonthLabel(start time.Time) string {
	return "🗓️ MONTH (" + start.Format("January 2006") + ")"
}
