package models

import "time"

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

// Streak counts consecutive calendar days, in now's location, with at least
// one visit. The count runs back from today, or from yesterday when nothing
// has been logged yet today.
func Streak(entries []Entry, now time.Time) int {
	loc := now.Location()
	days := make(map[civilDate]struct{}, len(entries))
	for _, e := range entries {
		days[dateOf(e.VisitedAt.In(loc))] = struct{}{}
	}

	// Noon avoids DST edges when stepping back one day at a time.
	y, m, d := now.Date()
	cursor := time.Date(y, m, d, 12, 0, 0, 0, loc)
	if _, ok := days[dateOf(cursor)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[dateOf(cursor)]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}
