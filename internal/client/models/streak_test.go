package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func visitsAt(times ...time.Time) []Entry {
	entries := make([]Entry, len(times))
	for i, t := range times {
		entries[i] = Entry{VisitedAt: t}
	}
	return entries
}

func TestStreak(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 10, 14, 18, 0, 0, 0, loc)
	day := func(offset int, hour int) time.Time {
		return time.Date(2026, 10, 14+offset, hour, 0, 0, 0, loc)
	}

	tests := []struct {
		name    string
		entries []Entry
		want    int
	}{
		{name: "no entries", entries: nil, want: 0},
		{name: "only today", entries: visitsAt(day(0, 9)), want: 1},
		{name: "duplicates on one day count once", entries: visitsAt(day(0, 9), day(0, 10), day(0, 11)), want: 1},
		{name: "three consecutive days", entries: visitsAt(day(0, 9), day(-1, 9), day(-2, 9)), want: 3},
		{name: "gap breaks streak", entries: visitsAt(day(0, 9), day(-1, 9), day(-3, 9)), want: 2},
		{name: "nothing today yet counts from yesterday", entries: visitsAt(day(-1, 9), day(-2, 9)), want: 2},
		{name: "last visit two days ago", entries: visitsAt(day(-2, 9)), want: 0},
		{name: "input order does not matter", entries: visitsAt(day(-2, 9), day(0, 9), day(-1, 9)), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.entries, now))
		})
	}
}

func TestStreak_UsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, loc)

	// 02:00 UTC on the 14th is still the 13th at UTC-5.
	entries := visitsAt(
		time.Date(2026, 10, 14, 2, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, 2, Streak(entries, now))
}
