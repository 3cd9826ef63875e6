package models

import (
	"slices"
	"time"
)

// DefaultCenter is where the map opens before any entry is known.
var DefaultCenter = Coordinates{Latitude: 51.505, Longitude: -0.09}

// DefaultZoom is the map zoom level.
const DefaultZoom = 13

// Snapshot is the result of one complete refresh: the three API reads plus
// the map center derived from them.
type Snapshot struct {
	Progress    *Progress
	Entries     []Entry
	Leaderboard []LeaderboardEntry
	Center      Coordinates
	FetchedAt   time.Time
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.Progress != nil {
		p := *s.Progress
		c.Progress = &p
	}
	c.Entries = make([]Entry, len(s.Entries))
	for i, e := range s.Entries {
		e.Location.Coordinates = slices.Clone(e.Location.Coordinates)
		c.Entries[i] = e
	}
	c.Leaderboard = slices.Clone(s.Leaderboard)
	return c
}

// CenterFromEntries returns the position of the first entry (the server
// lists the most recent visit first), or fallback when there is none.
func CenterFromEntries(entries []Entry, fallback Coordinates) Coordinates {
	if len(entries) == 0 {
		return fallback
	}
	if c, ok := entries[0].Coordinates(); ok {
		return c
	}
	return fallback
}
