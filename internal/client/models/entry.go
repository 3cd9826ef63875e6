package models

import (
	"slices"
	"time"
)

// Goal is the number of unique toilets every user races towards.
const Goal = 400

// Placeholders sent when an entry is logged from the device position.
const (
	GPSEntryName    = "Toilet at Current Location"
	GPSEntryAddress = "Auto-detected via GPS"

	// ManualEntryAddress is sent when a manual entry leaves the address empty.
	ManualEntryAddress = "Manual entry"
)

// Coordinates is a (latitude, longitude) pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point is a GeoJSON point. Coordinates are ordered [longitude, latitude].
type Point struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// NewPoint builds a GeoJSON point for c.
func NewPoint(c Coordinates) Point {
	return Point{Type: "Point", Coordinates: []float64{c.Longitude, c.Latitude}}
}

// Entry is one logged toilet as returned by GET /api/toilets.
type Entry struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	Location     Point     `json:"location"`
	VisitedAt    time.Time `json:"visitedAt"`
	IsGoldenBowl bool      `json:"isGoldenBowl"`
}

// Coordinates returns the entry position. ok is false when the server sent
// fewer than two coordinates.
func (e Entry) Coordinates() (Coordinates, bool) {
	if len(e.Location.Coordinates) < 2 {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: e.Location.Coordinates[1], Longitude: e.Location.Coordinates[0]}, true
}

// NewEntry is the body of POST /api/toilets.
type NewEntry struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// SortByVisitedDesc returns a copy of entries ordered by visit time, newest
// first. Entries visited at the same instant keep their input order.
func SortByVisitedDesc(entries []Entry) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return b.VisitedAt.Compare(a.VisitedAt)
	})
	return sorted
}
