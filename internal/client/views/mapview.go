package views

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
)

const (
	osmTiles   = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	osmViewURL = "https://www.openstreetmap.org/"
	dateLayout = "2006-01-02"
)

// OSMLink returns an openstreetmap.org link centered on c with a marker.
func OSMLink(c models.Coordinates, zoom int) string {
	return fmt.Sprintf("%s?mlat=%.6f&mlon=%.6f#map=%d/%.6f/%.6f",
		osmViewURL, c.Latitude, c.Longitude, zoom, c.Latitude, c.Longitude)
}

// RenderMap prints the map center and one marker line per entry. Entries
// without usable coordinates are skipped.
func RenderMap(w io.Writer, center models.Coordinates, zoom int, entries []models.Entry, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Map center: %.5f, %.5f (zoom %d)\n", center.Latitude, center.Longitude, zoom)
	fmt.Fprintf(&b, "  %s\n", OSMLink(center, zoom))
	fmt.Fprintf(&b, "Tiles: %s\n", osmTiles)

	markers := 0
	for _, e := range models.SortByVisitedDesc(entries) {
		c, ok := e.Coordinates()
		if !ok {
			continue
		}
		markers++
		fmt.Fprintf(&b, "* %s (%s) %.5f, %.5f\n  %s\n",
			e.Name, e.VisitedAt.In(loc).Format(dateLayout), c.Latitude, c.Longitude, OSMLink(c, zoom))
	}
	if markers == 0 {
		fmt.Fprintln(&b, "No markers yet.")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Geometry   models.Point      `json:"geometry"`
	Properties featureProperties `json:"properties"`
}

type featureProperties struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	VisitedAt    time.Time `json:"visitedAt"`
	IsGoldenBowl bool      `json:"isGoldenBowl"`
}

// MapGeoJSON encodes the markers of entries as a GeoJSON FeatureCollection,
// newest first.
func MapGeoJSON(entries []models.Entry) ([]byte, error) {
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, e := range models.SortByVisitedDesc(entries) {
		c, ok := e.Coordinates()
		if !ok {
			continue
		}
		fc.Features = append(fc.Features, feature{
			Type:     "Feature",
			Geometry: models.NewPoint(c),
			Properties: featureProperties{
				ID:           e.ID,
				Name:         e.Name,
				Address:      e.Address,
				VisitedAt:    e.VisitedAt,
				IsGoldenBowl: e.IsGoldenBowl,
			},
		})
	}
	return json.MarshalIndent(fc, "", "  ")
}
