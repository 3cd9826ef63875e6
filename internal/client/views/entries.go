package views

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
)

const (
	EmptyEntries   = "No toilets logged yet — time to start your quest! 🚽"
	addressDefault = "GPS Location"
	visitLayout    = "2006-01-02 15:04"
	goldenMark     = "🏆"
)

// RenderEntries lists entries newest first regardless of input order. Visit
// times are shown in loc.
func RenderEntries(w io.Writer, entries []models.Entry, loc *time.Location) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, EmptyEntries)
		return err
	}
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	fmt.Fprintf(&b, "My Toilets (%d)\n", len(entries))
	for i, e := range models.SortByVisitedDesc(entries) {
		name := e.Name
		if e.IsGoldenBowl {
			name += " " + goldenMark
		}
		address := e.Address
		if address == "" {
			address = addressDefault
		}
		fmt.Fprintf(&b, "%3d. %s\n", i+1, name)
		fmt.Fprintf(&b, "     %s\n", address)
		fmt.Fprintf(&b, "     %s  id:%s\n", e.VisitedAt.In(loc).Format(visitLayout), e.ID)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
