package views

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
)

const barWidth = 30

// Login banner texts.
const (
	Title       = "🚽 Toilet Tracker"
	Tagline     = "Join the race to 400 unique toilets"
	NewUserHint = "New here? Just enter any email & password — it will create your account automatically!"
)

func RenderLogin(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n\n%s\n", Title, Tagline, NewUserHint)
	return err
}

// ProgressBar draws pct (0-100) as a bar of width cells.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	pct = math.Max(0, math.Min(100, pct))
	filled := int(math.Round(pct / 100 * float64(width)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// RenderProgress prints the header of the main screen. A nil progress means
// nothing was loaded yet.
func RenderProgress(w io.Writer, p *models.Progress, streak int) error {
	if p == nil {
		_, err := fmt.Fprintln(w, "Progress not loaded yet. Type 'refresh'.")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d / %d Unique Toilets\n", p.Total, models.Goal)
	fmt.Fprintf(&b, "%s %.1f%%\n", ProgressBar(p.Percentage, barWidth), p.Percentage)
	if p.Message != "" {
		fmt.Fprintln(&b, p.Message)
	}
	fmt.Fprintf(&b, "Remaining: %d\n", p.Remaining)
	switch streak {
	case 0:
	case 1:
		fmt.Fprintln(&b, "Streak: 1 day")
	default:
		fmt.Fprintf(&b, "Streak: %d days\n", streak)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
