package views

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
)

const EmptyLeaderboard = "No users on the board yet — be the first!"

// RenderLeaderboard prints rows in server order. The rank is the 1-based
// position; e-mail domains are hidden.
func RenderLeaderboard(w io.Writer, rows []models.LeaderboardEntry) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, EmptyLeaderboard)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tUser\tToilets")
	for i, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d/%d\n", i+1, row.DisplayName(), row.Total, models.Goal)
	}
	return tw.Flush()
}
