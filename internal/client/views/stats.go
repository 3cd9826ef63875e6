package views

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/metrics"
)

func RenderStats(w io.Writer, sum metrics.Summary) error {
	if len(sum.Endpoints) == 0 {
		_, err := fmt.Fprintln(w, "No API requests yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Endpoint\tRequests\tErrors\tAvg latency")
	for _, st := range sum.Endpoints {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", st.Endpoint, st.Requests, st.Errors, st.AvgLatency.Round(time.Millisecond))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(sum.Refreshes) == 0 {
		return nil
	}
	results := make([]string, 0, len(sum.Refreshes))
	for r := range sum.Refreshes {
		results = append(results, r)
	}
	sort.Strings(results)

	var b strings.Builder
	b.WriteString("Refreshes:")
	for _, r := range results {
		fmt.Fprintf(&b, " %s=%d", r, sum.Refreshes[r])
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
