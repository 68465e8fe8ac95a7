package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadcrm/internal/model"
)

const barWidth = 40

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show pipeline totals and the status histogram",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sum, err := st.Aggregate(ctx)
		if err != nil {
			return eris.Wrap(err, "dashboard")
		}

		format, _ := cmd.Flags().GetString("output")
		switch format {
		case "json":
			return encodeJSON(os.Stdout, sum)
		case "yaml":
			return encodeYAML(os.Stdout, sum)
		default:
			formatDashboard(os.Stdout, sum)
			return nil
		}
	},
}

func init() {
	dashboardCmd.Flags().StringP("output", "o", "text", "output format: text, json, yaml")
	rootCmd.AddCommand(dashboardCmd)
}

// formatDashboard writes totals and one bar per status to out. Known stages
// come first in funnel order, then any other statuses alphabetically.
func formatDashboard(out io.Writer, s model.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Leads:\t%d\n", s.Count)
	_, _ = fmt.Fprintf(w, "Pipeline value:\t%.2f\n", s.TotalValue)
	_, _ = fmt.Fprintf(w, "Mean score:\t%.1f\n", s.MeanScore)
	_, _ = fmt.Fprintln(w)

	peak := 0
	for _, n := range s.StatusHistogram {
		peak = max(peak, n)
	}
	for _, status := range histogramOrder(s.StatusHistogram) {
		n := s.StatusHistogram[status]
		_, _ = fmt.Fprintf(w, "%s\t%s %d\n", status, bar(n, peak), n)
	}
	_ = w.Flush()
}

func histogramOrder(h map[string]int) []string {
	var order []string
	seen := make(map[string]bool)
	for _, k := range model.KnownStatuses {
		if _, ok := h[string(k)]; ok {
			order = append(order, string(k))
			seen[string(k)] = true
		}
	}
	var rest []string
	for k := range h {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func bar(n, peak int) string {
	if peak == 0 || n == 0 {
		return ""
	}
	return strings.Repeat("#", max(1, n*barWidth/peak))
}
