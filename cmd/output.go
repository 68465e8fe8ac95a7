package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadcrm/internal/model"
)

func writeRecord(out io.Writer, rec model.LeadRecord, format string) error {
	switch format {
	case "yaml":
		return encodeYAML(out, rec)
	case "json", "":
		return encodeJSON(out, rec)
	default:
		return eris.Errorf("unsupported output format: %s", format)
	}
}

func writeRecords(out io.Writer, recs []model.LeadRecord, format string) error {
	switch format {
	case "json":
		return encodeJSON(out, recs)
	case "yaml":
		return encodeYAML(out, recs)
	case "table", "":
		formatLeadsTable(out, recs)
		return nil
	default:
		return eris.Errorf("unsupported output format: %s", format)
	}
}

func encodeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode yaml")
	}
	return enc.Close()
}

// formatLeadsTable writes a tabular list of leads to out.
func formatLeadsTable(out io.Writer, recs []model.LeadRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tSTATUS\tSCORE\tVALUE")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t------\t-----\t-----")
	for _, r := range recs {
		id := r.ID
		if id == "" {
			id = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\t%.2f\n",
			id,
			truncate(r.Name, 30),
			truncate(r.Company, 30),
			r.Status,
			r.Score,
			r.Value,
		)
	}
	_ = w.Flush()
}

// truncate shortens s to n runes with a trailing ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
