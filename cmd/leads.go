package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadcrm/internal/model"
	"github.com/sells-group/leadcrm/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and edit stored leads",
}

// -- leads list --

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads in insertion order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		recs, err := st.All(ctx)
		if err != nil {
			return eris.Wrap(err, "leads list")
		}

		status, _ := cmd.Flags().GetString("status")
		format, _ := cmd.Flags().GetString("output")
		recs = filterByStatus(recs, status)

		if len(recs) == 0 && format == "table" {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}
		return writeRecords(os.Stdout, recs, format)
	},
}

// -- leads show --

var leadsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec, err := store.Find(ctx, st, args[0])
		if err != nil {
			return eris.Wrap(err, "leads show")
		}
		format, _ := cmd.Flags().GetString("output")
		return writeRecord(os.Stdout, rec, format)
	},
}

// -- leads edit --

var leadsEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change the status or value of a lead",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if !cmd.Flags().Changed("status") && !cmd.Flags().Changed("value") {
			return eris.New("leads edit: nothing to change (set --status or --value)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		id, _ := cmd.Flags().GetString("id")
		rec, err := store.Find(ctx, st, id)
		if err != nil {
			return eris.Wrap(err, "leads edit")
		}

		status, _ := cmd.Flags().GetString("status")
		value, _ := cmd.Flags().GetFloat64("value")
		rec = applyEdit(rec, cmd.Flags().Changed("status"), status, cmd.Flags().Changed("value"), value)

		if err := st.Upsert(ctx, rec); err != nil {
			return eris.Wrap(err, "leads edit")
		}

		zap.L().Info("lead updated",
			zap.String("id", rec.ID),
			zap.String("status", string(rec.Status)),
			zap.Float64("value", rec.Value),
		)
		return writeRecord(os.Stdout, rec, "json")
	},
}

func init() {
	leadsListCmd.Flags().String("status", "", "only leads in this status (aliases accepted)")
	leadsListCmd.Flags().StringP("output", "o", "table", "output format: table, json, yaml")
	leadsShowCmd.Flags().StringP("output", "o", "json", "output format: json, yaml")
	leadsEditCmd.Flags().String("id", "", "id of the lead to edit (required)")
	_ = leadsEditCmd.MarkFlagRequired("id")
	leadsEditCmd.Flags().String("status", "", "new status")
	leadsEditCmd.Flags().Float64("value", 0, "new deal value")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsShowCmd)
	leadsCmd.AddCommand(leadsEditCmd)
	rootCmd.AddCommand(leadsCmd)
}

// filterByStatus keeps records whose status matches the normalized filter.
// An empty filter keeps everything.
func filterByStatus(recs []model.LeadRecord, status string) []model.LeadRecord {
	if status == "" {
		return recs
	}
	want := model.NormalizeStatus(status)
	out := make([]model.LeadRecord, 0, len(recs))
	for _, r := range recs {
		if r.Status == want {
			out = append(out, r)
		}
	}
	return out
}

func applyEdit(rec model.LeadRecord, setStatus bool, status string, setValue bool, value float64) model.LeadRecord {
	if setStatus {
		rec.Status = model.NormalizeStatus(status)
	}
	if setValue {
		rec.Value = value
	}
	return rec
}
