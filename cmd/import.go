package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadcrm/internal/export"
	"github.com/sells-group/leadcrm/internal/model"
	"github.com/sells-group/leadcrm/internal/store"
	"github.com/sells-group/leadcrm/pkg/notion"
)

var (
	importCSVPath    string
	importReplace    bool
	importFromNotion bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load leads from a CSV export or the Notion lead database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importCSVPath == "" && !importFromNotion {
			return eris.New("import: set --file or --notion")
		}

		var (
			recs []model.LeadRecord
			err  error
		)
		if importFromNotion {
			if err := cfg.Validate("notion"); err != nil {
				return err
			}
			recs, err = notion.PullLeads(ctx, notion.NewClient(cfg.Notion.Token), cfg.Notion.LeadDB)
		} else {
			recs, err = readCSVFile(importCSVPath)
		}
		if err != nil {
			return eris.Wrap(err, "import")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := loadRecords(ctx, st, recs, importReplace); err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("records", len(recs)),
			zap.Bool("replace", importReplace),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importCSVPath, "file", "f", "", "path to a CSV file in export format")
	importCmd.Flags().BoolVar(&importFromNotion, "notion", false, "read leads from the configured Notion database")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "replace the whole store instead of upserting")
	rootCmd.AddCommand(importCmd)
}

func readCSVFile(path string) ([]model.LeadRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open csv %s", path)
	}
	defer f.Close() //nolint:errcheck
	return export.ReadCSV(f)
}

// loadRecords writes recs into st. With replace the store is swapped
// wholesale when the backend supports it; otherwise each record is upserted
// in file order.
func loadRecords(ctx context.Context, st store.RecordStore, recs []model.LeadRecord, replace bool) error {
	if replace {
		r, ok := st.(store.Replacer)
		if !ok {
			return eris.New("import: store does not support --replace")
		}
		return eris.Wrap(r.ReplaceAll(ctx, recs), "import: replace")
	}
	for _, rec := range recs {
		if err := st.Upsert(ctx, rec); err != nil {
			return eris.Wrapf(err, "import: upsert %q", rec.ID)
		}
	}
	return nil
}
