package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadcrm/internal/export"
	"github.com/sells-group/leadcrm/internal/model"
)

var exportOut string

// createExportFile opens the export destination.
var createExportFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all leads as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		recs, err := st.All(ctx)
		if err != nil {
			return eris.Wrap(err, "export")
		}

		if err := writeExport(os.Stdout, exportOut, recs); err != nil {
			return err
		}
		zap.L().Info("export complete", zap.Int("records", len(recs)), zap.String("out", exportOut))
		return nil
	},
}

// writeExport writes recs as CSV to path, or to stdout when path is empty or "-".
func writeExport(stdout io.Writer, path string, recs []model.LeadRecord) (err error) {
	if path == "" || path == "-" {
		if err := export.WriteCSV(stdout, recs); err != nil {
			return eris.Wrap(err, "export")
		}
		return nil
	}

	f, err := createExportFile(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrap(cerr, "export: close file")
		}
	}()

	if err := export.WriteCSV(f, recs); err != nil {
		return eris.Wrap(err, "export")
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "O", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
