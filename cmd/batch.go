package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadcrm/internal/extract"
)

var batchFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract many leads from delimited text",
	Long:  `Splits the input on "Record ID: <n>" markers (see extract.delimiter) and extracts one record per segment. Failures are reported per id; the rest are saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		raw, err := readInput(args, batchFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx, "extract")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.ProcessBatch(ctx, env.Store, raw)
		if err != nil {
			return eris.Wrap(err, "batch")
		}

		formatBatchResult(os.Stdout, res)
		if len(res.Failed) > 0 && len(res.Succeeded) == 0 {
			return eris.Errorf("batch: all %d segments failed", res.Total)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "read text from file (default stdin)")
	rootCmd.AddCommand(batchCmd)
}

// formatBatchResult writes saved ids and per-id failures to out.
func formatBatchResult(out io.Writer, res *extract.BatchResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", res.RunID)
	_, _ = fmt.Fprintf(w, "Segments:\t%d\n", res.Total)
	_, _ = fmt.Fprintf(w, "Saved:\t%d\n", len(res.Succeeded))
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", len(res.Failed))
	for _, f := range res.Failed {
		_, _ = fmt.Fprintf(w, "  %s\t%v\n", f.ID, f.Err)
	}
	_ = w.Flush()
}
