package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	extractID     string
	extractFile   string
	extractFormat string
)

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "Extract one lead from free text and save it",
	Long:  "Sends the text to the completion model, parses the returned record and upserts it into the store. With --id the record replaces any stored record with that id.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		raw, err := readInput(args, extractFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx, "extract")
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Pipeline.Process(ctx, env.Store, raw, extractID)
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		zap.L().Info("lead saved",
			zap.String("id", rec.ID),
			zap.String("status", string(rec.Status)),
		)
		return writeRecord(os.Stdout, rec, extractFormat)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractID, "id", "", "target record id; replaces the stored record with this id")
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "read text from file (default stdin)")
	extractCmd.Flags().StringVarP(&extractFormat, "output", "o", "json", "output format: json, yaml")
	rootCmd.AddCommand(extractCmd)
}
