package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadcrm/pkg/notion"
	sfpkg "github.com/sells-group/leadcrm/pkg/salesforce"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Mirror stored leads into an external CRM",
}

var pushSalesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Insert or update leads as Salesforce Lead records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sf, err := initSalesforce()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		recs, err := st.All(ctx)
		if err != nil {
			return eris.Wrap(err, "push salesforce")
		}

		res, err := sfpkg.PushLeads(ctx, sf, recs, cfg.Salesforce.ExternalIDField)
		if err != nil {
			return eris.Wrap(err, "push salesforce")
		}
		fmt.Fprintf(os.Stdout, "inserted %d, updated %d, failed %d\n", res.Inserted, res.Updated, len(res.Failed))
		for _, msg := range res.Failed {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
		if len(res.Failed) > 0 {
			return eris.Errorf("push salesforce: %d records rejected", len(res.Failed))
		}
		return nil
	},
}

var pushNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Create or update pages in the Notion lead database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("notion"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		recs, err := st.All(ctx)
		if err != nil {
			return eris.Wrap(err, "push notion")
		}

		res, err := notion.PushLeads(ctx, notion.NewClient(cfg.Notion.Token), cfg.Notion.LeadDB, recs)
		if err != nil {
			return eris.Wrap(err, "push notion")
		}
		fmt.Fprintf(os.Stdout, "created %d, updated %d\n", res.Created, res.Updated)
		return nil
	},
}

func init() {
	pushCmd.AddCommand(pushSalesforceCmd)
	pushCmd.AddCommand(pushNotionCmd)
	rootCmd.AddCommand(pushCmd)
}
