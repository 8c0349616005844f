package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nfc18/contactplus/internal/pipeline"
)

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Render the quality report for a stored run",
	Long:  "Rebuilds the quality report from the canonical contacts of a completed run and writes it as JSON to stdout or as an XLSX workbook.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		contacts, err := st.ListContacts(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "report")
		}
		if len(contacts) == 0 {
			return eris.Errorf("no contacts stored for run %s", args[0])
		}

		rep := pipeline.BuildReport(args[0], contacts)

		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		if xlsxPath != "" {
			return rep.WriteXLSX(xlsxPath)
		}
		return rep.WriteJSON(os.Stdout)
	},
}

func init() {
	reportCmd.Flags().String("xlsx", "", "write the report as an XLSX workbook instead of JSON on stdout")

	rootCmd.AddCommand(reportCmd)
}
