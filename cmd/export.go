package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export the canonical contact set of a run",
	Long:  "Writes the stored canonical contacts of a completed run as JSON, ready for downstream import tooling.",
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
			return eris.Wrap(err, "export")
		}
		if len(contacts) == 0 {
			return eris.Errorf("no contacts stored for run %s", args[0])
		}

		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(contacts)
		}
		return writeJSONFile(outPath, contacts)
	},
}

func init() {
	exportCmd.Flags().String("out", "", "write to this file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}
