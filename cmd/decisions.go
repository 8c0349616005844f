package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nfc18/contactplus/internal/model"
	"github.com/nfc18/contactplus/internal/overlay"
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Work with human review decision files",
}

// -- decisions validate --

var decisionsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a decision file for structural problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}
		var f overlay.DecisionFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return eris.Wrapf(err, "parse %s", args[0])
		}

		valid := overlay.Filter(f.Decisions)
		fmt.Printf("%d decisions, %d valid, %d skipped\n",
			len(f.Decisions), len(valid), len(f.Decisions)-len(valid))
		if len(valid) < len(f.Decisions) {
			return eris.New("decision file contains invalid entries")
		}
		return nil
	},
}

// -- decisions template --

var decisionsTemplateCmd = &cobra.Command{
	Use:   "template <run-id>",
	Short: "Generate a decision file skeleton for a run's flagged contacts",
	Long:  "Writes a YAML decision file with one proposed keep entry per review-flagged contact of the run. Edit the actions and feed the file back into consolidate --decisions.",
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
			return eris.Wrap(err, "decisions template")
		}

		var f overlay.DecisionFile
		for i := range contacts {
			c := &contacts[i]
			if len(c.QualityFlags) == 0 {
				continue
			}
			f.Decisions = append(f.Decisions, model.Decision{
				Target: c.ContactID,
				Action: model.DecisionKeep,
				Reason: templateReason(c),
			})
		}
		if len(f.Decisions) == 0 {
			fmt.Fprintln(os.Stderr, "No flagged contacts; nothing to review.")
			return nil
		}

		data, err := yaml.Marshal(&f)
		if err != nil {
			return eris.Wrap(err, "decisions template: marshal")
		}

		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", outPath)
		}
		fmt.Printf("Wrote %d proposed decisions to %s\n", len(f.Decisions), outPath)
		return nil
	},
}

func templateReason(c *model.CanonicalContact) string {
	issues := make([]string, 0, len(c.QualityFlags))
	seen := map[string]bool{}
	for _, flag := range c.QualityFlags {
		if !seen[flag.IssueType] {
			seen[flag.IssueType] = true
			issues = append(issues, flag.IssueType)
		}
	}
	return fmt.Sprintf("review %s (%s)", c.DisplayName, strings.Join(issues, ", "))
}

func init() {
	decisionsTemplateCmd.Flags().String("out", "", "write the template to this file instead of stdout")

	decisionsCmd.AddCommand(decisionsValidateCmd)
	decisionsCmd.AddCommand(decisionsTemplateCmd)
	rootCmd.AddCommand(decisionsCmd)
}
