package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nfc18/contactplus/internal/model"
	"github.com/nfc18/contactplus/internal/overlay"
	"github.com/nfc18/contactplus/internal/pipeline"
	"github.com/nfc18/contactplus/internal/source"
	"github.com/nfc18/contactplus/internal/suggest"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Consolidate parsed sources into canonical contacts",
	Long:  "Loads every parsed source file from a directory, clusters and merges the records, applies the decision file if given, and writes the canonical contact set.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sourcesDir, _ := cmd.Flags().GetString("sources")
		decisionsPath, _ := cmd.Flags().GetString("decisions")
		outPath, _ := cmd.Flags().GetString("out")
		reportPath, _ := cmd.Flags().GetString("report")

		records, sources, err := source.LoadDir(sourcesDir)
		if err != nil {
			return err
		}

		var decisions []model.Decision
		if decisionsPath != "" {
			decisions, err = overlay.Load(decisionsPath)
			if err != nil {
				return err
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		p := pipeline.New(cfg, st, initSuggester())
		outcome, err := p.Run(ctx, records, sources, decisions)
		if err != nil {
			return err
		}

		if outPath != "" {
			if err := writeJSONFile(outPath, outcome.Contacts); err != nil {
				return err
			}
		}
		if reportPath != "" {
			if err := outcome.Report.WriteXLSX(reportPath); err != nil {
				return err
			}
		}

		formatRunSummary(outcome, len(records), len(sources))
		return nil
	},
}

func init() {
	consolidateCmd.Flags().String("sources", "", "directory of parsed source files (*.json)")
	consolidateCmd.Flags().String("decisions", "", "YAML decision file to apply")
	consolidateCmd.Flags().String("out", "", "write the canonical contact set to this JSON file")
	consolidateCmd.Flags().String("report", "", "write the quality report to this XLSX file")
	_ = consolidateCmd.MarkFlagRequired("sources")

	rootCmd.AddCommand(consolidateCmd)
}

// initSuggester builds the configured name suggester, or nil when the
// suggestion pass is disabled.
func initSuggester() suggest.Suggester {
	if !cfg.Suggest.Enabled || cfg.Suggest.APIKey == "" {
		return nil
	}
	return suggest.NewAnthropicSuggester(
		cfg.Suggest.APIKey,
		cfg.Suggest.Model,
		time.Duration(cfg.Suggest.TimeoutSecs)*time.Second,
		cfg.Suggest.CallsPerSecond,
	)
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

func formatRunSummary(outcome *pipeline.RunOutcome, records, sources int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", outcome.RunID)
	_, _ = fmt.Fprintf(w, "Sources:\t%d\n", sources)
	_, _ = fmt.Fprintf(w, "Records in:\t%d\n", records)
	_, _ = fmt.Fprintf(w, "Contacts out:\t%d\n", len(outcome.Contacts))
	_, _ = fmt.Fprintf(w, "Deleted:\t%d\n", countState(outcome.States, overlay.StateDeleted))
	_, _ = fmt.Fprintf(w, "Flagged for review:\t%d\n", outcome.Report.Flagged)
	for _, g := range outcome.Report.Groups {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", g.IssueType, g.Count)
	}
	_ = w.Flush()
}

func countState(states map[string]string, state string) int {
	n := 0
	for _, s := range states {
		if s == state {
			n++
		}
	}
	return n
}
