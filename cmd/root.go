package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nfc18/contactplus/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "contactplus",
	Short: "Multi-source contact consolidation pipeline",
	Long:  "Loads parsed address book exports, clusters records that identify the same person, merges each cluster into a canonical contact with full provenance, and applies human review decisions on top.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
