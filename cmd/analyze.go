package cmd

import (
	"github.com/spf13/cobra"

	"mevscan/logger"
	"mevscan/sol"
)

var analyzeTxs []string

var analyzeCmd = cobra.Command{
	Use:   "analyze",
	Short: "Analyze target transactions for sandwich and front-run patterns",
	Run: func(cmd *cobra.Command, args []string) {
		logger.InitLogs("analyze")

		targets := append(analyzeTxs, args...)
		if len(targets) == 0 {
			logger.MevLogger.Info("No target signatures given on the command line, relying on mev.auto-detect-hashes from config")
		}

		logger.MevLogger.Info("Running cmd analyze...", "targets", len(targets))

		if err := sol.RunAnalyzeCmd(targets); err != nil {
			logger.MevLogger.Error("Error running analyze command", "err", err)
		}
	},
}

func init() {
	analyzeCmd.Flags().StringSliceVarP(
		&analyzeTxs,
		"tx",
		"t",
		nil,
		"(Optional) target transaction signatures, also accepted as positional args",
	)
	RootCmd.AddCommand(&analyzeCmd)
}
