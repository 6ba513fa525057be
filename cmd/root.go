package cmd

import (
	"github.com/spf13/cobra"

	"mevscan/logger"
)

var quiet bool

var RootCmd = &cobra.Command{
	Use:   "mevscan",
	Short: "A tool for classifying MEV patterns and estimating victim losses on Solana",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			logger.SetConsoleEnabled(false)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log to files only, no console output")
}
