// Package cmd wires the PolyGlot command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "polyglot",
	Short: "PolyGlot - a multilingual AI companion for the terminal",
	Long: `PolyGlot is a terminal chat client for multilingual conversation.

It speaks your language - or several at once - and offers three modes:
Standard chat, Cultural Context annotation, and Harmony Mediation between
two parties speaking different languages.

Running polyglot with no arguments starts the interactive session.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCLI()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging on stderr")
}
