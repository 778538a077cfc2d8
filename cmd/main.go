// Package main provides the apexmatch command: the ranking HTTP service and
// a one-shot ranking tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "apexmatch",
	Short: "Resume to job ranking service",
	Long: "apexmatch ranks job postings against a resume by fusing a symbolic " +
		"skill and experience score with embedding similarity, optionally " +
		"reranking the leading results with a cross-encoder.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (defaults to $APEX_CONFIG)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
