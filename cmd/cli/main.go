// Package main provides the resumeats command-line frontend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "resumeats",
		Short:         "ResumeATS Pro command line",
		Long:          "Analyze a PDF resume with Gemini from the terminal: quick scans, detailed analyses, ATS optimization against a job description, and follow-up questions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newAnalyzeCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
