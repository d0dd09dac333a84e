package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stepcore",
	Short: "Stepper pulse generation toolkit",
	Long: `stepcore drives the stepper pulse pipeline: simulate a segment
program against a software board, stream segments to a controller over a
serial link, or serve live telemetry to dashboards.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
