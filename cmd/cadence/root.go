// Command cadence is a thin harness for exercising the pattern core end
// to end (load a file, tick it forward, print emitted Actions as JSON) —
// it owns none of the language logic, and is not the editor surface the
// spec leaves out of scope.
package main

import (
	"github.com/spf13/cobra"
)

var (
	flagQuiet bool
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Run and check Cadence pattern programs",
	Long:  "cadence drives the reactive pattern-core Interpreter from the command line: load a program, tick it forward, and print the Actions it emits, or check a file for errors without running it.",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
