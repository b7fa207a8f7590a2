package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schollz/cadence/internal/services"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Check a Cadence program for errors without running it",
	Long: `check parses and evaluates FILE against a scratch environment that
discards every transport effect. It reports every parse error, or, when
the file parses, the first evaluation (name/type/...) error, where
evaluation stops. Returns exit code 0 if the file is clean, 1 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		result := services.ParseAndCheck(string(src))
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s: %s\n", e.Kind, e.Message)
		}
		if !result.Ok {
			return fmt.Errorf("check failed with %d error(s)", len(result.Errors))
		}
		if !flagQuiet {
			fmt.Println("ok")
		}
		return nil
	},
}
