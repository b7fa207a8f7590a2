package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schollz/cadence/internal/interp"
	"github.com/schollz/cadence/internal/jsonaction"
)

var flagBeats int

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Load a Cadence program and tick it forward, printing emitted Actions as JSON",
	Long: `run loads FILE into a fresh Interpreter and advances the transport one
scheduler tick at a time (interp.TicksPerBeat ticks per beat) for --beats
beats, printing every Action produced as a JSON array per tick.

Examples:
  cadence run loop.cdc                # tick forward 4 beats (default)
  cadence run loop.cdc --beats 16`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		ip := interp.New(nil)
		for _, d := range ip.Load(string(src)) {
			fmt.Fprintf(os.Stderr, "diagnostic: %s: %s\n", d.Kind, d.Message)
		}

		totalTicks := flagBeats * interp.TicksPerBeat
		for i := 0; i < totalTicks; i++ {
			actions := ip.Tick()
			if len(actions) == 0 {
				continue
			}
			data, err := jsonaction.MarshalBatch(actions)
			if err != nil {
				return fmt.Errorf("marshaling actions: %w", err)
			}
			fmt.Println(string(data))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&flagBeats, "beats", 4, "number of beats to tick forward")
}
