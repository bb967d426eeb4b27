package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArrayBolt3/kloak-v2/internal/core"
	"github.com/ArrayBolt3/kloak-v2/internal/logger"
)

// defaultMaxDelayMs is the upper bound on how long any single event can be
// held back before release. 100ms sits comfortably below the threshold at
// which users notice input lag, while still giving the delay scheduler
// enough spread to decorrelate keystroke timing.
const defaultMaxDelayMs = 100

var (
	// Version is set during build.
	Version = "0.1.0-dev"

	maxDelayMs int64
	seatName   string

	rootCmd = &cobra.Command{
		Use:   "kloak",
		Short: "kloak - anti-keystroke-deanonymization input daemon",
		Long: `kloak grabs every physical input device on the host, re-emits each
event to the Wayland compositor after a bounded randomized delay, and draws
a crosshair overlay tracking the resulting virtual cursor. The delay exists
to prevent websites and local observers from fingerprinting users by their
precise keystroke and pointer timing.`,
		SilenceUsage: true,
		RunE:         run,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.Flags().Int64Var(&maxDelayMs, "max-delay-ms", defaultMaxDelayMs,
		"upper bound, in milliseconds, on how long any event is held before release")
	rootCmd.Flags().StringVar(&seatName, "seat", "",
		"name of a wl_seat; accepted but not used for selection: the first wl_seat advertised is always bound")
}

func run(_ *cobra.Command, _ []string) error {
	if maxDelayMs <= 0 {
		return fmt.Errorf("--max-delay-ms must be positive, got %d", maxDelayMs)
	}

	ctx, err := core.New(core.Config{
		MaxDelayMs: maxDelayMs,
		SeatName:   seatName,
	})
	if err != nil {
		return fmt.Errorf("starting kloak: %w", err)
	}

	logger.Infof("kloak: bootstrapped, grabbing input and running")
	return ctx.Run()
}

