package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ammonit/internal/live"
	"ammonit/internal/telemetry"

	"github.com/spf13/cobra"
)

var counterLimit int

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Follow the live machine counter",
	Long: `Connects to the live counter channel and prints every value as it
arrives, reconnecting whenever the server drops the connection. Stops on
Ctrl+C or after --count values.`,
	Args: cobra.NoArgs,
	RunE: runCounter,
}

func init() {
	counterCmd.Flags().IntVarP(&counterLimit, "count", "n", 0, "Stop after this many values (0 follows forever)")
	rootCmd.AddCommand(counterCmd)
}

func runCounter(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := openConsole(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	reached := make(chan struct{})
	var (
		mu   sync.Mutex
		seen int
	)
	onUpdate := func(msg live.CounterMessage) {
		mu.Lock()
		defer mu.Unlock()
		if counterLimit > 0 && seen >= counterLimit {
			return
		}
		seen++
		fmt.Fprintln(out, msg.Counter)
		if seen == counterLimit {
			close(reached)
		}
	}
	onState := func(s live.State) {
		telemetry.LogDebug("Live channel state", "state", s.String())
	}

	ch := live.Dial(c.cfg.WSURL, onUpdate, append(c.liveOptions(), live.WithStateObserver(onState))...)
	select {
	case <-ctx.Done():
	case <-reached:
	}
	return ch.Close()
}
