package main

import (
	"fmt"

	"ammonit/internal/live"
	"ammonit/internal/telemetry"
	"ammonit/internal/ui"

	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse [collection]",
	Short: "Open the interactive console",
	Long: `Opens the full-screen console. Without an argument it resumes on the
last collection and page you viewed; with one it jumps to that collection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	route := ""
	if len(args) == 1 {
		r, err := ui.RouteFor(args[0])
		if err != nil {
			return err
		}
		route = r
	}

	c, err := openConsole(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	// Log lines would tear through the alternate screen.
	telemetry.InitLogger(c.cfg.Verbose, c.cfg.LogFile, true)

	if route != "" {
		c.router.Navigate(route)
	}

	p := ui.NewProgram(ui.NewAppModel(c.router, c.tabs(), c.session).WithLive())

	onUpdate, onState := ui.LiveCallbacks(p)
	ch := live.Dial(c.cfg.WSURL, onUpdate, append(c.liveOptions(), live.WithStateObserver(onState))...)
	defer ch.Close()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
