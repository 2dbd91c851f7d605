package main

import (
	"fmt"
	"os"

	"ammonit/internal/config"
	"ammonit/internal/metrics"
	"ammonit/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit
var cfgFile string

// appMetrics backs every collector the console and the dev backend update.
var appMetrics = metrics.New(prometheus.NewRegistry())

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ammonit",
	Short: "Terminal console for the Ammonit order-processing backend",
	Long: `ammonit browses the users, clients, orders, emails and prompts of an
Ammonit backend page by page, and shows the live machine counter while
you do. Run it without a subcommand to open the interactive console.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runBrowse,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'ammonit --help' for usage.")
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL (overrides config and AMMONIT_API_URL)")
	rootCmd.PersistentFlags().String("ws-url", "", "Live counter WebSocket URL (overrides config and AMMONIT_WS_URL)")
	rootCmd.PersistentFlags().Int("page-size", 0, "Rows per page")

	bindFlags()
}

// bindFlags ties the persistent flags to their configuration keys.
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	viper.BindPFlag(config.KeyVerbose, flags.Lookup("verbose"))
	viper.BindPFlag(config.KeyAPIURL, flags.Lookup("api-url"))
	viper.BindPFlag(config.KeyWSURL, flags.Lookup("ws-url"))
	viper.BindPFlag(config.KeyPageSize, flags.Lookup("page-size"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	used, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading config: %v\n", err)
		exit(1)
		return
	}

	if err := config.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
		return
	}

	cfg := config.FromViper()
	telemetry.InitLogger(cfg.Verbose, cfg.LogFile, false)
	if used != "" {
		telemetry.LogDebug("Using config file", "path", used)
	}

	if cfg.Metrics.Enabled {
		go func() {
			if err := telemetry.StartMetricsServer(cfg.Metrics.Port, appMetrics.Handler()); err != nil {
				telemetry.LogWarn("Metrics server stopped", "port", cfg.Metrics.Port, "error", err)
			}
		}()
	}
}
