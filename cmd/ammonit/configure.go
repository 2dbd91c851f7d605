package main

import (
	"fmt"
	"net/url"
	"strconv"

	"ammonit/internal/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// askOne is swapped out in tests.
var askOne = survey.AskOne

var configureOutput string

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive configuration wizard",
	Long:  "Asks for the backend address, credentials and paging preferences and writes them to a config file.",
	Args:  cobra.NoArgs,
	RunE:  runConfigure,
}

func init() {
	configureCmd.Flags().StringVarP(&configureOutput, "output", "o", "", "File to write (default: the loaded config file or ./config.yaml)")
	rootCmd.AddCommand(configureCmd)
}

func validURL(ans interface{}) error {
	s, _ := ans.(string)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", s)
	}
	return nil
}

func validPageSize(ans interface{}) error {
	s, _ := ans.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("page size must be a positive number")
	}
	return nil
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper()

	apiURL := cfg.APIURL
	if err := askOne(&survey.Input{
		Message: "Backend URL:",
		Default: cfg.APIURL,
	}, &apiURL, survey.WithValidator(validURL)); err != nil {
		return err
	}

	wsURL := cfg.WSURL
	if err := askOne(&survey.Input{
		Message: "Live counter URL:",
		Default: cfg.WSURL,
	}, &wsURL, survey.WithValidator(validURL)); err != nil {
		return err
	}

	var token string
	if err := askOne(&survey.Password{
		Message: "API token (empty keeps the current one):",
	}, &token); err != nil {
		return err
	}

	pageSize := strconv.Itoa(cfg.PageSize)
	if err := askOne(&survey.Input{
		Message: "Rows per page:",
		Default: pageSize,
	}, &pageSize, survey.WithValidator(validPageSize)); err != nil {
		return err
	}

	backoff := cfg.Live.Backoff
	if err := askOne(&survey.Select{
		Message: "Reconnect strategy:",
		Options: []string{"fixed", "exponential"},
		Default: cfg.Live.Backoff,
	}, &backoff); err != nil {
		return err
	}

	size, _ := strconv.Atoi(pageSize)
	viper.Set(config.KeyAPIURL, apiURL)
	viper.Set(config.KeyWSURL, wsURL)
	viper.Set(config.KeyPageSize, size)
	viper.Set(config.KeyLiveBackoff, backoff)
	if token != "" {
		viper.Set(config.KeyAPIToken, token)
	}

	if err := config.ValidateConfig(); err != nil {
		return err
	}

	path := configureOutput
	if path == "" {
		path = viper.ConfigFileUsed()
	}
	if path == "" {
		path = "config.yaml"
	}
	if err := config.Write(path); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration saved to %s\n", path)
	return nil
}
