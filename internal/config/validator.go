package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	// Validate page_size (must be positive)
	if size := viper.GetInt(KeyPageSize); size <= 0 {
		errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", KeyPageSize, size))
	}

	// Validate durations (must be positive)
	for _, key := range []string{KeyAPITimeout, KeyLiveReconnectDelay, KeyLiveMaxDelay, KeyLiveHandshakeTimeout, KeyServeTick} {
		if d := durationOf(key); d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %v", key, viper.Get(key)))
		}
	}
	if durationOf(KeyLiveMaxDelay) < durationOf(KeyLiveReconnectDelay) {
		errors = append(errors, fmt.Sprintf("%s must not be shorter than %s", KeyLiveMaxDelay, KeyLiveReconnectDelay))
	}

	// Validate port numbers (must be in valid range 1-65535)
	for _, key := range []string{KeyMetricsPort, KeyServePort} {
		if port := viper.GetInt(key); port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("%s must be between 1 and 65535, got: %d", key, port))
		}
	}

	// Validate URLs
	if msg := checkURL(KeyAPIURL, "http", "https"); msg != "" {
		errors = append(errors, msg)
	}
	if msg := checkURL(KeyWSURL, "ws", "wss"); msg != "" {
		errors = append(errors, msg)
	}

	// Validate enumerations
	if t := strings.ToLower(viper.GetString(KeyStoreType)); t != "sqlite" && t != "postgres" {
		errors = append(errors, fmt.Sprintf("%s must be sqlite or postgres, got: %q", KeyStoreType, t))
	}
	if b := strings.ToLower(viper.GetString(KeyLiveBackoff)); b != "fixed" && b != "exponential" {
		errors = append(errors, fmt.Sprintf("%s must be fixed or exponential, got: %q", KeyLiveBackoff, b))
	}

	// If there are any errors, return them
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}

	return nil
}

func checkURL(key string, schemes ...string) string {
	raw := viper.GetString(key)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Sprintf("%s must be an absolute URL, got: %q", key, raw)
	}
	if !slices.Contains(schemes, u.Scheme) {
		return fmt.Sprintf("%s must use %s, got: %q", key, strings.Join(schemes, " or "), raw)
	}
	return ""
}
