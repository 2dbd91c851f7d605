package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		setup     func()
		wantError bool
		errMsg    string
	}{
		{
			name:      "Valid Defaults",
			setup:     func() {},
			wantError: false,
		},
		{
			name: "Valid Overrides",
			setup: func() {
				viper.Set(KeyAPITimeout, 30)
				viper.Set(KeyLiveBackoff, "Exponential")
				viper.Set(KeyWSURL, "wss://ammonit.example.com/api/v1/machines/ws")
				viper.Set(KeyStoreType, "postgres")
			},
			wantError: false,
		},
		{
			name: "Invalid Page Size",
			setup: func() {
				viper.Set(KeyPageSize, 0)
			},
			wantError: true,
			errMsg:    "page_size must be positive",
		},
		{
			name: "Invalid Timeout (Negative Duration)",
			setup: func() {
				viper.Set(KeyAPITimeout, -10*time.Second)
			},
			wantError: true,
			errMsg:    "api.timeout must be positive",
		},
		{
			name: "Invalid Timeout (Negative Int)",
			setup: func() {
				viper.Set(KeyServeTick, -10)
			},
			wantError: true,
			errMsg:    "serve.tick must be positive",
		},
		{
			name: "Max Delay Below Reconnect Delay",
			setup: func() {
				viper.Set(KeyLiveMaxDelay, "500ms")
			},
			wantError: true,
			errMsg:    "live.max_delay must not be shorter than live.reconnect_delay",
		},
		{
			name: "Exponential Backoff Without Cap",
			setup: func() {
				viper.Set(KeyLiveBackoff, "exponential")
				viper.Set(KeyLiveMaxDelay, 0)
			},
			wantError: true,
			errMsg:    "live.max_delay must be positive",
		},
		{
			name: "Invalid Port",
			setup: func() {
				viper.Set(KeyServePort, 70000)
			},
			wantError: true,
			errMsg:    "serve.port must be between 1 and 65535",
		},
		{
			name: "Invalid API URL Scheme",
			setup: func() {
				viper.Set(KeyAPIURL, "ws://localhost:8000")
			},
			wantError: true,
			errMsg:    "api_url must use http or https",
		},
		{
			name: "Relative WS URL",
			setup: func() {
				viper.Set(KeyWSURL, "/api/v1/machines/ws")
			},
			wantError: true,
			errMsg:    "ws_url must be an absolute URL",
		},
		{
			name: "Unknown Store",
			setup: func() {
				viper.Set(KeyStoreType, "mysql")
			},
			wantError: true,
			errMsg:    "store.type must be sqlite or postgres",
		},
		{
			name: "Unknown Backoff",
			setup: func() {
				viper.Set(KeyLiveBackoff, "linear")
			},
			wantError: true,
			errMsg:    "live.backoff must be fixed or exponential",
		},
		{
			name: "Multiple Errors",
			setup: func() {
				viper.Set(KeyPageSize, -1)
				viper.Set(KeyMetricsPort, 0)
			},
			wantError: true,
			errMsg:    "metrics.port must be between 1 and 65535",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()
			SetDefaults()
			tt.setup()

			err := ValidateConfig()
			if tt.wantError {
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}
			assert.NoError(t, err)
		})
	}
}
