package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyAPIURL               = "api_url"
	KeyAPIToken             = "api.token"
	KeyAPITimeout           = "api.timeout"
	KeyWSURL                = "ws_url"
	KeyPageSize             = "page_size"
	KeyLiveBackoff          = "live.backoff"
	KeyLiveReconnectDelay   = "live.reconnect_delay"
	KeyLiveMaxDelay         = "live.max_delay"
	KeyLiveHandshakeTimeout = "live.handshake_timeout"
	KeyStoreType            = "store.type"
	KeyStoreDSN             = "store.dsn"
	KeyLogFile              = "log_file"
	KeyVerbose              = "verbose"
	KeyMetricsEnabled       = "metrics.enabled"
	KeyMetricsPort          = "metrics.port"
	KeyServePort            = "serve.port"
	KeyServeTick            = "serve.tick"
	KeyServeSeed            = "serve.seed"
)

// EnvPrefix is prepended to every environment override, e.g.
// AMMONIT_API_URL or AMMONIT_LIVE_BACKOFF.
const EnvPrefix = "AMMONIT"

// SetDefaults registers the default of every key.
func SetDefaults() {
	viper.SetDefault(KeyAPIURL, "http://localhost:8000")
	viper.SetDefault(KeyAPIToken, "")
	viper.SetDefault(KeyAPITimeout, "15s")
	viper.SetDefault(KeyWSURL, "ws://localhost:8000/api/v1/machines/ws")
	viper.SetDefault(KeyPageSize, 10)
	viper.SetDefault(KeyLiveBackoff, "fixed")
	viper.SetDefault(KeyLiveReconnectDelay, "1s")
	viper.SetDefault(KeyLiveMaxDelay, "30s")
	viper.SetDefault(KeyLiveHandshakeTimeout, "10s")
	viper.SetDefault(KeyStoreType, "sqlite")
	viper.SetDefault(KeyStoreDSN, ".ammonit.db")
	viper.SetDefault(KeyLogFile, "ammonit.log")
	viper.SetDefault(KeyVerbose, false)
	viper.SetDefault(KeyMetricsEnabled, false)
	viper.SetDefault(KeyMetricsPort, 2112)
	viper.SetDefault(KeyServePort, 8000)
	viper.SetDefault(KeyServeTick, "1s")
	viper.SetDefault(KeyServeSeed, true)
}

// Load initializes the configuration from file and environment variables.
// A missing config.yaml in the working directory is not an error; a
// missing file named explicitly is. It returns the file actually read, if
// any.
func Load(cfgFile string) (string, error) {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", err
	}
	return viper.ConfigFileUsed(), nil
}

// Write stores every current setting, defaults included, in path. The
// format follows the file extension.
func Write(path string) error {
	return viper.WriteConfigAs(path)
}

// Config is the typed view of the loaded configuration.
type Config struct {
	APIURL     string
	APIToken   string
	APITimeout time.Duration
	WSURL      string
	PageSize   int

	Live    LiveConfig
	Store   StoreConfig
	Metrics MetricsConfig
	Serve   ServeConfig

	LogFile string
	Verbose bool
}

type LiveConfig struct {
	Backoff          string
	ReconnectDelay   time.Duration
	MaxDelay         time.Duration
	HandshakeTimeout time.Duration
}

type StoreConfig struct {
	Type string
	DSN  string
}

type MetricsConfig struct {
	Enabled bool
	Port    int
}

type ServeConfig struct {
	Port int
	Tick time.Duration
	Seed bool
}

// durationOf reads key as a duration. Bare integers are seconds.
func durationOf(key string) time.Duration {
	switch v := viper.Get(key).(type) {
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	}
	return viper.GetDuration(key)
}

// FromViper snapshots the current viper state.
func FromViper() Config {
	return Config{
		APIURL:     viper.GetString(KeyAPIURL),
		APIToken:   viper.GetString(KeyAPIToken),
		APITimeout: durationOf(KeyAPITimeout),
		WSURL:      viper.GetString(KeyWSURL),
		PageSize:   viper.GetInt(KeyPageSize),
		Live: LiveConfig{
			Backoff:          strings.ToLower(viper.GetString(KeyLiveBackoff)),
			ReconnectDelay:   durationOf(KeyLiveReconnectDelay),
			MaxDelay:         durationOf(KeyLiveMaxDelay),
			HandshakeTimeout: durationOf(KeyLiveHandshakeTimeout),
		},
		Store: StoreConfig{
			Type: strings.ToLower(viper.GetString(KeyStoreType)),
			DSN:  viper.GetString(KeyStoreDSN),
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool(KeyMetricsEnabled),
			Port:    viper.GetInt(KeyMetricsPort),
		},
		Serve: ServeConfig{
			Port: viper.GetInt(KeyServePort),
			Tick: durationOf(KeyServeTick),
			Seed: viper.GetBool(KeyServeSeed),
		},
		LogFile: viper.GetString(KeyLogFile),
		Verbose: viper.GetBool(KeyVerbose),
	}
}
