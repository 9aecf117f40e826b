package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"
	"gopkg.in/yaml.v2"
)

const (
	flagHome       = "home"
	flagChainID    = "chain-id"
	flagLogLevel   = "log-level"
	flagOutput     = "output"
	flagListenAddr = "listen-addr"
	flagDBBackend  = "db-backend"
	flagBlockTime  = "block-time"

	// EnvPrefix prefixes the environment variables overriding the configuration.
	EnvPrefix = "WLC"

	configName = "wasm-light-client"
	configFile = configName + ".yaml"
	dataDir    = "data"

	OutputJSON = "json"
	OutputYAML = "yaml"
)

// DefaultHome is the default home directory of the host.
var DefaultHome = os.ExpandEnv("$HOME/.wasm-light-client")

// Config is the configuration of the host simulator.
type Config struct {
	Home       string `json:"home" yaml:"home"`
	ChainID    string `json:"chain_id" yaml:"chain-id"`
	LogLevel   string `json:"log_level" yaml:"log-level"`
	Output     string `json:"output" yaml:"output"`
	ListenAddr string `json:"listen_addr" yaml:"listen-addr"`
	DBBackend  string `json:"db_backend" yaml:"db-backend"`
}

// DefaultConfig returns the configuration used when neither a config file, an
// environment variable nor a flag sets a value.
func DefaultConfig() Config {
	return Config{
		Home:       DefaultHome,
		ChainID:    "wasm-host-0",
		LogLevel:   "info",
		Output:     OutputJSON,
		ListenAddr: "127.0.0.1:26680",
		DBBackend:  string(dbm.GoLevelDBBackend),
	}
}

// ReadConfig reads the configuration resolved by viper.
func ReadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Home:       cast.ToString(v.Get(flagHome)),
		ChainID:    cast.ToString(v.Get(flagChainID)),
		LogLevel:   cast.ToString(v.Get(flagLogLevel)),
		Output:     strings.ToLower(cast.ToString(v.Get(flagOutput))),
		ListenAddr: cast.ToString(v.Get(flagListenAddr)),
		DBBackend:  cast.ToString(v.Get(flagDBBackend)),
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration values.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Home) == "" {
		return errors.New("home directory cannot be empty")
	}
	if strings.TrimSpace(cfg.ChainID) == "" {
		return errors.New("chain-id cannot be empty")
	}
	if _, err := log.AllowLevel(cfg.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log-level")
	}

	switch cfg.Output {
	case OutputJSON, OutputYAML:
	default:
		return errors.Errorf("invalid output format %q, expected %s or %s", cfg.Output, OutputJSON, OutputYAML)
	}

	switch dbm.BackendType(cfg.DBBackend) {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend:
	default:
		return errors.Errorf("unsupported db-backend %q", cfg.DBBackend)
	}

	return nil
}

// DataDir returns the directory holding the host database.
func (cfg Config) DataDir() string {
	return filepath.Join(cfg.Home, dataDir)
}

// ConfigFilePath returns the path of the config file in the home directory.
func (cfg Config) ConfigFilePath() string {
	return filepath.Join(cfg.Home, configFile)
}

// WriteConfigFile writes the configuration to its file in the home directory.
func WriteConfigFile(cfg Config) error {
	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		return errors.Wrap(err, "failed to create home directory")
	}

	bz, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	return errors.Wrap(os.WriteFile(cfg.ConfigFilePath(), bz, 0o600), "failed to write config file")
}

// loadConfigFile merges the config file of the home directory, if any, and
// the WLC_ environment into v.
func loadConfigFile(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cast.ToString(v.Get(flagHome)))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "failed to read config file")
		}
	}

	return nil
}

// newLogger returns the logger of the host writing to w at the configured level.
func newLogger(cfg Config, w io.Writer) (log.Logger, error) {
	option, err := log.AllowLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(w)), option), nil
}
