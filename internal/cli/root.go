// Package cli implements the dstu4145 command line tool.
package cli

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	dstu4145 "github.com/rafaelescrich/go-dstu4145"
	"github.com/rafaelescrich/go-dstu4145/group"
	"github.com/rafaelescrich/go-dstu4145/internal/keystore"
)

const (
	envPrefix  = "DSTU4145"
	configName = "dstu4145"
)

// Config holds the settings shared by every command. Values come from
// flags, DSTU4145_* environment variables and dstu4145.yaml, in that
// order of precedence.
type Config struct {
	Curve     string `mapstructure:"curve"`
	Format    string `mapstructure:"format"`
	Hash      string `mapstructure:"hash"`
	KDF       string `mapstructure:"kdf"`
	KeyStore  string `mapstructure:"keystore"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
}

var configKeys = []string{"curve", "format", "hash", "kdf", "keystore", "log-level", "log-format"}

type app struct {
	v      *viper.Viper
	cfg    Config
	logger *zap.Logger
	ctx    *dstu4145.Context
}

// NewCommand returns the root command.
func NewCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "dstu4145",
		Short:         "DSTU 4145-2002 keys, signatures and key agreement",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./dstu4145.yaml)")
	flags.String("curve", group.DSTU_PB_257, "curve identifier")
	flags.String("format", "short-le", "signature format: short, raw, short-le, raw-le")
	flags.String("hash", "sha3-256", "message hash: "+strings.Join(hashNames(), ", "))
	flags.String("kdf", "sha3-256", "key derivation hash: "+strings.Join(hashNames(), ", "))
	flags.String("keystore", "", "key store directory")
	flags.String("log-level", "warn", "log level")
	flags.String("log-format", "console", "log format: console, json, logfmt")
	a.bindFlags(flags)

	root.AddCommand(
		a.curvesCmd(),
		a.keygenCmd(),
		a.pubCmd(),
		a.keysCmd(),
		a.signCmd(),
		a.verifyCmd(),
		a.agreeCmd(),
	)
	return root
}

func (a *app) bindFlags(flags *pflag.FlagSet) {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	for _, key := range configKeys {
		// Lookup never returns nil for flags defined above.
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}
}

func (a *app) init(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName(configName)
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "reading config")
		}
	}
	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return errors.Wrap(err, "decoding config")
	}

	logger, err := newLogger(a.cfg.LogLevel, a.cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger
	a.ctx = dstu4145.NewContext(dstu4145.WithLogger(logger))
	a.logger.Debug("configuration loaded",
		zap.String("file", a.v.ConfigFileUsed()),
		zap.String("curve", a.cfg.Curve))
	return nil
}

func (a *app) curve() (*group.Curve, error) {
	return a.ctx.Curve(a.cfg.Curve)
}

// withStore opens the configured key store for the duration of fn.
func (a *app) withStore(fn func(*keystore.Store) error) error {
	if a.cfg.KeyStore == "" {
		return errors.New("no key store configured; set --keystore")
	}
	store, err := keystore.Open(a.cfg.KeyStore, a.logger)
	if err != nil {
		return err
	}
	if err := fn(store); err != nil {
		store.Close()
		return err
	}
	return store.Close()
}
