package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	allowOrigin  string
	databaseURL  string
	logLevel     string
	maxRolls     int
	port         int
	publicURL    string
	restore      bool
	saveInterval time.Duration
	strictTurns  bool
	tlsCert      string
	tlsKey       string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxRolls < 0 {
		return fmt.Errorf("invalid max rolls (must be 0 or more): %d", c.maxRolls)
	}
	if c.saveInterval <= 0 {
		return fmt.Errorf("invalid save interval (must be positive): %s", c.saveInterval)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("YAHTZEE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "yahtzee",
		Short:         "Hosts a shared multiplayer Yahtzee session over websockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       version.Get(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.allowOrigin, "allow-origin", "*", "origin allowed to call the API and open websockets (env: YAHTZEE_ALLOW_ORIGIN)")
	fs.StringVar(&cfg.databaseURL, "database-url", "sqlite://yahtzee.db", "sqlite://, postgresql:// or memory:// database URL (env: YAHTZEE_DATABASE_URL)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: error, warn, info, debug or trace (env: YAHTZEE_LOG_LEVEL)")
	fs.IntVar(&cfg.maxRolls, "max-rolls", 0, "maximum dice rolls per turn, 0 for unlimited (env: YAHTZEE_MAX_ROLLS)")
	fs.IntVarP(&cfg.port, "port", "p", 9090, "port to listen on (env: YAHTZEE_PORT)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "URL encoded in the join QR code (env: YAHTZEE_PUBLIC_URL)")
	fs.BoolVar(&cfg.restore, "restore", false, "resume the last saved session on startup (env: YAHTZEE_RESTORE)")
	fs.DurationVar(&cfg.saveInterval, "save-interval", 10*time.Second, "how often the session is saved (env: YAHTZEE_SAVE_INTERVAL)")
	fs.BoolVar(&cfg.strictTurns, "strict-turns", false, "only accept end_turn from the active player (env: YAHTZEE_STRICT_TURNS)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: YAHTZEE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: YAHTZEE_TLS_KEY)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("yahtzee {{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
