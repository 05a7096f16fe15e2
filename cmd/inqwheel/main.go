// Command inqwheel encodes and decodes INQ wheel-cipher messages, manages a
// keybook of shared keys and serves the codec as a JSON API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Hadidomena/inqwheel/config"
	"github.com/Hadidomena/inqwheel/cryptography"
	"github.com/Hadidomena/inqwheel/handlers"
	"github.com/Hadidomena/inqwheel/keybook"
	"github.com/Hadidomena/inqwheel/logging"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev" // set by the linker

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state one command invocation shares between subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger

	// openStore returns the keybook and a function releasing it. Tests replace it.
	openStore func(ctx context.Context, cfg *config.Config) (handlers.KeyStore, func(), error)
}

// newRootCmd builds a fresh command tree with its own viper instance, so tests
// can run commands in isolation.
func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), openStore: openKeybook}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inqwheel",
		Short:         "Keyed wheel cipher for INQ-style code messages",
		SilenceUsage:  true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.inqwheel.yaml or ./.inqwheel.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("db-dsn", "", "PostgreSQL DSN of the keybook")
	a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	a.v.BindPFlag("database.dsn", flags.Lookup("db-dsn"))

	cmd.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newWheelsCmd(a),
		newKeygenCmd(a),
		newTokenCmd(a),
		newKeysCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}, stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func openKeybook(ctx context.Context, cfg *config.Config) (handlers.KeyStore, func(), error) {
	if cfg.Database.DSN == "" {
		return nil, nil, fmt.Errorf("no keybook configured: set database.dsn or --db-dsn")
	}
	db, err := keybook.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	var opts []keybook.StoreOption
	if cfg.Database.SealSecret != "" {
		sealKey, err := cryptography.StorageKey(cfg.Database.SealSecret)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		opts = append(opts, keybook.WithSealKey(sealKey))
	}
	store := keybook.NewStore(db, opts...)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}

// readMessage joins the arguments, or reads stdin when there are none or the
// only argument is "-".
func readMessage(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	return string(data), nil
}
