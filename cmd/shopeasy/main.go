// Command shopeasy is a terminal storefront over the shopeasy core: browse
// the catalog, manage a persisted cart and sign in.
//
// Usage:
//
//	shopeasy [global options] <command> [command options] [args]
//
// Commands:
//
//	products    list products (--category, --search, --pages)
//	product     show one product and related items
//	categories  list categories
//	cart        list | add <id> | update <key> <delta> | remove <key> | clear
//	signin      sign in (--email, --password)
//	signup      create an account (--email, --password, --first, --last)
//	signout     end the current session
//	reset       send password reset instructions (--email)
//	whoami      show the signed-in user
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/itsneelabh/shopeasy"
	"github.com/itsneelabh/shopeasy/pkg/memory"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code: 0 on success,
// 1 when the command failed and 2 on usage errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr}
	err := a.application().RunContext(ctx, append([]string{"shopeasy"}, args...))
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %s\n", shopeasy.UserMessage(err))
		return 1
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "JSON or YAML config file", EnvVars: []string{"SHOPEASY_CONFIG_FILE"}},
		&cli.StringFlag{Name: "storage", Usage: "storage provider: inmemory, sqlite, redis, postgres"},
		&cli.StringFlag{Name: "dsn", Usage: "storage DSN or Redis URL"},
		&cli.BoolFlag{Name: "refresh", Usage: "bypass fresh cache entries"},
		&cli.BoolFlag{Name: "sample", Usage: "fall back to the built-in sample catalog when offline"},
		&cli.StringFlag{Name: "currency", Usage: "display currency, e.g. INR"},
		&cli.StringFlag{Name: "locale", Usage: "display locale, e.g. en-IN"},
		&cli.Float64Flag{Name: "rate", Usage: "exchange rate from catalog prices to the display currency"},
		&cli.IntFlag{Name: "digits", Value: -1, Usage: "fraction digits shown in prices"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.BoolFlag{Name: "trace", Usage: "print trace spans to stderr"},
	}
}

// options turns global flags into config options. The CLI keeps its cart in
// a local SQLite file unless another backend is configured.
func options(c *cli.Context, cfg *shopeasy.Config) []shopeasy.Option {
	var opts []shopeasy.Option
	if path := c.String("config"); path != "" {
		opts = append(opts, shopeasy.WithConfigFile(path))
	}
	switch {
	case c.String("storage") != "":
		opts = append(opts, shopeasy.WithStorage(memory.Provider(c.String("storage")), c.String("dsn")))
	case cfg.Storage.Provider == memory.ProviderInMemory:
		opts = append(opts, shopeasy.WithStorage(memory.ProviderSQLite, defaultDatabasePath()))
	}
	if c.Bool("sample") {
		opts = append(opts, shopeasy.WithSampleFallback(true))
	}
	if c.IsSet("currency") || c.IsSet("locale") || c.IsSet("rate") || c.IsSet("digits") {
		d := cfg.Display
		if v := c.String("currency"); v != "" {
			d.Currency = v
		}
		if v := c.String("locale"); v != "" {
			d.Locale = v
		}
		if v := c.Float64("rate"); v > 0 {
			d.ExchangeRate = v
		}
		if v := c.Int("digits"); v >= 0 {
			d.FractionDigits = v
		}
		opts = append(opts, shopeasy.WithDisplayCurrency(d.Currency, d.Locale, d.ExchangeRate, d.FractionDigits))
	}
	switch {
	case c.String("log-level") != "":
		opts = append(opts, shopeasy.WithLogLevel(c.String("log-level")))
	case cfg.Logging.Level == "info":
		opts = append(opts, shopeasy.WithLogLevel("warn"))
	}
	if c.Bool("trace") {
		opts = append(opts, shopeasy.WithTelemetry(telemetry.ExporterStdout, ""))
	}
	return opts
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "shopeasy")
	_ = os.MkdirAll(dir, 0o700)
	return filepath.Join(dir, "shopeasy.db")
}

// openStorefront builds the storefront from env, config files and flags.
func openStorefront(c *cli.Context, stderr io.Writer) (*shopeasy.Storefront, error) {
	// env and files first so the storage default can see them; NewConfig
	// reports any error they hold
	probe := shopeasy.DefaultConfig()
	_ = shopeasy.LoadDotEnv()
	_ = probe.LoadFromEnv()
	if path := c.String("config"); path != "" {
		_ = probe.LoadFromFile(path)
	}

	cfg, err := shopeasy.NewConfig(options(c, probe)...)
	if err != nil {
		return nil, err
	}

	var deps []shopeasy.Dependency
	if c.Bool("trace") {
		deps = append(deps, shopeasy.WithTelemetryOptions(telemetry.WithTraceWriter(stderr)))
	}
	return shopeasy.New(c.Context, cfg, deps...)
}
