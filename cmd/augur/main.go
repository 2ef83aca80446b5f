// Augur forecasts a ds,y time series uploaded as CSV.
//
// Usage:
//
//	augur serve [--config augur.yaml]
//	augur forecast --input history.csv --period 90 --output augur.csv
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/augur-forecast/augur/internal/config"
	"github.com/augur-forecast/augur/internal/logging"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "augur",
		Usage:   "Forecast a daily time series from a ds,y CSV",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"AUGUR_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error), overrides the configuration",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (json, text), overrides the configuration",
			},
		},
		Before: func(c *cli.Context) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("unable to load .env, %w", err)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			forecastCommand(),
		},
	}
}

// setup loads the configuration and builds the logger honoring the global flags
func setup(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Logging.Format = c.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.New(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
