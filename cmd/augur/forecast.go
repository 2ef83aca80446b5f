package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/present"
	"github.com/augur-forecast/augur/internal/session"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
)

func forecastCommand() *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Forecast a CSV file and write the results",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to a CSV with ds and y columns",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   "Number of days to forecast, defaults to the configured horizon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   present.CSVFileName,
				Usage:   "Path of the forecast CSV",
			},
			&cli.StringFlag{
				Name:  "chart",
				Usage: "Optional path of an HTML chart",
			},
			&cli.StringFlag{
				Name:  "xlsx",
				Usage: "Optional path of an XLSX workbook",
			},
			&cli.StringFlag{
				Name:  "fit-chart",
				Usage: "Optional path of an HTML page with the fit components and residual",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Optional path of the fitted model as JSON",
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Print the fitted model coefficients",
			},
		},
		Action: runForecast,
	}
}

func runForecast(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.String("input"))
	if err != nil {
		return fmt.Errorf("unable to read input, %w", err)
	}

	sess := session.New(engine.NewAdditive(cfg.Forecast, logger),
		session.WithLogger(logger),
		session.WithHorizon(cfg.Forecast.DefaultHorizon),
	)
	sess.SelectFile(session.Upload{Name: c.String("input"), Data: data})
	if c.IsSet("period") {
		sess.SetHorizon(c.Int("period"))
	}

	v, err := sess.Start(c.Context)
	if err != nil {
		return err
	}
	p := v.Presentation

	if err := os.WriteFile(c.String("output"), p.CSV, 0o644); err != nil {
		return fmt.Errorf("unable to write csv, %w", err)
	}
	if path := c.String("chart"); path != "" {
		if err := os.WriteFile(path, p.Chart, 0o644); err != nil {
			return fmt.Errorf("unable to write chart, %w", err)
		}
	}
	if path := c.String("xlsx"); path != "" {
		var buf bytes.Buffer
		if err := present.WriteXLSX(&buf, p.Result); err != nil {
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("unable to write xlsx, %w", err)
		}
	}

	if path := c.String("fit-chart"); path != "" {
		var buf bytes.Buffer
		if err := p.Result.WriteFitChart(&buf); err != nil {
			return fmt.Errorf("unable to render fit chart, %w", err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("unable to write fit chart, %w", err)
		}
	}
	if path := c.String("model"); path != "" {
		if err := writeModel(path, p.Result); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.App.Writer, "%d rows (%d historical, %d forecast) written to %s\n",
		p.Result.Len(), len(p.Result.History()), p.Result.Horizon(), c.String("output"))
	if eq := p.Result.Equation(); eq != "" {
		fmt.Fprintln(c.App.Writer, eq)
	}
	if c.Bool("summary") {
		if m, ok := p.Result.Model(); ok {
			if err := m.TablePrint(c.App.Writer); err != nil {
				return fmt.Errorf("unable to print model summary, %w", err)
			}
		}
	}
	return nil
}

func writeModel(path string, result *engine.ForecastResult) error {
	m, ok := result.Model()
	if !ok {
		return errors.New("no fitted model available")
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal model, %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("unable to write model, %w", err)
	}
	return nil
}
