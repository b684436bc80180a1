package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kalbasit/quickcdc/internal/config"
	"github.com/kalbasit/quickcdc/internal/logging"
)

var logger = logging.GetLogger("quickcdc")

// app carries the configuration resolved in Before to the command actions.
type app struct {
	cfg *config.Config
}

func newApp() *cli.App {
	a := &app{}

	return &cli.App{
		Name:  "quickcdc",
		Usage: "Split files into content-defined chunks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to a YAML configuration file"},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
			&cli.BoolFlag{Name: "no-color", Usage: "Disable colored log levels"},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.splitCmd(),
			a.verifyCmd(),
			a.demoCmd(),
		},
	}
}

// before loads the configuration file and applies the global flags on top.
func (a *app) before(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}

	if c.IsSet("log-format") {
		cfg.Logging.Format = c.String("log-format")
	}

	if c.Bool("no-color") {
		cfg.Logging.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetOutput(c.App.ErrWriter)

	if err := logging.SetLevelString(cfg.Logging.Level); err != nil {
		return err
	}

	if err := logging.SetFormat(cfg.Logging.Format); err != nil {
		return err
	}

	if cfg.Logging.NoColor {
		logging.DisableColor()
	}

	logger.WithField("config", c.String("config")).Debug("configuration loaded")

	a.cfg = cfg

	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
