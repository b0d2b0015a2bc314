package main

import (
	"errors"
	"io"
	"os"

	"github.com/astei/anvilscan/border"
	"github.com/astei/anvilscan/structure"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

// exitNothingFound is the status of a run that completed but found nothing.
const exitNothingFound = 2

func envVar(name string) []string {
	return []string{"ANVILSCAN_" + name}
}

// exitError maps the "nothing found" outcomes to their own exit status.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, structure.ErrNoRegionFiles) ||
		errors.Is(err, structure.ErrNoStructures) ||
		errors.Is(err, border.ErrNoOccupiedChunks) {
		pterm.Warning.Println(err)
		return cli.Exit("", exitNothingFound)
	}
	return err
}

// diagnostics points pterm's message printers at w so they never mix with results on
// stdout. Quiet drops everything but errors.
func diagnostics(w io.Writer, debug, quiet bool) {
	pterm.Error = *pterm.Error.WithWriter(w)
	if quiet {
		w = io.Discard
	}
	pterm.Info = *pterm.Info.WithWriter(w)
	pterm.Warning = *pterm.Warning.WithWriter(w)
	pterm.Debug = *pterm.Debug.WithWriter(w)
	if debug {
		pterm.EnableDebugMessages()
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "anvilscan",
		Usage: "inspects, indexes and trims Anvil region worlds",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "print per-chunk diagnostics",
				EnvVars: envVar("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "suppress diagnostics other than errors",
				EnvVars: envVar("QUIET"),
			},
		},
		Before: func(c *cli.Context) error {
			diagnostics(c.App.ErrWriter, c.Bool("debug"), c.Bool("quiet"))
			return nil
		},
		Commands: []*cli.Command{
			dumpCommand,
			structuresCommand,
			borderCommand,
			inspectCommand,
		},
	}
}

func main() {
	diagnostics(os.Stderr, false, false)
	if err := newApp().Run(os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
