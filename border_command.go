package main

import (
	"io"

	"github.com/astei/anvilscan/border"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

var dimensionFlag = &cli.StringFlag{
	Name:    "dimension",
	Usage:   "region folder to use, `overworld`, nether or end (default the first one found)",
	EnvVars: envVar("DIMENSION"),
}

var borderCommand = &cli.Command{
	Name:  "border",
	Usage: "guesses or applies a world border",
	Subcommands: []*cli.Command{
		{
			Name:      "guess",
			Usage:     "finds the extent of the chunks holding anything but air",
			ArgsUsage: "WORLD",
			Flags:     []cli.Flag{dimensionFlag},
			Action: func(c *cli.Context) error {
				world, err := worldArg(c)
				if err != nil {
					return err
				}
				extent, err := border.Guess(world, c.String("dimension"))
				if err != nil {
					return exitError(err)
				}
				return printExtent(c.App.Writer, extent)
			},
		},
		{
			Name:      "cut",
			Usage:     "deletes and trims region files outside the border in level.dat",
			ArgsUsage: "WORLD",
			Flags: []cli.Flag{
				dimensionFlag,
				&cli.IntFlag{Name: "padding", Usage: "keep `N` extra chunks around the border", EnvVars: envVar("PADDING")},
				&cli.BoolFlag{Name: "simulate", Usage: "report what would change without writing", EnvVars: envVar("SIMULATE")},
			},
			Action: func(c *cli.Context) error {
				world, err := worldArg(c)
				if err != nil {
					return err
				}
				report, err := border.Cut(world, border.CutOptions{
					Padding:   c.Int("padding"),
					Simulate:  c.Bool("simulate"),
					Dimension: c.String("dimension"),
				})
				if err != nil {
					return err
				}
				pterm.Info.Printfln("Kept %d regions, trimmed %d, deleted %d",
					report.Kept, report.Trimmed, len(report.Deleted))
				return nil
			},
		},
	},
}

func printExtent(w io.Writer, e border.Extent) error {
	west, east, north, south := e.Blocks()
	centerX, centerZ := e.Center()
	sizeX, sizeZ := e.Size()
	pterm.Info.Printfln("%d occupied and %d vacant chunks", e.Occupied, e.Vacant)
	return pterm.DefaultTable.WithWriter(w).WithData(pterm.TableData{
		{"West", pterm.Sprint(west), "chunk " + e.Westmost.String()},
		{"East", pterm.Sprint(east), "chunk " + e.Eastmost.String()},
		{"North", pterm.Sprint(north), "chunk " + e.Northmost.String()},
		{"South", pterm.Sprint(south), "chunk " + e.Southmost.String()},
		{"Center", pterm.Sprintf("%d %d", centerX, centerZ), ""},
		{"Size", pterm.Sprintf("%d %d", sizeX, sizeZ), ""},
	}).Render()
}
