package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/astei/anvilscan/anvil"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

var inspectCommand = &cli.Command{
	Name:      "inspect",
	Usage:     "shows the chunk and sector layout of region files",
	ArgsUsage: "FILE...",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "grid", Usage: "print the 32x32 chunk grid"},
		&cli.BoolFlag{Name: "sectors", Usage: "print the sector map, 64 sectors per line"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return fmt.Errorf("need at least one region file")
		}
		for _, path := range c.Args().Slice() {
			reader, err := anvil.Open(path)
			if errors.Is(err, anvil.ErrEmptyRegion) {
				pterm.Warning.Printfln("%s: file is empty", path)
				continue
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			report := anvil.Inspect(reader)
			reader.Close()
			if err := printReport(c.App.Writer, path, report, c.Bool("grid"), c.Bool("sectors")); err != nil {
				return err
			}
		}
		return nil
	},
}

func printReport(w io.Writer, path string, r *anvil.Report, grid, sectors bool) error {
	pterm.DefaultSection.WithWriter(w).Println(path)
	data := pterm.TableData{
		{"Region", fmt.Sprintf("%d %d", r.X, r.Z)},
		{"Length", fmt.Sprintf("%d bytes, %d sectors, remainder %d", r.Length, r.Sectors, r.Remainder)},
		{"Chunks", fmt.Sprint(r.Chunks)},
		{"Gaps", fmt.Sprint(r.Gaps)},
		{"Overlaps", fmt.Sprint(r.Overlaps)},
		{"Out of range", fmt.Sprint(r.OutOfRange)},
	}
	if !r.Newest.IsZero() {
		data = append(data, []string{"Newest", r.Newest.UTC().Format("2006-01-02 15:04:05")})
	}
	if err := pterm.DefaultTable.WithWriter(w).WithData(data).Render(); err != nil {
		return err
	}
	if grid {
		fmt.Fprintln(w, strings.Join(r.Grid, "\n"))
	}
	if sectors {
		for i := 0; i < len(r.SectorMap); i += 64 {
			fmt.Fprintln(w, r.SectorMap[i:min(i+64, len(r.SectorMap))])
		}
	}
	return nil
}
