package main

import (
	"fmt"
	"strings"

	"github.com/astei/anvilscan/dump"
	"github.com/astei/anvilscan/nbt"
	"github.com/urfave/cli/v2"
)

var dumpCommand = &cli.Command{
	Name:      "dump",
	Usage:     "prints tag files, .dat files and region chunks as JSON",
	ArgsUsage: "[FILE...]",
	Description: "*.dat files are read as gzip-compressed tag files and *.mca files as regions.\n" +
		"Without files a single tag tree is read from standard input.",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "chunk", Aliases: []string{"c"}, Usage: "only the chunk at local `X,Z` of region files", EnvVars: envVar("CHUNK")},
		&cli.BoolFlag{Name: "beauty", Aliases: []string{"b"}, Usage: "pretty print", EnvVars: envVar("BEAUTY")},
		&cli.BoolFlag{Name: "gzip", Aliases: []string{"z"}, Usage: "gzip decompress every tag file"},
		&cli.BoolFlag{Name: "nogzip", Aliases: []string{"Z"}, Usage: "never gzip decompress"},
		&cli.BoolFlag{Name: "lendian", Aliases: []string{"l"}, Usage: "read little endian tag files", EnvVars: envVar("LENDIAN")},
		&cli.StringSliceFlag{Name: "get", Aliases: []string{"g"}, Usage: "print the value at `PATH` (repeatable)"},
		&cli.StringSliceFlag{Name: "eq", Aliases: []string{"e"}, Usage: "only print if the value at PATH equals the JSON VALUE (`PATH=VALUE`)"},
		&cli.StringSliceFlag{Name: "neq", Aliases: []string{"n"}, Usage: "only print if the value at PATH differs from the JSON VALUE (`PATH=VALUE`)"},
		&cli.BoolFlag{Name: "skipempty", Aliases: []string{"s"}, Usage: "skip null, empty objects and empty lists", EnvVars: envVar("SKIPEMPTY")},
		&cli.BoolFlag{Name: "printchunkcoords", Aliases: []string{"p"}, Usage: "prefix region chunks with their local coordinates"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write each file's output to `DIR`", EnvVars: envVar("OUTPUT")},
	},
	Action: func(c *cli.Context) error {
		d := &dump.Dumper{
			Printer: dump.Printer{
				Gets:      c.StringSlice("get"),
				SkipEmpty: c.Bool("skipempty"),
				Pretty:    c.Bool("beauty"),
			},
			LittleEndian: c.Bool("lendian"),
			ChunkCoords:  c.Bool("printchunkcoords"),
			OutputDir:    c.String("output"),
		}

		switch {
		case c.Bool("gzip") && c.Bool("nogzip"):
			return fmt.Errorf("--gzip and --nogzip are exclusive")
		case c.Bool("gzip"):
			d.Gzip = dump.GzipOn
		case c.Bool("nogzip"):
			d.Gzip = dump.GzipOff
		}

		if c.IsSet("chunk") {
			chunk, err := dump.ParseChunk(c.String("chunk"))
			if err != nil {
				return err
			}
			d.Chunk = chunk
		}

		for _, flag := range []struct {
			name       string
			comparison nbt.Comparison
		}{{"eq", nbt.Equal}, {"neq", nbt.NotEqual}} {
			for _, raw := range c.StringSlice(flag.name) {
				path, literal, ok := strings.Cut(raw, "=")
				if !ok {
					return fmt.Errorf("--%s %q: want PATH=VALUE", flag.name, raw)
				}
				condition, err := nbt.NewCondition(path, flag.comparison, literal)
				if err != nil {
					return fmt.Errorf("--%s %q: %w", flag.name, raw, err)
				}
				d.Conditions = append(d.Conditions, condition)
			}
		}

		if c.NArg() == 0 {
			return d.DumpStream(c.App.Writer, c.App.Reader, d.Gzip == dump.GzipOn)
		}
		return d.DumpFiles(c.App.Writer, c.Args().Slice())
	},
}
