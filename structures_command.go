package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/astei/anvilscan/structure"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

type structureStore interface {
	structure.Store
	structure.Index
}

var storeFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "store",
		Usage:   "index backend, `sqlite` or bolt",
		Value:   "sqlite",
		EnvVars: envVar("STORE"),
	},
	&cli.StringFlag{
		Name:    "db",
		Usage:   "index `PATH` (default structures.db or structures.bolt in the world folder)",
		EnvVars: envVar("DB"),
	},
}

func openStore(c *cli.Context, world string, truncate bool) (structureStore, error) {
	path := c.String("db")
	switch kind := c.String("store"); kind {
	case "sqlite":
		if path == "" {
			path = filepath.Join(world, "structures.db")
		}
		return structure.OpenSQLite(path, truncate)
	case "bolt":
		if path == "" {
			path = filepath.Join(world, "structures.bolt")
		}
		return structure.OpenBolt(path, truncate)
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

func worldArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("need a world to work with")
	}
	return c.Args().First(), nil
}

var structuresCommand = &cli.Command{
	Name:  "structures",
	Usage: "indexes structure starts by region cell",
	Subcommands: []*cli.Command{
		{
			Name:      "index",
			Usage:     "scans every region file of a world into the index",
			ArgsUsage: "WORLD",
			Flags: append([]cli.Flag{
				&cli.BoolFlag{Name: "truncate", Usage: "delete rows of earlier runs", EnvVars: envVar("TRUNCATE")},
				&cli.BoolFlag{Name: "biomes", Usage: "also record section biome palettes", EnvVars: envVar("BIOMES")},
			}, storeFlags...),
			Action: func(c *cli.Context) error {
				world, err := worldArg(c)
				if err != nil {
					return err
				}
				store, err := openStore(c, world, c.Bool("truncate"))
				if err != nil {
					return err
				}
				defer store.Close()

				indexer := structure.NewIndexer(store, structure.Options{Biomes: c.Bool("biomes")})
				stats, err := indexer.Index(world)
				if err == nil || errors.Is(err, structure.ErrNoStructures) {
					pterm.Info.Printfln("Done. %d region files, %d chunks, %d structures, %d references, %d biome sections",
						stats.RegionFiles, stats.Chunks, stats.Structures, stats.References, stats.Biomes)
				}
				return exitError(err)
			},
		},
		{
			Name:      "list",
			Usage:     "prints indexed structures, optionally only those in one region cell",
			ArgsUsage: "WORLD",
			Flags: append([]cli.Flag{
				&cli.StringFlag{Name: "region", Usage: "only structures overlapping region `X,Z`"},
				&cli.BoolFlag{Name: "json", Usage: "print each structure's snapshot as JSON"},
			}, storeFlags...),
			Action: func(c *cli.Context) error {
				world, err := worldArg(c)
				if err != nil {
					return err
				}
				store, err := openStore(c, world, false)
				if err != nil {
					return err
				}
				defer store.Close()
				if err = store.Commit(); err != nil {
					return err
				}

				var found []structure.Stored
				if c.IsSet("region") {
					var cell structure.Cell
					if _, err := fmt.Sscanf(c.String("region"), "%d,%d", &cell.X, &cell.Z); err != nil {
						return fmt.Errorf("invalid region %q: want x,z", c.String("region"))
					}
					found, err = store.StructuresAt(cell)
				} else {
					found, err = store.Structures()
				}
				if err != nil {
					return err
				}
				return printStructures(c.App.Writer, found, c.Bool("json"))
			},
		},
	},
}

func printStructures(w io.Writer, found []structure.Stored, asJSON bool) error {
	if asJSON {
		for _, s := range found {
			raw, err := s.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, raw)
		}
		return nil
	}
	data := pterm.TableData{{"ID", "Type", "Chunk", "Box"}}
	for _, s := range found {
		data = append(data, []string{
			strconv.FormatInt(s.ID, 10),
			s.Type,
			fmt.Sprintf("%d,%d", s.ChunkX, s.ChunkZ),
			fmt.Sprintf("%d,%d,%d .. %d,%d,%d", s.Box.MinX, s.Box.MinY, s.Box.MinZ, s.Box.MaxX, s.Box.MaxY, s.Box.MaxZ),
		})
	}
	return pterm.DefaultTable.WithWriter(w).WithHasHeader().WithData(data).Render()
}
