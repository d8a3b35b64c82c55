// mapgen prints one generated map, or inspects the map archive.
//
//	mapgen [--seed 42] [--width 60 --height 30] [--save]
//	mapgen --count | --list | --get N | --clear
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"bsp-mapgen/internal/app"
	"bsp-mapgen/internal/archive"
	"bsp-mapgen/internal/atlas"
	"bsp-mapgen/internal/config"
	"bsp-mapgen/internal/generate"
	"bsp-mapgen/internal/render"
	"bsp-mapgen/internal/seed"
)

type options struct {
	seed    uint64
	hasSeed bool
	save    bool
	count   bool
	list    bool
	get     int
	clear   bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("error: %v", err)
	}
	var opts options
	flag.Uint64Var(&opts.seed, "seed", 0, "seed (random when omitted)")
	flag.IntVar(&cfg.Width, "width", cfg.Width, fmt.Sprintf("map width (at most %d)", generate.MaxMapSize))
	flag.IntVar(&cfg.Height, "height", cfg.Height, fmt.Sprintf("map height (at most %d)", generate.MaxMapSize))
	flag.IntVar(&cfg.MinRoomW, "min-w", cfg.MinRoomW, "minimum room width")
	flag.IntVar(&cfg.MinRoomH, "min-h", cfg.MinRoomH, "minimum room height")
	flag.IntVar(&cfg.MaxRoomW, "max-w", cfg.MaxRoomW, "maximum room width")
	flag.IntVar(&cfg.MaxRoomH, "max-h", cfg.MaxRoomH, "maximum room height")
	flag.StringVar(&cfg.Archive, "archive", cfg.Archive, "archive backend: memory, jsonl or sqlite")
	flag.StringVar(&cfg.ArchivePath, "archive-path", cfg.ArchivePath, "archive file (default in the XDG data dir)")
	flag.BoolVar(&opts.save, "save", false, "append the generated map to the archive")
	flag.BoolVar(&opts.count, "count", false, "print the number of archived maps")
	flag.BoolVar(&opts.list, "list", false, "list archived maps")
	flag.IntVar(&opts.get, "get", -1, "print the archived map at this index")
	flag.BoolVar(&opts.clear, "clear", false, "delete every archived map")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.hasSeed = true
		}
	})

	if err := run(context.Background(), cfg, opts, os.Stdout); err != nil {
		config.Exitf("error: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer) error {
	if opts.seed > 1<<32-1 {
		return fmt.Errorf("seed %d does not fit in 32 bits", opts.seed)
	}
	if cfg.Width > generate.MaxMapSize || cfg.Height > generate.MaxMapSize {
		return fmt.Errorf("map size %dx%d exceeds %dx%d: %w", cfg.Width, cfg.Height, generate.MaxMapSize, generate.MaxMapSize, generate.ErrInvalidConfig)
	}
	if !opts.save && !opts.count && !opts.list && !opts.clear && opts.get < 0 {
		return printFresh(cfg, opts, out)
	}

	logger := app.NewLogger(os.Stderr, cfg.LogLevel)
	store, closeStore, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	svc := atlas.New(store, app.Defaults(cfg), atlas.WithLogger(logger))

	switch {
	case opts.clear:
		return svc.Clear(ctx)
	case opts.count:
		n, err := svc.Count(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, n)
		return err
	case opts.list:
		return printList(ctx, svc, out)
	case opts.get >= 0:
		rec, err := svc.Get(ctx, opts.get)
		if errors.Is(err, archive.ErrNotFound) {
			return fmt.Errorf("no map at index %d", opts.get)
		}
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, rec.Map)
		return err
	}

	p := app.Defaults(cfg)
	if opts.hasSeed {
		p = p.WithSeed(uint32(opts.seed))
	}
	res, err := svc.Generate(ctx, p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "# map %d seed %d\n%s", res.Record.Index, res.Record.Seed, res.Record.Map)
	return err
}

// printFresh generates without touching the archive.
func printFresh(cfg config.Config, opts options, out io.Writer) error {
	s := uint32(opts.seed)
	if !opts.hasSeed {
		var err error
		if s, err = seed.New(); err != nil {
			return err
		}
	}
	m, err := generate.Generate(cfg.Generation(s))
	if err != nil {
		return err
	}
	if !opts.hasSeed {
		fmt.Fprintf(os.Stderr, "seed %d\n", s)
	}
	_, err = io.WriteString(out, render.Text(m))
	return err
}

func printList(ctx context.Context, svc *atlas.Service, out io.Writer) error {
	recs, err := svc.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tSEED\tSIZE\tROOMS\tCREATED")
	for _, rec := range recs {
		fmt.Fprintf(tw, "%d\t%d\t%v\t%d\t%s\n", rec.Index, rec.Seed, rec.Size, rec.Rooms, rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
