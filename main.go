// bsp-mapgen opens the map gallery in the local terminal.
//
//	go run . [--width 60] [--height 30] [--theme codes] [--archive jsonl]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"bsp-mapgen/internal/app"
	"bsp-mapgen/internal/archive"
	"bsp-mapgen/internal/atlas"
	"bsp-mapgen/internal/config"
	"bsp-mapgen/internal/gallery"
	"bsp-mapgen/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("error: %v", err)
	}
	flag.IntVar(&cfg.Width, "width", cfg.Width, "map width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "map height")
	flag.StringVar(&cfg.Theme, "theme", cfg.Theme, "glyph theme")
	flag.StringVar(&cfg.Archive, "archive", cfg.Archive, "archive backend: memory, jsonl or sqlite")
	flag.StringVar(&cfg.ArchivePath, "archive-path", cfg.ArchivePath, "archive file (default in the XDG data dir)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The screen owns the terminal, so logs go to a file next to the archive.
	logOut := openLogFile()
	defer logOut.Close()
	logger := app.NewLogger(logOut, cfg.LogLevel)

	shutdown, err := telemetry.Setup(ctx, "bsp-mapgen", cfg.OTelEndpoint)
	if err != nil {
		config.Exitf("error: telemetry: %v", err)
	}
	defer shutdown(context.Background())

	store, closeStore, err := app.OpenStore(cfg, logger)
	if err != nil {
		config.Exitf("error: %v", err)
	}
	defer closeStore()

	svc := atlas.New(store, app.Defaults(cfg), atlas.WithLogger(logger))

	screen, err := tcell.NewScreen()
	if err != nil {
		config.Exitf("error: create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		config.Exitf("error: init screen: %v", err)
	}
	v := gallery.New(screen, svc, cfg.Theme, logger)
	err = v.Run(ctx)
	screen.Fini()
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func openLogFile() io.WriteCloser {
	dir, err := archive.DefaultDir()
	if err == nil {
		err = os.MkdirAll(dir, 0o755)
	}
	if err == nil {
		f, ferr := os.OpenFile(filepath.Join(dir, "gallery.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if ferr == nil {
			return f
		}
	}
	return nopCloser{io.Discard}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
