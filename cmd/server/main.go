// mapgen-server serves the map gallery over SSH and streams new maps to
// websocket clients. Build:
//
//	go build -o mapgen-server ./cmd/server
//
// Usage:
//
//	./mapgen-server [--ssh :2222] [--http :8080] [--key mapgen_host_key]
//
// Browse from any terminal:
//
//	ssh -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"

	"bsp-mapgen/internal/app"
	"bsp-mapgen/internal/atlas"
	"bsp-mapgen/internal/config"
	"bsp-mapgen/internal/gallery"
	internalssh "bsp-mapgen/internal/ssh"
	"bsp-mapgen/internal/telemetry"
	"bsp-mapgen/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("error: %v", err)
	}
	flag.StringVar(&cfg.SSHAddr, "ssh", cfg.SSHAddr, "SSH listen address")
	flag.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP listen address (empty disables)")
	flag.StringVar(&cfg.HostKey, "key", cfg.HostKey, "Path to the PEM-encoded host key (auto-generated if absent)")
	flag.StringVar(&cfg.Archive, "archive", cfg.Archive, "archive backend: memory, jsonl or sqlite")
	flag.StringVar(&cfg.ArchivePath, "archive-path", cfg.ArchivePath, "archive file (default in the XDG data dir)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := app.NewLogger(os.Stderr, cfg.LogLevel)
	shutdown, err := telemetry.Setup(ctx, "mapgen-server", cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer shutdown(context.Background())

	store, closeStore, err := app.OpenStore(cfg, logger)
	if err != nil {
		log.Fatalf("archive: %v", err)
	}
	defer closeStore()

	svc := atlas.New(store, app.Defaults(cfg), atlas.WithLogger(logger))
	hub := ws.NewHub(logger)
	events, unsubscribe := svc.Subscribe(64)
	defer unsubscribe()
	go pump(ctx, events, hub, logger)

	signer, err := loadOrCreateHostKey(cfg.HostKey, logger)
	if err != nil {
		log.Fatalf("host key: %v", err)
	}

	sshSrv := &gossh.Server{
		Addr: cfg.SSHAddr,
		Handler: func(s gossh.Session) {
			handleSession(s, svc, cfg.Theme, logger)
		},
		// Accept PTY requests from any client.
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// No authentication: the gallery is read-mostly and meant for a
		// private network. Add gossh.PublicKeyAuth for real deployments.
		HostSigners: []gossh.Signer{signer},
	}

	var httpSrv *http.Server
	if cfg.HTTPAddr != "" {
		httpSrv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           newHandler(svc, hub, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("http listening", "addr", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server stopped", "err", err)
				stop()
			}
		}()
	}

	go func() {
		<-ctx.Done()
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if httpSrv != nil {
			_ = httpSrv.Shutdown(closeCtx)
		}
		_ = sshSrv.Shutdown(closeCtx)
	}()

	log.Printf("mapgen SSH server listening on %s", cfg.SSHAddr)
	log.Printf("Connect with:  ssh -p <port> -o StrictHostKeyChecking=no localhost")
	if err := sshSrv.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
		log.Fatal(err)
	}
}

// handleSession runs one gallery viewer for the lifetime of an SSH session.
func handleSession(s gossh.Session, svc *atlas.Service, theme string, logger *slog.Logger) {
	screen, err := internalssh.OpenScreen(s)
	if errors.Is(err, internalssh.ErrNoPTY) {
		fmt.Fprintln(s, "The gallery needs a PTY. Connect with: ssh -t -p <port> <host>")
		return
	}
	if err != nil {
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}
	defer screen.Fini()

	v := gallery.New(screen, svc, theme, logger)
	v.Name = s.User()
	logger.Info("viewer connected", "user", v.Name, "remote", s.RemoteAddr().String())
	if err := v.Run(s.Context()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("viewer stopped", "user", v.Name, "err", err)
	}
	logger.Info("viewer disconnected", "user", v.Name)
}

// ─── host key ───────────────────────────────────────────────────────────────

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string, logger *slog.Logger) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			logger.Info("loaded host key", "path", path)
			return signer, nil
		}
	}

	logger.Info("generating ed25519 host key", "path", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	pemBlock, err := xssh.MarshalPrivateKey(key, "mapgen server")
	if err != nil {
		return nil, fmt.Errorf("marshal host key: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(pemBlock), 0o600); err != nil {
		// Non-fatal: the key still works for this run.
		logger.Warn("could not persist host key", "path", path, "err", err)
	}
	return signer, nil
}
