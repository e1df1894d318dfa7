// cmd/web/main.go
//
// Event form – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Load configuration (conf/global.yaml + EVENTFORM_ overrides).
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Resolve vault: references when present and keep the token renewed.
//
//  5. Open the audit DB when the store delivery target is enabled.
//
//  6. Build the deliverer chain, the session registry, and the CSRF signer.
//
//  7. Router: chi RequestID → RealIP → ForceHTTPS → Security → request info
//     → access log → Recoverer, then /healthz, /metrics, and every
//     registered component.
//
//  8. Run the HTTP server, the session evictor, and the vault renewer under
//     one errgroup; SIGINT or SIGTERM triggers a graceful shutdown.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/eventform/internal/component"
	"github.com/yanizio/eventform/internal/config"
	"github.com/yanizio/eventform/internal/database"
	"github.com/yanizio/eventform/internal/delivery"
	"github.com/yanizio/eventform/internal/form"
	"github.com/yanizio/eventform/internal/logger"
	"github.com/yanizio/eventform/internal/middleware"
	"github.com/yanizio/eventform/internal/requestinfo"
	"github.com/yanizio/eventform/internal/server"
	"github.com/yanizio/eventform/internal/session"
	"github.com/yanizio/eventform/internal/submission"
	"github.com/yanizio/eventform/internal/theme"
	"github.com/yanizio/eventform/internal/vault"

	_ "github.com/yanizio/eventform/components/eventform" // event form page + API
)

const (
	serverEnvPath   = "/usr/local/etc/eventform/global.env"
	shutdownTimeout = 15 * time.Second
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	if err := run(); err != nil {
		zap.S().Errorw("fatal", "err", err)
		_ = zap.L().Sync()
		log.Fatal(err)
	}
}

func run() error {
	//
	// ── 1.  Config and logger ───────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logDir := cfg.Log.Dir
	if !filepath.IsAbs(logDir) {
		logDir = filepath.Join(cfg.Paths.Root, logDir)
	}
	logOut, err := logger.New(logDir, cfg.Log.Level, cfg.Log.Tee || runningInTTY())
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	//
	// ── 2.  Secrets ─────────────────────────────────────────────────────
	//
	if cfg.NeedsSecrets() {
		vc, err := vault.New(logOut)
		if err != nil {
			return err
		}
		if cfg, err = config.ResolveSecrets(ctx, cfg, vc); err != nil {
			return fmt.Errorf("resolve secrets: %w", err)
		}
		g.Go(func() error { vc.Renew(gctx); return nil })
		logOut.Infow("secrets resolved from vault")
	}

	//
	// ── 3.  Audit DB (store target only) ────────────────────────────────
	//
	var db *sqlx.DB
	if cfg.Delivery.Has("store") {
		if db, err = database.Open(ctx, cfg.Delivery.Store.DSN); err != nil {
			return fmt.Errorf("connect audit DB: %w", err)
		}
		defer db.Close()
		logOut.Infow("audit DB online", "table", cfg.Delivery.Store.Table)
	}

	//
	// ── 4.  Domain services ─────────────────────────────────────────────
	//
	deliverer, err := delivery.FromConfig(cfg.Delivery, db, logOut)
	if err != nil {
		return err
	}

	sessions := session.NewRegistry(cfg.Session, func() *submission.Controller {
		return submission.New(deliverer,
			submission.WithDismissAfter(cfg.Notification.DismissAfter),
			submission.WithLogger(logOut),
		)
	}, logOut)

	csrf, err := form.NewCSRF(cfg.CSRF.Key)
	if err != nil {
		return err
	}

	//
	// ── 5.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS),
		middleware.Security,
		requestinfo.Enrich,
		middleware.RequestLog(logOut),
		chimw.Recoverer,
	)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	env := component.StaticEnv{
		Cfg:   cfg,
		Reg:   sessions,
		Token: csrf,
		Pal:   theme.DefaultPalette(),
		Log:   logOut,
	}
	if err := component.Mount(r, env); err != nil {
		return err
	}

	//
	// ── 6.  Run ─────────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r, cfg.Delivery.Timeout, logOut)

	g.Go(func() error {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return sessions.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logOut.Infow("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
