package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"animemanager/internal/config"
	"animemanager/internal/logging"
	"animemanager/internal/notify"
	"animemanager/internal/store"
	"animemanager/internal/web"
)

func main() {
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Fatal("load env file", "err", err)
	}
	cfg, err := config.LoadManager(os.Getenv)
	if err != nil {
		log.Fatal("load config", "code", config.Code(err), "err", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, "manager")
	if err != nil {
		log.Fatal("build logger", "err", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("anime manager stopped", "err", err)
	}
}

// run serves the manager until ctx is done or the listener fails.
func run(ctx context.Context, cfg config.Manager, logger *log.Logger) error {
	hub := notify.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	client := store.NewClient(cfg.APIURL, store.NewHTTPClient(cfg.RatePerSec, cfg.HTTPTimeout))
	s := store.New(client, hub, logger)

	// The first page may render before this finishes; the list shows its loading state.
	initial := store.Async(func() bool { return s.LoadAll(ctx) })
	go func() {
		if ok, err := initial.Await(ctx); err == nil {
			logger.Info("initial load finished", "ok", ok, "count", len(s.Animes()))
		}
	}()

	app, err := web.New(s, hub, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("anime manager listening", "addr", ln.Addr().String(), "api", cfg.APIURL)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errc:
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("shutdown", "err", serr)
	}
	return err
}
