package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"animemanager/internal/changefeed"
	"animemanager/internal/config"
	grpcserver "animemanager/internal/grpc"
	"animemanager/internal/logging"
	"animemanager/internal/mockapi"
	"animemanager/pkg/database"
	"animemanager/pkg/models"
)

func main() {
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Fatal("load env file", "err", err)
	}
	cfg, err := config.LoadMockAPI(os.Getenv)
	if err != nil {
		log.Fatal("load config", "code", config.Code(err), "err", err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, "mockapi")
	if err != nil {
		log.Fatal("build logger", "err", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("mock API stopped", "err", err)
	}
}

// run serves until ctx is done or a listener fails. Everything it opens is closed
// before it returns.
func run(ctx context.Context, cfg config.MockAPI, logger *log.Logger) error {
	if cfg.DBPath != database.MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := seed(logger, db, cfg.SeedPath); err != nil {
		return err
	}

	errc := make(chan error, 3)

	var feed *changefeed.Publisher
	if cfg.FeedAddr != "" {
		ln, err := net.Listen("tcp", cfg.FeedAddr)
		if err != nil {
			return fmt.Errorf("listen for change feed: %w", err)
		}
		events := make(chan models.ChangeEvent, 100)
		feed = changefeed.NewPublisher(events, logger)
		feedServer := changefeed.New(cfg.FeedAddr, events, logger)
		go func() {
			if err := feedServer.Serve(ln); err != nil {
				errc <- fmt.Errorf("change feed: %w", err)
			}
		}()
		defer feedServer.Close()
	}

	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen for gRPC: %w", err)
		}
		grpcServer := grpc.NewServer()
		grpcserver.Register(grpcServer, grpcserver.NewServer(db))
		go func() {
			logger.Info("gRPC catalog listening", "addr", lis.Addr().String())
			if err := grpcServer.Serve(lis); err != nil {
				errc <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
		defer grpcServer.GracefulStop()
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen for http: %w", err)
	}
	srv := &http.Server{
		Handler:           mockapi.New(db, feed, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("mock API listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
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

func seed(logger *log.Logger, db *sql.DB, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warn("seed file not found, skipping", "path", path)
		return nil
	}
	list, err := database.LoadAnimesFromJSON(path)
	if err != nil {
		return err
	}
	n, err := database.SeedAnimes(db, list)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("seeded animes", "inserted", n, "path", path)
	return nil
}
