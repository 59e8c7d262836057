package main

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animemanager/internal/config"
	"animemanager/pkg/database"
)

func testConfig() config.MockAPI {
	return config.MockAPI{Addr: "127.0.0.1:0", DBPath: database.MemoryDSN}
}

func TestRunReturnsListenError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	cfg := testConfig()
	cfg.GRPCAddr = taken.Addr().String()

	err = run(context.Background(), cfg, log.New(io.Discard))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen for gRPC")
}

func TestRunReturnsSeedError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animes.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	cfg := testConfig()
	cfg.SeedPath = path

	err := run(context.Background(), cfg, log.New(io.Discard))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal anime json")
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.FeedAddr = "127.0.0.1:0"
	cfg.GRPCAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, log.New(io.Discard)) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
