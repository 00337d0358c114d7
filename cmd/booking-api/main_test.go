package main

import (
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/launchset/gym-booking/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env: config.EnvLocal,
		HTTP: config.HTTPConfig{
			Port:                "0",
			RequestTimeout:      time.Second,
			ShutdownTimeout:     time.Second,
			MaxRequestBodyBytes: 1 << 20,
		},
		Stripe: config.StripeConfig{
			SecretKey: "sk_test_dummy",
			Domain:    "http://localhost:3000",
			Currency:  "gbp",
		},
	}
}

func TestRun_CatalogErrorIsReturned(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog.DBPath = filepath.Join(t.TempDir(), "missing", "catalog.db")

	err := run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestRun_ServeErrorClosesRedis(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.HTTP.Port = strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)
	cfg.Redis.Addr = mr.Addr()

	err = run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve")

	assert.Eventually(t, func() bool {
		return mr.CurrentConnectionCount() == 0
	}, time.Second, 10*time.Millisecond)
}
