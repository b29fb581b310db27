// gogate-devauth serves POST /api/login for the seven development accounts
// (password = username).
//
//	GOGATE_DEVAUTH_ADDR  listen address (default :8081)
//	DEVAUTH_SECRET       HS256 secret, at least 16 bytes (required)
//	DEVAUTH_TOKEN_TTL    token lifetime (default 1h)
//	DEVAUTH_MAX_FAILURES failed logins per user per window (default 5)
//	DEVAUTH_WINDOW       throttle window (default 1m)
//	REDIS_ADDR           Redis for throttling (default: in-process miniredis)
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/goGate/devauth"
	"github.com/MrEthical07/goGate/internal/envconf"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = envconf.LoadDotenv()

	logger := envconf.NewLogger(envconf.EnvString("GOGATE_LOG_LEVEL", "info"), envconf.EnvString("GOGATE_LOG_FORMAT", "text"))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	secret := envconf.EnvString("DEVAUTH_SECRET", "")
	if secret == "" {
		logger.Error("DEVAUTH_SECRET is required")
		os.Exit(2)
	}

	addr := envconf.EnvString("REDIS_ADDR", "")
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			logger.Error("start miniredis", "err", err)
			os.Exit(1)
		}
		defer mr.Close()
		addr = mr.Addr()
		logger.Info("using miniredis", "addr", addr)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	defer client.Close()

	cfg := devauth.DefaultConfig([]byte(secret))
	cfg.Token.TTL = envconf.EnvDuration("DEVAUTH_TOKEN_TTL", cfg.Token.TTL)
	cfg.Rate.MaxFailures = envconf.EnvInt("DEVAUTH_MAX_FAILURES", cfg.Rate.MaxFailures)
	cfg.Rate.Window = envconf.EnvDuration("DEVAUTH_WINDOW", cfg.Rate.Window)

	svc, err := devauth.New(cfg, client, logger)
	if err != nil {
		logger.Error("init devauth", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              envconf.EnvString("GOGATE_DEVAUTH_ADDR", ":8081"),
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error("listen", "addr", srv.Addr, "err", err)
		os.Exit(1)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("devauth listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-serverErr:
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
	}
	logger.Info("devauth stopped")
}
