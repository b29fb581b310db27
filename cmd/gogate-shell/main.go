// gogate-shell serves the dashboard's destinations behind the route guard.
//
// Configuration comes from the environment, optionally seeded from .env:
//
//	GOGATE_ADDR          listen address (default :8080)
//	GOGATE_STORAGE       memory | file | redis | sqlite | postgres (default file)
//	GOGATE_POLICY        YAML policy file (default: built-in dashboard table)
//	DEVAUTH_URL          remote login service base URL, e.g. http://localhost:8081/api;
//	                     when unset the dev accounts are served in-process
//	DEVAUTH_SECRET       token secret for the in-process service
//	REDIS_ADDR           Redis for storage and login throttling (default: miniredis)
//	GOGATE_LOG_LEVEL, GOGATE_LOG_FORMAT
//
// plus the GOGATE_* Gate settings read by envconf.GateConfig.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/authclient"
	"github.com/MrEthical07/goGate/devauth"
	"github.com/MrEthical07/goGate/internal/envconf"
	"github.com/MrEthical07/goGate/policy"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := envconf.LoadDotenv(); err != nil {
		slog.Error("load .env", "err", err)
		os.Exit(1)
	}

	logger := envconf.NewLogger(envconf.EnvString("GOGATE_LOG_LEVEL", "info"), envconf.EnvString("GOGATE_LOG_FORMAT", "text"))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	if err := run(logger); err != nil {
		logger.Error("gogate-shell exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	be, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer be.Close()

	table := policy.Reference()
	if path := envconf.EnvString("GOGATE_POLICY", ""); path != "" {
		if table, err = policy.LoadFile(path); err != nil {
			return err
		}
	}

	auth, err := newAuthenticator(be, logger)
	if err != nil {
		return err
	}

	cfg := envconf.GateConfig()
	b := goGate.New().
		WithConfig(cfg).
		WithStorage(be.storage).
		WithPolicy(table).
		WithAuthenticator(auth).
		WithLogger(logger)
	if cfg.Audit.Enabled {
		b = b.WithAuditSink(goGate.NewLogSink(logger))
	}
	gate, err := b.Build()
	if err != nil {
		return err
	}
	defer gate.Close()

	// Requests arriving before this finishes get PENDING.
	go gate.Bootstrap(ctx)

	addr := envconf.EnvString("GOGATE_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(gate, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return serve(srv, logger)
}

func newAuthenticator(be *backend, logger *slog.Logger) (goGate.Authenticator, error) {
	if url := envconf.EnvString("DEVAUTH_URL", ""); url != "" {
		logger.Info("using remote authentication", "url", url)
		return authclient.New(url), nil
	}

	secret := []byte(envconf.EnvString("DEVAUTH_SECRET", ""))
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
	}
	if err := openRedis(be); err != nil {
		return nil, err
	}
	logger.Warn("using in-process dev accounts; do not expose this server")
	return devauth.New(devauth.DefaultConfig(secret), be.redis, logger)
}

func serve(srv *http.Server, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-serverErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		return err
	}
	logger.Info("stopped")
	return nil
}
