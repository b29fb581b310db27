package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MrEthical07/goGate/internal/envconf"
	"github.com/MrEthical07/goGate/persist"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// backend is an opened storage plus whatever must be closed with it.
type backend struct {
	storage persist.Storage
	redis   redis.UniversalClient
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openRedis connects to REDIS_ADDR, or to an in-process miniredis when unset.
func openRedis(b *backend) error {
	if b.redis != nil {
		return nil
	}
	addr := envconf.EnvString("REDIS_ADDR", "")
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start miniredis: %w", err)
		}
		b.closers = append(b.closers, mr.Close)
		addr = mr.Addr()
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	b.closers = append(b.closers, func() { _ = client.Close() })
	b.redis = client
	return nil
}

// openBackend selects storage from GOGATE_STORAGE: memory, file, redis,
// sqlite or postgres.
func openBackend(ctx context.Context) (*backend, error) {
	b := &backend{}
	kind := strings.ToLower(envconf.EnvString("GOGATE_STORAGE", "file"))

	switch kind {
	case "memory":
		b.storage = persist.NewMemoryStorage()
	case "file":
		b.storage = persist.NewFileStorage(envconf.EnvString("GOGATE_FILE", "gogate-session.json"))
	case "redis":
		if err := openRedis(b); err != nil {
			return nil, err
		}
		b.storage = persist.NewRedisStorage(b.redis, envconf.EnvString("GOGATE_REDIS_PREFIX", "gg"), envconf.EnvDuration("GOGATE_REDIS_TTL", 0))
	case "sqlite", "postgres":
		db, dialect, err := openSQL(kind)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = db.Close() })
		store, err := persist.NewSQLStorage(db, dialect, envconf.EnvString("GOGATE_SQL_TABLE", "gogate_session"))
		if err == nil {
			err = store.EnsureSchema(ctx)
		}
		if err != nil {
			b.Close()
			return nil, err
		}
		b.storage = store
	default:
		return nil, fmt.Errorf("unknown GOGATE_STORAGE %q", kind)
	}
	return b, nil
}

func openSQL(kind string) (*sql.DB, persist.Dialect, error) {
	if kind == "sqlite" {
		db, err := persist.OpenSQLite(envconf.EnvString("GOGATE_SQLITE_PATH", "gogate.db"))
		return db, persist.DialectSQLite, err
	}
	dsn := envconf.EnvString("DATABASE_URL", "")
	if dsn == "" {
		return nil, 0, fmt.Errorf("DATABASE_URL is required for postgres storage")
	}
	db, err := persist.OpenPostgres(dsn)
	return db, persist.DialectPostgres, err
}
