// gogate-loadtest measures route decision latency under session churn and
// persistence round-trip latency against Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/persist"
	"github.com/MrEthical07/goGate/role"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "decisions in the decide phase")
		saves       = flag.Int("saves", 20000, "save+load round trips in the persist phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gg-load", "redis key prefix")
	)
	flag.Parse()

	if *concurrency <= 0 || *ops <= 0 || *saves <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency, ops, and saves must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	storage := persist.NewRedisStorage(client, *prefix, time.Hour)

	gate, err := goGate.New().WithStorage(storage).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build gate: %v\n", err)
		os.Exit(1)
	}
	defer gate.Close()
	gate.Bootstrap(ctx)

	decideStats := runDecidePhase(ctx, gate, *ops, *concurrency)
	persistStats := runPersistPhase(ctx, storage, *saves, *concurrency)

	fmt.Println("---- results ----")
	printStats("decide", decideStats)
	printStats("persist", persistStats)
}

// runDecidePhase evaluates random destinations while one goroutine keeps
// signing users in and out under random roles.
func runDecidePhase(ctx context.Context, gate *goGate.Gate, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
		done      = make(chan struct{})
	)

	dests := gate.Policy().Destinations()
	roles := role.All()

	go func() {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			if i%4 == 3 {
				gate.Logout(ctx)
				continue
			}
			ro := roles[r.Intn(len(roles))]
			_ = gate.Login(ctx, goGate.UserIdentity{Username: "load-" + ro.String(), Role: ro}, "tok-"+strconv.Itoa(i))
		}
	}()

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				dest := dests[r.Intn(len(dests))]
				t0 := time.Now()
				d := gate.Decide(ctx, dest)
				elapsed := time.Since(t0)
				if d.Outcome == goGate.Pending {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, elapsed)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	close(done)
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

// runPersistPhase saves and reloads a session per operation, each worker in
// its own namespace. A reload that differs from the save is a failure.
func runPersistPhase(ctx context.Context, storage persist.Storage, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			adapter, err := persist.NewAdapter(storage, "w"+strconv.Itoa(worker), nil)
			if err != nil {
				atomic.AddInt64(&failures, 1)
				return
			}
			roles := role.All()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				user := goGate.UserIdentity{Username: "u" + strconv.Itoa(i), Role: roles[i%len(roles)]}
				token := "tok-" + strconv.Itoa(i)

				t0 := time.Now()
				err := adapter.Save(ctx, user, token)
				snap, status := adapter.LoadDetailed(ctx)
				elapsed := time.Since(t0)
				if err != nil || status != persist.StatusRestored || snap.Token != token || snap.User != user {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, elapsed)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
