// Command authservice-loadtest measures token verification and challenge
// redemption throughput against Redis, or an embedded miniredis when no
// address is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/challenge"
	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/secret"
)

func main() {
	var (
		users       = flag.Int("users", 200, "number of users to register and log in")
		revoke      = flag.Int("revoke", 10, "percentage of sessions to log out before the verify phase")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 || *revoke < 0 || *revoke > 100 {
		fmt.Fprintln(os.Stderr, "users, concurrency and ops must be > 0; revoke must be 0..100")
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

	cfg := authservice.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("loadtest-secret")
	cfg.JWT.TTL = time.Hour
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1

	engine, err := authservice.New().WithConfig(cfg).WithRedis(client).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d sessions...\n", *users)
	startSeed := time.Now()
	tokens, err := seedSessions(ctx, engine, *users, *revoke)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	store := challenge.NewRedisStore(client, "loadtest_two_fa_code", challenge.DefaultTTL)

	verifyStats := runPhase(*ops, *concurrency, func(int) error {
		_, err := engine.VerifyToken(ctx, tokens[rand.IntN(len(tokens))])
		if errors.Is(err, authservice.ErrUnauthorized) {
			return nil
		}
		return err
	})
	challengeStats := runPhase(*ops, *concurrency, func(i int) error {
		identity := credential.MustParseIdentity(fmt.Sprintf("load-%d@example.com", i%*users))
		id := challenge.NewLoginAttemptID()
		code, err := challenge.NewCode()
		if err != nil {
			return err
		}
		if err := store.Add(ctx, identity, id, code); err != nil {
			return err
		}
		err = store.Consume(ctx, identity, id, code)
		if errors.Is(err, challenge.ErrNotFound) || errors.Is(err, challenge.ErrMismatch) {
			// Another worker replaced or redeemed it first.
			return nil
		}
		return err
	})

	fmt.Println("---- results ----")
	verifyStats.print("verify-token")
	challengeStats.print("challenge add+consume")
}

func seedSessions(ctx context.Context, engine *authservice.Engine, users, revokePct int) ([]string, error) {
	tokens := make([]string, 0, users)
	for i := 0; i < users; i++ {
		email := fmt.Sprintf("load-%d@example.com", i)
		pw := secret.New("Passw0rd!")
		if err := engine.Signup(ctx, authservice.SignupRequest{Email: email, Password: pw}); err != nil {
			return nil, err
		}
		res, err := engine.Login(ctx, email, pw)
		if err != nil {
			return nil, err
		}
		if i*100 < users*revokePct {
			if err := engine.Logout(ctx, res.Token); err != nil {
				return nil, err
			}
		}
		tokens = append(tokens, res.Token)
	}
	return tokens, nil
}

// runPhase spreads ops calls of op across concurrency workers. Each worker
// keeps its own latency slice; they are merged once all workers finish.
func runPhase(ops, concurrency int, op func(i int) error) phaseStats {
	var (
		wg       sync.WaitGroup
		next     atomic.Int64
		failures atomic.Int64
	)
	perWorker := make([][]time.Duration, concurrency)

	start := time.Now()
	for w := range perWorker {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]time.Duration, 0, ops/concurrency+1)
			for i := int(next.Add(1) - 1); i < ops; i = int(next.Add(1) - 1) {
				t0 := time.Now()
				if err := op(i); err != nil {
					failures.Add(1)
				}
				local = append(local, time.Since(t0))
			}
			perWorker[w] = local
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	var all []time.Duration
	for _, l := range perWorker {
		all = append(all, l...)
	}
	slices.Sort(all)
	return phaseStats{elapsed: elapsed, latencies: all, failures: failures.Load()}
}

type phaseStats struct {
	elapsed   time.Duration
	latencies []time.Duration // sorted
	failures  int64
}

// quantile returns the q-th sample, 0 <= q <= 1, using nearest rank.
func (s phaseStats) quantile(q float64) time.Duration {
	if len(s.latencies) == 0 {
		return 0
	}
	idx := int(q * float64(len(s.latencies)-1))
	return s.latencies[idx]
}

func (s phaseStats) print(name string) {
	rate := 0.0
	if s.elapsed > 0 {
		rate = float64(len(s.latencies)) / s.elapsed.Seconds()
	}
	fmt.Printf("%-22s ops=%d failures=%d elapsed=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		len(s.latencies),
		s.failures,
		s.elapsed.Round(time.Millisecond),
		rate,
		s.quantile(0.50).Round(time.Microsecond),
		s.quantile(0.95).Round(time.Microsecond),
		s.quantile(0.99).Round(time.Microsecond),
	)
}
