package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"arbpair/internal/bet"
	"arbpair/internal/config"
	"arbpair/internal/cooldown"
	"arbpair/internal/kv"
	"arbpair/internal/queue"
	"arbpair/internal/reconcile"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "ping":
		pingCmd(os.Args[2:])
	case "cooldown":
		cooldownCmd(os.Args[2:])
	case "exposure":
		exposureCmd(os.Args[2:])
	case "enqueue":
		enqueueCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println(`apctl - arbpair ops CLI

Usage:
  apctl ping                                             [-config config.yaml] [-redis redis://...]
  apctl cooldown list                                    [-config config.yaml] [-redis redis://...]
  apctl cooldown clear <whitelabel> <provider> <account> [-config config.yaml] [-redis redis://...]
  apctl exposure list                                    [-config config.yaml] [-redis redis://...]
  apctl enqueue <job.json>                [-queue name]  [-config config.yaml] [-redis redis://...]
  apctl enqueue -demo                     [-queue name]  [-config config.yaml] [-redis redis://...]

Examples:
  apctl ping
  apctl cooldown list
  apctl cooldown clear acme bet365 acc-001
  apctl enqueue job.json
  apctl enqueue -demo -queue arb-execute`)
}

func pingCmd(args []string) {
	fs := flag.NewFlagSet("ping", flag.ExitOnError)
	var (
		cfgPath  = fs.String("config", "config.yaml", "path to config file")
		redisURL = fs.String("redis", "", "override redis connection URL")
	)
	_ = fs.Parse(reorderArgs(args))

	store := openStore(*cfgPath, *redisURL)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	fmt.Println("ok: redis reachable")
}

func cooldownCmd(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	switch args[0] {
	case "list":
		cooldownList(args[1:])
	case "clear":
		cooldownClear(args[1:])
	default:
		usage()
		os.Exit(2)
	}
}

func cooldownList(args []string) {
	fs := flag.NewFlagSet("cooldown list", flag.ExitOnError)
	var (
		cfgPath  = fs.String("config", "config.yaml", "path to config file")
		redisURL = fs.String("redis", "", "override redis connection URL")
	)
	_ = fs.Parse(reorderArgs(args))

	store := openStore(*cfgPath, *redisURL)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	type row struct {
		key      string
		acquired time.Time
		ttl      time.Duration
	}
	var rows []row
	err := store.ScanPrefix(ctx, cooldown.Prefix, func(key, value string) error {
		at, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fmt.Printf("%s  (unreadable value %q)\n", key, value)
			return nil
		}
		ttl, err := store.TTL(ctx, key)
		if err != nil {
			return err
		}
		rows = append(rows, row{
			key:      key,
			acquired: time.Unix(0, int64(at*float64(time.Second))).UTC(),
			ttl:      ttl,
		})
		return nil
	})
	if err != nil {
		log.Fatalf("cooldown list: %v", err)
	}
	if len(rows) == 0 {
		fmt.Println("no active cooldowns")
		return
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].key < rows[j].key })
	for _, r := range rows {
		fmt.Printf("%s  acquired=%s  ttl=%ds\n", r.key, r.acquired.Format(time.RFC3339), int(r.ttl.Seconds()))
	}
}

func cooldownClear(args []string) {
	fs := flag.NewFlagSet("cooldown clear", flag.ExitOnError)
	var (
		cfgPath  = fs.String("config", "config.yaml", "path to config file")
		redisURL = fs.String("redis", "", "override redis connection URL")
	)
	_ = fs.Parse(reorderArgs(args))

	rest := fs.Args()
	if len(rest) < 3 {
		fmt.Println("usage: apctl cooldown clear <whitelabel> <provider> <account> [-redis redis://...]")
		os.Exit(2)
	}
	key := cooldown.Key(rest[0], rest[1], rest[2])

	store := openStore(*cfgPath, *redisURL)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, exists, err := store.Get(ctx, key)
	if err != nil {
		log.Fatalf("cooldown clear: %v", err)
	}
	if !exists {
		fmt.Printf("no cooldown under %s\n", key)
		os.Exit(1)
	}
	if err := store.Delete(ctx, key); err != nil {
		log.Fatalf("cooldown clear: %v", err)
	}
	fmt.Printf("ok: cleared %s\n", key)
}

func exposureCmd(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	switch args[0] {
	case "list":
		exposureList(args[1:])
	default:
		usage()
		os.Exit(2)
	}
}

func exposureList(args []string) {
	fs := flag.NewFlagSet("exposure list", flag.ExitOnError)
	var (
		cfgPath  = fs.String("config", "config.yaml", "path to config file")
		redisURL = fs.String("redis", "", "override redis connection URL")
	)
	_ = fs.Parse(reorderArgs(args))

	store := openStore(*cfgPath, *redisURL)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count := 0
	err := store.ScanPrefix(ctx, reconcile.ExposurePrefix, func(key, value string) error {
		var rec reconcile.ExposureRecord
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			fmt.Printf("%s  (unreadable record)\n", key)
			return nil
		}
		detected := time.Unix(0, int64(rec.DetectedAt*float64(time.Second))).UTC()
		fmt.Printf("%s\n  reason=%s outcome=%s/%s detected=%s\n  tickets=%s/%s\n",
			key, rec.ExposureReason, rec.PositiveStatus, rec.HedgeStatus,
			detected.Format(time.RFC3339), rec.PositiveTicket, rec.HedgeTicket)
		count++
		return nil
	})
	if err != nil {
		log.Fatalf("exposure list: %v", err)
	}
	if count == 0 {
		fmt.Println("no open exposures")
	}
}

func enqueueCmd(args []string) {
	fs := flag.NewFlagSet("enqueue", flag.ExitOnError)
	var (
		cfgPath  = fs.String("config", "config.yaml", "path to config file")
		redisURL = fs.String("redis", "", "override redis connection URL")
		qName    = fs.String("queue", "", "queue name (default from config)")
		demo     = fs.Bool("demo", false, "enqueue a generated demo pair instead of reading a file")
	)
	_ = fs.Parse(reorderArgs(args))

	var req bet.PairRequest
	if *demo {
		req = demoRequest()
	} else {
		rest := fs.Args()
		if len(rest) < 1 {
			fmt.Println("usage: apctl enqueue <job.json> [-queue name], or apctl enqueue -demo")
			os.Exit(2)
		}
		raw, err := readJobFile(rest[0])
		if err != nil {
			log.Fatalf("read job: %v", err)
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Fatalf("decode job: %v", err)
		}
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		log.Fatalf("invalid job: %v", err)
	}

	cfg := loadConfig(*cfgPath)
	name := cfg.Queue.Name
	if strings.TrimSpace(*qName) != "" {
		name = *qName
	}

	store := openStoreFrom(cfg, *redisURL)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := queue.Enqueue(ctx, store.Client(), name, req); err != nil {
		log.Fatalf("enqueue: %v", err)
	}
	fmt.Printf("ok: queued %s on %s\n", req.ArbID, name)
}

// demoRequest fabricates a small valid pair for smoke-testing a deployment
// end to end against the simulated gateway.
func demoRequest() bet.PairRequest {
	id := uuid.NewString()[:8]
	return bet.PairRequest{
		ArbID:            "demo-" + id,
		Tenant:           "demo",
		PositiveProvider: "sim-a",
		HedgeProvider:    "sim-b",
		PositiveLeg: bet.Leg{
			BetID:     "demo-" + id + "-pos",
			AccountID: "demo-acc-1",
			MatchName: "Demo FC vs Test United",
			Odds:      2.10,
			Stake:     1000,
		},
		HedgeLeg: bet.Leg{
			BetID:     "demo-" + id + "-hedge",
			AccountID: "demo-acc-2",
			MatchName: "Demo FC vs Test United",
			Odds:      1.95,
			Stake:     1080,
		},
	}
}

func readJobFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil && cfg == nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func openStore(cfgPath, override string) *kv.RedisStore {
	return openStoreFrom(loadConfig(cfgPath), override)
}

func openStoreFrom(cfg *config.Config, override string) *kv.RedisStore {
	url := cfg.Redis.URL
	if strings.TrimSpace(override) != "" {
		url = override
	}
	store, err := kv.Open(url)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	return store
}

func reorderArgs(args []string) []string {
	var flags []string
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) > 0 && arg != "-" && arg != "--" && arg[0] == '-' {
			flags = append(flags, arg)
			if !strings.Contains(arg, "=") && i+1 < len(args) && (len(args[i+1]) == 0 || args[i+1][0] != '-') {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, arg)
		}
	}
	return append(flags, positional...)
}
