// Package engine drives the pair execution state machine: claim, cooldown
// and session gates, ordered two-leg placement, cooldown acquisition, and
// the settlement watch that follows every fully placed pair.
package engine

import (
	"sync"
	"time"

	"arbpair/internal/clock"
	"arbpair/internal/cooldown"
	"arbpair/internal/kv"
	"arbpair/internal/provider"
	"arbpair/internal/reconcile"
	"arbpair/internal/report"
	"arbpair/internal/session"
)

const (
	// claimTTL bounds how long an executed: mark blocks re-submission of the
	// same arb id across the fleet.
	claimTTL   = time.Hour
	claimValue = "claimed"

	defaultPlaceTimeout = 30 * time.Second
	defaultPollInterval = 5 * time.Second
	defaultMaxPolls     = 120
)

func executedKey(arbID string) string { return "executed:" + arbID }

// Options wires an Engine. Store, Gateway, Cooldowns, Sessions and Exposures
// are required; the rest default.
type Options struct {
	Store     kv.Store
	Gateway   provider.Gateway
	Sink      report.Sink
	Cooldowns *cooldown.Registry
	Sessions  session.Registry
	Exposures *reconcile.Recorder
	Clock     clock.Clock

	// PlaceTimeout caps each individual gateway call (default 30s).
	PlaceTimeout time.Duration
	// PollInterval and MaxPolls shape the settlement watch: 5s between
	// polls, hard budget of 120 polls per leg. Overridden only by tests.
	PollInterval time.Duration
	MaxPolls     int
}

type Engine struct {
	store     kv.Store
	gateway   provider.Gateway
	sink      report.Sink
	cooldowns *cooldown.Registry
	sessions  session.Registry
	exposures *reconcile.Recorder
	clock     clock.Clock

	placeTimeout time.Duration
	pollInterval time.Duration
	maxPolls     int

	watchers sync.WaitGroup
}

func New(opts Options) *Engine {
	e := &Engine{
		store:        opts.Store,
		gateway:      opts.Gateway,
		sink:         opts.Sink,
		cooldowns:    opts.Cooldowns,
		sessions:     opts.Sessions,
		exposures:    opts.Exposures,
		clock:        opts.Clock,
		placeTimeout: opts.PlaceTimeout,
		pollInterval: opts.PollInterval,
		maxPolls:     opts.MaxPolls,
	}
	if e.sink == nil {
		e.sink = report.Noop{}
	}
	if e.clock == nil {
		e.clock = clock.Real{}
	}
	if e.placeTimeout <= 0 {
		e.placeTimeout = defaultPlaceTimeout
	}
	if e.pollInterval <= 0 {
		e.pollInterval = defaultPollInterval
	}
	if e.maxPolls <= 0 {
		e.maxPolls = defaultMaxPolls
	}
	return e
}

// Wait blocks until every spawned settlement watcher has returned. For a
// prompt shutdown cancel the context first; watchers exit at their next
// suspension point and drop unreconciled pairs.
func (e *Engine) Wait() {
	e.watchers.Wait()
}
