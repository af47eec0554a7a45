// Package queue consumes bet-pair jobs from the shared Redis list the
// upstream scheduler publishes to. The list layout follows the Bull
// convention: jobs wait in bull:<name>:wait wrapped in a {"data": ...}
// envelope.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"arbpair/internal/bet"
	"arbpair/internal/logging"
)

// Handler receives each decoded, validated pair request.
type Handler interface {
	Execute(ctx context.Context, req bet.PairRequest)
}

type envelope struct {
	Data bet.PairRequest `json:"data"`
}

func waitKey(name string) string {
	return "bull:" + name + ":wait"
}

type Consumer struct {
	rdb     *redis.Client
	queue   string
	handler Handler
}

func NewConsumer(rdb *redis.Client, queue string, h Handler) *Consumer {
	return &Consumer{rdb: rdb, queue: queue, handler: h}
}

// Run blocks until ctx is cancelled. Jobs are handled one at a time in
// arrival order; a malformed job is logged and skipped, never retried.
func (c *Consumer) Run(ctx context.Context) {
	log := logging.From(ctx)
	log.Info("queue.consumer.start", "key", waitKey(c.queue))
	defer log.Info("queue.consumer.stop")
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		raw, err := c.pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("queue.pop", "err", err)
			time.Sleep(2 * time.Second)
			continue
		}
		if raw == "" {
			continue
		}
		c.handleJob(ctx, raw)
	}
}

// pop waits up to one second for a job. An empty string means the wait
// timed out with nothing queued.
func (c *Consumer) pop(ctx context.Context) (string, error) {
	res, err := c.rdb.BLPop(ctx, time.Second, waitKey(c.queue)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(res) != 2 {
		return "", fmt.Errorf("queue: unexpected blpop reply of %d elements", len(res))
	}
	return res[1], nil
}

func (c *Consumer) handleJob(ctx context.Context, raw string) {
	log := logging.From(ctx)
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		log.Warn("queue.decode", "err", err)
		return
	}
	req := env.Data
	req.Normalize()
	if err := req.Validate(); err != nil {
		log.Warn("queue.invalid", "arb_id", req.ArbID, "err", err)
		return
	}
	log.Info("queue.job", "arb_id", req.ArbID, "whitelabel", req.Tenant)
	c.handler.Execute(ctx, req)
}

// Enqueue pushes a job in the envelope Run reads. The production producer is
// the upstream scheduler; this path serves apctl and tests.
func Enqueue(ctx context.Context, rdb *redis.Client, queue string, req bet.PairRequest) error {
	payload, err := json.Marshal(envelope{Data: req})
	if err != nil {
		return fmt.Errorf("queue: marshal job: %w", err)
	}
	if err := rdb.RPush(ctx, waitKey(queue), payload).Err(); err != nil {
		return fmt.Errorf("queue: push job: %w", err)
	}
	return nil
}
