// Package resultsapi delivers worker events to the coordinating API over
// HTTP. Delivery is asynchronous: Emit drops the event into a buffered
// channel and Run posts entries in arrival order. A full buffer or a failed
// POST costs the event a warning, never a retry, and never blocks the
// engine.
package resultsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"arbpair/internal/logging"
	"arbpair/internal/report"
)

const (
	resultPath = "/api/worker/result"
	bufferSize = 256
)

type event struct {
	Type report.Kind `json:"type"`
	Data any         `json:"data"`
}

type Client struct {
	base     string
	workerID string
	secret   []byte
	client   *http.Client
	events   chan event

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

var _ report.Sink = (*Client)(nil)

// New builds a client posting to baseURL. An empty tokenSecret disables the
// Authorization header.
func New(baseURL, tokenSecret, workerID string) *Client {
	return &Client{
		base:     strings.TrimRight(baseURL, "/"),
		workerID: workerID,
		secret:   []byte(tokenSecret),
		client:   &http.Client{Timeout: 5 * time.Second},
		events:   make(chan event, bufferSize),
	}
}

// Emit implements report.Sink. It never blocks.
func (c *Client) Emit(ctx context.Context, kind report.Kind, payload any) {
	select {
	case c.events <- event{Type: kind, Data: payload}:
	default:
		logging.From(ctx).Warn("report.buffer_full", "type", kind)
	}
}

// Run drains the buffer until ctx is cancelled, then flushes whatever is
// still queued before returning.
func (c *Client) Run(ctx context.Context) {
	log := logging.From(ctx)
	log.Info("report.start", "url", c.base+resultPath)
	defer log.Info("report.stop")
	for {
		select {
		case <-ctx.Done():
			c.flush(log)
			return
		case ev := <-c.events:
			c.post(log, ev)
		}
	}
}

// flush drains whatever is still queued when the run context dies.
func (c *Client) flush(log *slog.Logger) {
	for {
		select {
		case ev := <-c.events:
			c.post(log, ev)
		default:
			return
		}
	}
}

// post delivers one event. Requests run on a detached context: cancelling
// the run loop must not kill a send mid-flight, and the client's own 5s
// timeout already bounds each attempt.
func (c *Client) post(log *slog.Logger, ev event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Warn("report.marshal", "type", ev.Type, "err", err)
		return
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, c.base+resultPath, bytes.NewReader(body))
	if err != nil {
		log.Warn("report.request", "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("report.send", "type", ev.Type, "err", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		log.Warn("report.send.status", "type", ev.Type, "status", resp.Status)
	}
}

// bearer returns a cached HS256 token, reissuing once it is within a minute
// of expiry. Empty when no secret is configured.
func (c *Client) bearer() string {
	if len(c.secret) == 0 {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if c.token != "" && now.Before(c.tokenExp.Add(-time.Minute)) {
		return c.token
	}
	exp := now.Add(time.Hour)
	claims := jwt.MapClaims{
		"sub": c.workerID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		slog.Warn("report.token", "err", err)
		return ""
	}
	c.token = tok
	c.tokenExp = exp
	return tok
}
