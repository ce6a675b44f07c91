package influxdb

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second
)

// Logger receives asynchronous write failures. logging.Logger satisfies it.
type Logger interface {
	Warn(msg string, args ...any)
}

// Option customises a Client at Connect time.
type Option func(*Client)

// WithSite tags every point with site=<id> so several installations can
// share one bucket.
func WithSite(id string) Option {
	return func(c *Client) { c.site = id }
}

// WithLogger reports failed batch writes to l.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Stats counts points handed to the write API and batches the server
// rejected.
type Stats struct {
	Queued        int64 `json:"queued"`
	FailedBatches int64 `json:"failed_batches"`
}

// Client writes device history to one bucket through the batched,
// non-blocking write API. Safe for concurrent use.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	site     string
	logger   Logger

	closed atomic.Bool
	queued atomic.Int64
	failed atomic.Int64
}

// Connect pings cfg.URL, then opens the write API for cfg.Org/cfg.Bucket.
// It returns ErrDisabled when history is switched off in config.
func Connect(ctx context.Context, cfg config.InfluxDBConfig, opts ...Option) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, clientOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := ping(pingCtx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.URL, err)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.drainErrors(c.writeAPI.Errors())
	return c, nil
}

// clientOptions maps batch_size (points) and flush_interval (seconds) onto
// the client, falling back to defaults for non-positive values.
func clientOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batch := uint(defaultBatchSize)
	if cfg.BatchSize > 0 {
		batch = uint(cfg.BatchSize)
	}
	flush := defaultFlushInterval
	if cfg.FlushInterval > 0 {
		flush = time.Duration(cfg.FlushInterval) * time.Second
	}
	return influxdb2.DefaultOptions().
		SetBatchSize(batch).
		SetFlushInterval(uint(flush.Milliseconds()))
}

func ping(ctx context.Context, client influxdb2.Client) error {
	healthy, err := client.Ping(ctx)
	if err != nil {
		return err
	}
	if !healthy {
		return fmt.Errorf("server not ready")
	}
	return nil
}

// drainErrors runs until the write API closes its error channel.
func (c *Client) drainErrors(errs <-chan error) {
	for err := range errs {
		c.failed.Add(1)
		if c.logger != nil {
			c.logger.Warn("influxdb batch write failed", "error", err, "site", c.site)
		}
	}
}

// Close flushes buffered points and releases the client. Later writes are
// dropped.
func (c *Client) Close() error {
	if c == nil || c.client == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck pings the server; ErrNotConnected after Close.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := ping(ctx, c.client); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// IsConnected reports whether Connect succeeded and Close has not run.
func (c *Client) IsConnected() bool {
	return c != nil && c.client != nil && !c.closed.Load()
}

// Flush blocks until buffered points are sent.
func (c *Client) Flush() {
	if c.IsConnected() {
		c.writeAPI.Flush()
	}
}

// Stats returns write counters since Connect.
func (c *Client) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{Queued: c.queued.Load(), FailedBatches: c.failed.Load()}
}
