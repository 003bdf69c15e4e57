package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"securebank/internal/config"
	"securebank/internal/util"
)

const (
	clickhousePort       = "9000"
	clickhouseSecurePort = "9440"
)

// ClickHouseClient writes security events over the native protocol.
type ClickHouseClient struct {
	conn   driver.Conn
	logger *zap.Logger
}

// NewClickHouseClient opens and pings a connection to the configured server.
func NewClickHouseClient(cfg *config.Config, logger *zap.Logger) (*ClickHouseClient, error) {
	if logger == nil {
		logger = util.Get()
	}

	opts, err := clickhouseOptions(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := ch.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.Info("ClickHouse client initialized",
		util.String("addr", opts.Addr[0]),
		util.String("database", opts.Auth.Database),
		util.Bool("tls_enabled", opts.TLS != nil),
	)
	return &ClickHouseClient{conn: conn, logger: logger}, nil
}

// clickhouseOptions accepts host, host:port or a URL. https URLs and
// production use TLS and default to the secure native port.
func clickhouseOptions(cfg *config.Config) (*ch.Options, error) {
	raw := cfg.Clickhouse.URL
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		u, err = url.Parse("clickhouse://" + raw)
	}
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid ClickHouse URL %q", raw)
	}

	secure := u.Scheme == "https" || cfg.IsProduction()
	port := u.Port()
	if port == "" {
		port = clickhousePort
		if secure {
			port = clickhouseSecurePort
		}
	}

	opts := &ch.Options{
		Addr: []string{net.JoinHostPort(u.Hostname(), port)},
		Auth: ch.Auth{
			Database: cfg.Clickhouse.Database,
			Username: cfg.Clickhouse.Username,
			Password: cfg.Clickhouse.Password,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	}
	if secure {
		opts.TLS = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: u.Hostname()}
	}
	return opts, nil
}

func (c *ClickHouseClient) Exec(ctx context.Context, query string, args ...interface{}) error {
	return c.conn.Exec(ctx, query, args...)
}

// InsertRow sends a single row through a prepared batch. A row the batch
// rejects aborts it, releasing its connection.
func (c *ClickHouseClient) InsertRow(ctx context.Context, query string, values ...interface{}) error {
	batch, err := c.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	if err := batch.Append(values...); err != nil {
		if abortErr := batch.Abort(); abortErr != nil {
			c.logger.Warn("Failed to abort ClickHouse batch", util.ErrorField(abortErr))
		}
		return fmt.Errorf("failed to append row: %w", err)
	}
	return batch.Send()
}

func (c *ClickHouseClient) HealthCheck(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseClient) Close() error {
	if err := c.conn.Close(); err != nil {
		c.logger.Error("Failed to close ClickHouse connection", util.ErrorField(err))
		return err
	}
	return nil
}
