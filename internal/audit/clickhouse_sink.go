package audit

import (
	"context"
	"fmt"
	"regexp"

	"securebank/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// ClickHouseConn is satisfied by client.ClickHouseClient.
type ClickHouseConn interface {
	Exec(ctx context.Context, query string, args ...interface{}) error
	InsertRow(ctx context.Context, query string, values ...interface{}) error
}

type ClickHouseSink struct {
	conn  ClickHouseConn
	table string
}

func NewClickHouseSink(conn ClickHouseConn, table string) (*ClickHouseSink, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid clickhouse table name: %q", table)
	}
	return &ClickHouseSink{conn: conn, table: table}, nil
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

// EnsureTable creates the events table when it does not exist yet.
func (s *ClickHouseSink) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	event_id String,
	event_time DateTime64(3, 'UTC'),
	event_type LowCardinality(String),
	description String,
	username String,
	ip_address String
) ENGINE = MergeTree()
ORDER BY (event_time, event_type)`, s.table)

	if err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create clickhouse table: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) Publish(ctx context.Context, entry models.SecurityLogEntry) error {
	query := fmt.Sprintf("INSERT INTO %s (event_id, event_time, event_type, description, username, ip_address)", s.table)
	err := s.conn.InsertRow(ctx, query,
		entry.ID,
		entry.Timestamp,
		string(entry.EventType),
		entry.Description,
		entry.Username,
		entry.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("clickhouse insert: %w", err)
	}
	return nil
}
