package audit

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"securebank/internal/models"
)

type fakeProducer struct {
	topic   string
	key     []byte
	value   []byte
	headers map[string]string
}

func (p *fakeProducer) ProduceMessage(_ context.Context, topic string, key, value []byte, headers map[string]string) error {
	p.topic, p.key, p.value, p.headers = topic, key, value, headers
	return nil
}

type fakeIndexer struct {
	index string
	id    string
	doc   interface{}
}

func (i *fakeIndexer) IndexDocument(_ context.Context, index, id string, document interface{}) error {
	i.index, i.id, i.doc = index, id, document
	return nil
}

type fakeClickHouse struct {
	execs   []string
	queries []string
	rows    [][]interface{}
}

func (c *fakeClickHouse) Exec(_ context.Context, query string, _ ...interface{}) error {
	c.execs = append(c.execs, query)
	return nil
}

func (c *fakeClickHouse) InsertRow(_ context.Context, query string, values ...interface{}) error {
	c.queries = append(c.queries, query)
	c.rows = append(c.rows, values)
	return nil
}

func sampleEntry() models.SecurityLogEntry {
	return models.SecurityLogEntry{
		ID:          "evt-1",
		Timestamp:   time.Date(2024, 12, 19, 10, 0, 0, 0, time.UTC),
		EventType:   models.EventTransferSuccess,
		Description: "Transfer of $100 from ACC001 to ACC002",
		Username:    "demo",
		IPAddress:   models.PlaceholderIPAddress,
	}
}

func TestKafkaSinkPublish(t *testing.T) {
	p := &fakeProducer{}
	sink := NewKafkaSink(p, "securebank.security-events")

	if err := sink.Publish(context.Background(), sampleEntry()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if p.topic != "securebank.security-events" || string(p.key) != "demo" {
		t.Fatalf("unexpected topic/key %q %q", p.topic, p.key)
	}
	if p.headers["event_type"] != "TRANSFER_SUCCESS" {
		t.Fatalf("unexpected headers %v", p.headers)
	}

	var decoded models.SecurityLogEntry
	if err := json.Unmarshal(p.value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "evt-1" || decoded.EventType != models.EventTransferSuccess {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestElasticsearchSinkPublish(t *testing.T) {
	idx := &fakeIndexer{}
	sink := NewElasticsearchSink(idx, "security-events")

	if err := sink.Publish(context.Background(), sampleEntry()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if idx.index != "security-events" || idx.id != "evt-1" {
		t.Fatalf("unexpected index/id %q %q", idx.index, idx.id)
	}
}

func TestClickHouseSink(t *testing.T) {
	conn := &fakeClickHouse{}
	sink, err := NewClickHouseSink(conn, "securebank.security_events")
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	if err := sink.EnsureTable(context.Background()); err != nil {
		t.Fatalf("ensure table: %v", err)
	}
	if len(conn.execs) != 1 || !strings.Contains(conn.execs[0], "CREATE TABLE IF NOT EXISTS securebank.security_events") {
		t.Fatalf("unexpected ddl %v", conn.execs)
	}

	if err := sink.Publish(context.Background(), sampleEntry()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(conn.rows) != 1 || conn.rows[0][0] != "evt-1" || conn.rows[0][2] != "TRANSFER_SUCCESS" {
		t.Fatalf("unexpected rows %v", conn.rows)
	}
}

func TestClickHouseSinkRejectsBadTable(t *testing.T) {
	if _, err := NewClickHouseSink(&fakeClickHouse{}, "events; DROP TABLE x"); err == nil {
		t.Fatalf("expected invalid table name error")
	}
}
