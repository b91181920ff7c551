package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"sync"
)

// stubConn is a minimal database/sql driver backing the store tests without a
// running Postgres. It records executed statements and keeps the bucket table
// in a map so persisted snapshots can be asserted and reloaded.
type stubConn struct {
	mu      sync.Mutex
	execs   []string
	buckets map[string][]byte
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{buckets: map[string][]byte{}}
	return sql.OpenDB(stubConnector{conn: conn}), conn
}

type stubConnector struct {
	conn *stubConn
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }

func (c stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, driver.ErrBadConn }

var (
	_ driver.Conn           = (*stubConn)(nil)
	_ driver.Pinger         = (*stubConn)(nil)
	_ driver.ExecerContext  = (*stubConn)(nil)
	_ driver.QueryerContext = (*stubConn)(nil)
	_ driver.ConnBeginTx    = (*stubConn)(nil)
)

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) Ping(context.Context) error { return nil }

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	if strings.HasPrefix(query, "INSERT INTO state") && len(args) == 2 {
		bucket, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		c.buckets[bucket] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !strings.Contains(query, "FROM state") {
		return &stubRows{}, nil
	}
	rows := &stubRows{}
	for bucket, payload := range c.buckets {
		rows.data = append(rows.data, [2]any{bucket, append([]byte(nil), payload...)})
	}
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error { return nil }

func (stubTx) Rollback() error { return nil }

type stubRows struct {
	data []([2]any)
	pos  int
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	row := r.data[r.pos]
	r.pos++
	dest[0] = row[0]
	dest[1] = row[1]
	return nil
}
