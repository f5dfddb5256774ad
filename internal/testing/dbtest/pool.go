// Package dbtest provides an in-memory database.Store for tests. It records
// every statement it is asked to run and tracks how many connections are
// checked out, so tests can assert on binding and release behaviour without
// a real PostgreSQL.
package dbtest

import (
	"context"
	"sync"

	"github.com/deppfellow/tokenfarms-api/internal/database"
)

// Query is one recorded call to Conn.Query.
type Query struct {
	SQL  string
	Args []any
}

// Pool is a fake database.Store. The zero value is ready to use and answers
// every query with no rows.
type Pool struct {
	// AcquireErr, when set, fails every Acquire.
	AcquireErr error
	// QueryErr, when set, fails every Query after the connection is taken.
	QueryErr error
	// PingErr is returned by Ping.
	PingErr error
	// QueryFunc answers queries when set. It wins over Rows.
	QueryFunc func(ctx context.Context, sql string, args []any) ([]database.Row, error)
	// Rows is returned by every query when QueryFunc is nil.
	Rows []database.Row

	mu       sync.Mutex
	queries  []Query
	inUse    int
	acquired int
	closed   bool
}

var _ database.Store = (*Pool)(nil)

// Acquire hands out a fake connection unless AcquireErr is set or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (database.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.AcquireErr != nil {
		return nil, p.AcquireErr
	}

	p.mu.Lock()
	p.inUse++
	p.acquired++
	p.mu.Unlock()

	return &conn{pool: p}, nil
}

func (p *Pool) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.PingErr
}

func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Queries returns a copy of every query run so far, in order.
func (p *Pool) Queries() []Query {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Query, len(p.queries))
	copy(out, p.queries)
	return out
}

// LastQuery returns the most recent query. ok is false when nothing ran.
func (p *Pool) LastQuery() (q Query, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queries) == 0 {
		return Query{}, false
	}
	return p.queries[len(p.queries)-1], true
}

// InUse is the number of connections currently checked out.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Acquired is the total number of successful Acquire calls.
func (p *Pool) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

func (p *Pool) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type conn struct {
	pool     *Pool
	released bool
}

func (c *conn) Query(ctx context.Context, sql string, args ...any) ([]database.Row, error) {
	p := c.pool

	p.mu.Lock()
	p.queries = append(p.queries, Query{SQL: sql, Args: append([]any(nil), args...)})
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.QueryErr != nil {
		return nil, p.QueryErr
	}
	if p.QueryFunc != nil {
		return p.QueryFunc(ctx, sql, args)
	}
	return p.Rows, nil
}

// Release panics on a double release so tests catch it.
func (c *conn) Release() {
	if c.released {
		panic("dbtest: connection released twice")
	}
	c.released = true

	c.pool.mu.Lock()
	c.pool.inUse--
	c.pool.mu.Unlock()
}
