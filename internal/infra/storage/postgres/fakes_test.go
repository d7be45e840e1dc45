package postgres

import (
	"context"
	"database/sql"
	"sync"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeResult struct {
	rows int64
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

// fakeConn returns the queued errors in order, then succeeds.
type fakeConn struct {
	mu      sync.Mutex
	errs    []error
	onCall  func()
	calls   int
	queries []string
	args    [][]any
	pingErr error
	closed  bool
}

func (f *fakeConn) next(query string, args []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	if f.onCall != nil {
		f.onCall()
	}
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeConn) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	if err := f.next(query, args); err != nil {
		return err
	}
	if rows, ok := dest.(*[]string); ok {
		*rows = append(*rows, "row")
	}
	return nil
}

func (f *fakeConn) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	if err := f.next(query, args); err != nil {
		return err
	}
	if id, ok := dest.(*int64); ok {
		*id = 42
	}
	return nil
}

func (f *fakeConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := f.next(query, args); err != nil {
		return nil, err
	}
	return fakeResult{rows: 1}, nil
}

func (f *fakeConn) PingContext(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeConn) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeProvider always hands out the same handle and records failures.
type fakeProvider struct {
	mu       sync.Mutex
	conn     Conn
	reported []error
}

func (p *fakeProvider) Conn() Conn {
	return p.conn
}

func (p *fakeProvider) ReportFailure(conn Conn, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reported = append(p.reported, err)
}
