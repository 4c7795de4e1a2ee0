package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cataloger/internal/infra"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

// scanRows serves a fixed sequence of scan functions, one per row.
type scanRows struct {
	testRowsBase
	scans []func(dest ...any) error
	pos   int
	err   error
}

func (r *scanRows) Next() bool {
	return r.pos < len(r.scans)
}

func (r *scanRows) Scan(dest ...any) error {
	scan := r.scans[r.pos]
	r.pos++
	return scan(dest...)
}

func (r *scanRows) Err() error { return r.err }

func (r *scanRows) Close() {}

var _ pgx.Rows = (*scanRows)(nil)

type execCall struct {
	query string
	args  []any
}

// fakeExecutor scripts responses per query constant so repository logic can
// be exercised without a live database.
type fakeExecutor struct {
	execs    []execCall
	execTags map[string]pgconn.CommandTag
	execErr  error
	rows     map[string]func(args []any) pgx.Row
	queryFn  func(query string, args []any) (pgx.Rows, error)
}

func (f *fakeExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{query: query, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if tag, ok := f.execTags[query]; ok {
		return tag, nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if fn, ok := f.rows[query]; ok {
		return fn(args)
	}
	return simpleRow{}
}

func (f *fakeExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if f.queryFn != nil {
		return f.queryFn(query, args)
	}
	return &scanRows{}, nil
}

var _ infra.SQLExecutor = (*fakeExecutor)(nil)
