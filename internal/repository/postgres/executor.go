package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/the1323/cs166-project-the033-hbai013/pkg/metrics"
)

// Table is a query result with its column names, every value stringified.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Executor is the thin SQL wrapper every repository goes through. It works
// on a *sqlx.DB or a *sqlx.Tx.
type Executor struct {
	q       sqlx.ExtContext
	metrics *metrics.Metrics
}

func NewExecutor(q sqlx.ExtContext, m *metrics.Metrics) *Executor {
	return &Executor{q: q, metrics: m}
}

func (e *Executor) observe(op string, start time.Time, err error) {
	if e.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.DatabaseOperations.WithLabelValues(op, status).Inc()
	e.metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ExecuteQuery runs a query and returns the number of rows it produced.
func (e *Executor) ExecuteQuery(ctx context.Context, query string, args ...interface{}) (count int, err error) {
	start := time.Now()
	defer func() { e.observe("query", start, err) }()

	rows, err := e.q.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		count++
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read rows: %w", err)
	}
	return count, nil
}

// ExecuteQueryAndReturnResult returns every row as a list of stringified
// column values. NULL becomes "".
func (e *Executor) ExecuteQueryAndReturnResult(ctx context.Context, query string, args ...interface{}) ([][]string, error) {
	t, err := e.ExecuteQueryAndReturnTable(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return t.Rows, nil
}

// ExecuteQueryAndReturnTable is ExecuteQueryAndReturnResult plus the
// column header, for printing.
func (e *Executor) ExecuteQueryAndReturnTable(ctx context.Context, query string, args ...interface{}) (t *Table, err error) {
	start := time.Now()
	defer func() { e.observe("query", start, err) }()

	rows, err := e.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return scanTable(rows)
}

func scanTable(rows *sql.Rows) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	t := &Table{Columns: cols, Rows: [][]string{}}
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record := make([]string, len(cols))
		for i, v := range values {
			record[i] = stringify(v)
		}
		t.Rows = append(t.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return t, nil
}

// ExecuteUpdate runs INSERT/UPDATE/DELETE/DDL and returns the affected row count.
func (e *Executor) ExecuteUpdate(ctx context.Context, query string, args ...interface{}) (affected int64, err error) {
	start := time.Now()
	defer func() { e.observe("update", start, err) }()

	res, err := e.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute update: %w", err)
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// Get scans a single row into dest.
func (e *Executor) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) (err error) {
	start := time.Now()
	defer func() { e.observe("get", start, err) }()
	return sqlx.GetContext(ctx, e.q, dest, query, args...)
}

// Select scans all rows into dest, a pointer to a slice.
func (e *Executor) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) (err error) {
	start := time.Now()
	defer func() { e.observe("select", start, err) }()
	return sqlx.SelectContext(ctx, e.q, dest, query, args...)
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
