package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/redact"
	"github.com/phrazzld/agora-api/internal/store"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// engine bundles what every entity store needs.
type engine struct {
	db      store.DBTX
	breaker *Breaker
	logger  *slog.Logger
}

func newEngine(db store.DBTX, breaker *Breaker, log *slog.Logger, component string) engine {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if breaker == nil {
		breaker = NewBreaker(BreakerConfig{}, log)
	}
	return engine{
		db:      db,
		breaker: breaker,
		logger:  log.With(slog.String("component", component)),
	}
}

func (e engine) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, e.logger)
}

// guarded runs fn through the breaker and maps database errors.
func guarded[T any](e engine, fn func() (T, error)) (T, error) {
	var out T
	err := e.breaker.Do(func() error {
		var err error
		out, err = fn()
		return MapError(err)
	})
	return out, err
}

// count runs a COUNT(*) for filter over t.
func (e engine) count(ctx context.Context, t table, filter store.Filter) (int, error) {
	query, params, err := t.selectCount(filter)
	if err != nil {
		return 0, err
	}
	n, err := guarded(e, func() (int, error) {
		var n int
		err := e.db.QueryRowContext(ctx, query, params...).Scan(&n)
		return n, err
	})
	if err != nil {
		e.log(ctx).Error("count failed", slog.String("table", t.name), redact.ErrorAttr(err))
		return 0, store.NewStoreError(t.name, "count", "query failed", err)
	}
	return n, nil
}

// findAll runs a windowed SELECT and scans every row with scan.
func findAll[T any](
	ctx context.Context,
	e engine,
	t table,
	cols string,
	q store.Query,
	scan func(rowScanner) (*T, error),
) ([]*T, error) {
	query, params, err := t.selectPage(cols, q)
	if err != nil {
		return nil, err
	}
	out, err := guarded(e, func() ([]*T, error) {
		rows, err := e.db.QueryContext(ctx, query, params...)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()

		items := make([]*T, 0, q.Limit)
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, rows.Err()
	})
	if err != nil {
		e.log(ctx).Error("find failed", slog.String("table", t.name), redact.ErrorAttr(err))
		return nil, store.NewStoreError(t.name, "find", "query failed", err)
	}
	e.log(ctx).Debug("find completed",
		slog.String("table", t.name),
		slog.Int("rows", len(out)),
		slog.Int("skip", q.Skip),
		slog.Int("limit", q.Limit))
	return out, nil
}

// exec runs a statement that must touch one row; zero rows yields notFound.
func (e engine) exec(ctx context.Context, notFound error, query string, params ...any) error {
	_, err := guarded(e, func() (struct{}, error) {
		res, err := e.db.ExecContext(ctx, query, params...)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, CheckRowsAffected(res, notFound)
	})
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullable dereferences p, or returns nil for SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
