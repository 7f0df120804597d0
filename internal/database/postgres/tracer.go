package postgres

import (
	"context"
	"strings"
	"time"

	"shiftmatch/internal/logger"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const DefaultSlowQueryThreshold = 250 * time.Millisecond

type traceKey struct{}

type traceStart struct {
	sql string
	at  time.Time
}

// queryTracer logs statements slower than slow at warn level and failed
// statements at debug level. pgx.ErrNoRows is not a failure.
type queryTracer struct {
	log  *zap.Logger
	slow time.Duration
	now  func() time.Time
}

func newQueryTracer(log *zap.Logger, slow time.Duration) *queryTracer {
	if slow <= 0 {
		slow = DefaultSlowQueryThreshold
	}
	return &queryTracer{log: logger.Component(log, "postgres"), slow: slow, now: time.Now}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{sql: data.SQL, at: t.now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	st, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(st.at)

	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		t.log.Debug("query failed",
			zap.String("sql", compactSQL(st.sql)),
			zap.Duration("elapsed", elapsed),
			zap.Error(data.Err),
		)
		return
	}
	if elapsed >= t.slow {
		t.log.Warn("slow query",
			zap.String("sql", compactSQL(st.sql)),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", data.CommandTag.RowsAffected()),
		)
	}
}

func compactSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
