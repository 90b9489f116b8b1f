package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fundament-gl/fundament/internal/audit"
	jobmetrics "github.com/fundament-gl/fundament/internal/jobs"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// GLIntegrityJob verifies that posted debits equal posted credits per fiscal
// period. Entry validation should make an imbalance impossible; this scan is
// the backstop that pages someone if it happens anyway.
type GLIntegrityJob struct {
	Pool    *pgxpool.Pool
	Audit   audit.Recorder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewGLIntegrityJob initialises the integrity scan handler.
func NewGLIntegrityJob(pool *pgxpool.Pool, recorder audit.Recorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &GLIntegrityJob{
		Pool:    pool,
		Audit:   recorder,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type periodTotals struct {
	Code    string
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// Handle executes the integrity scan.
func (j *GLIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("gl integrity: handler not configured")
	}
	var payload GLIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.clock()
	tracker := j.Metrics.Track(TaskGLIntegrity)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	totals, err := j.scan(ctx, payload.PeriodCode)
	if err != nil {
		resultErr = err
		j.Logger.Error("integrity scan failed", slog.Any("error", err))
		return resultErr
	}

	unbalanced := 0
	for _, pt := range totals {
		if shared.Balanced(pt.Debits, pt.Credits) {
			continue
		}
		unbalanced++
		j.Metrics.AddImbalance(pt.Code)
		j.Logger.Warn("period totals out of balance",
			slog.String("period", pt.Code),
			slog.String("debits", pt.Debits.StringFixed(2)),
			slog.String("credits", pt.Credits.StringFixed(2)),
		)
	}

	_ = j.Audit.Record(ctx, audit.Event{
		Category: audit.CategorySystem,
		Action:   "gl.job.integrity_scan",
		Entity:   "job",
		EntityID: TaskGLIntegrity,
		Meta:     map[string]any{"periods": len(totals), "unbalanced": unbalanced},
	})
	j.Logger.Info("integrity scan completed",
		slog.Int("periods", len(totals)),
		slog.Int("unbalanced", unbalanced),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *GLIntegrityJob) scan(ctx context.Context, periodCode string) ([]periodTotals, error) {
	query := `SELECT p.code, COALESCE(SUM(l.debit_amount),0), COALESCE(SUM(l.credit_amount),0)
FROM fiscal_periods p
LEFT JOIN journal_entries e ON e.fiscal_period_id = p.id AND e.status='posted'
LEFT JOIN journal_lines l ON l.journal_entry_id = e.id`
	args := []any{}
	if periodCode != "" {
		query += ` WHERE p.code=$1`
		args = append(args, periodCode)
	}
	query += ` GROUP BY p.code ORDER BY p.code`

	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []periodTotals
	for rows.Next() {
		var pt periodTotals
		if err := rows.Scan(&pt.Code, &pt.Debits, &pt.Credits); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}
