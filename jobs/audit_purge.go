package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/fundament-gl/fundament/internal/audit"
	jobmetrics "github.com/fundament-gl/fundament/internal/jobs"
)

// AuditStore is the slice of the audit repository the purge job needs.
type AuditStore interface {
	PurgeExpired(ctx context.Context) (int64, error)
	Record(ctx context.Context, event audit.Event) error
}

// AuditPurgeJob drops audit events past their retention window. Mutation
// events are kept forever; only read-access and system events expire.
type AuditPurgeJob struct {
	Store   AuditStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAuditPurgeJob initialises the purge handler.
func NewAuditPurgeJob(store AuditStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditPurgeJob {
	return &AuditPurgeJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle executes the purge.
func (j *AuditPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("audit purge: handler not configured")
	}
	var payload AuditPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskAuditPurge)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if payload.DryRun {
		j.Logger.Info("audit purge dry run, nothing deleted")
		return nil
	}
	deleted, err := j.Store.PurgeExpired(ctx)
	if err != nil {
		resultErr = err
		j.Logger.Error("audit purge failed", slog.Any("error", err))
		return resultErr
	}
	_ = j.Store.Record(ctx, audit.Event{
		Category: audit.CategorySystem,
		Action:   "gl.job.audit_purge",
		Entity:   "job",
		EntityID: TaskAuditPurge,
		Meta:     map[string]any{"deleted": deleted},
	})
	j.Logger.Info("audit purge completed", slog.Int64("deleted", deleted))
	return nil
}
