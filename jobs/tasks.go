package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditPurge drops audit events past their retention window.
	TaskAuditPurge = "audit:purge"
	// TaskGLIntegrity scans posted totals per fiscal period for imbalance.
	TaskGLIntegrity = "gl:integrity"
)

// AuditPurgePayload configures one purge run. An empty payload purges with
// the standard retention tiers.
type AuditPurgePayload struct {
	DryRun bool `json:"dry_run"`
}

// NewAuditPurgeTask constructs an audit purge task.
func NewAuditPurgeTask(payload AuditPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPurge, data), nil
}

// GLIntegrityPayload configures one integrity scan. Zero values scan every
// period.
type GLIntegrityPayload struct {
	PeriodCode string `json:"period_code,omitempty"`
}

// NewGLIntegrityTask constructs an integrity scan task.
func NewGLIntegrityTask(payload GLIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrity, data), nil
}
