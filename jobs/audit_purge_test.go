package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fundament-gl/fundament/internal/audit"
)

type fakeAuditStore struct {
	deleted int64
	purges  int
	events  []audit.Event
}

func (s *fakeAuditStore) PurgeExpired(context.Context) (int64, error) {
	s.purges++
	return s.deleted, nil
}

func (s *fakeAuditStore) Record(_ context.Context, event audit.Event) error {
	s.events = append(s.events, event)
	return nil
}

func TestAuditPurgeRecordsSystemEvent(t *testing.T) {
	store := &fakeAuditStore{deleted: 42}
	job := NewAuditPurgeJob(store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	task, err := NewAuditPurgeTask(AuditPurgePayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Equal(t, 1, store.purges)
	require.Len(t, store.events, 1)
	event := store.events[0]
	require.Equal(t, audit.CategorySystem, event.Category)
	require.Equal(t, "gl.job.audit_purge", event.Action)
	require.Equal(t, int64(42), event.Meta["deleted"])
}

func TestAuditPurgeDryRunTouchesNothing(t *testing.T) {
	store := &fakeAuditStore{deleted: 42}
	job := NewAuditPurgeJob(store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	task, err := NewAuditPurgeTask(AuditPurgePayload{DryRun: true})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Zero(t, store.purges)
	require.Empty(t, store.events)
}
