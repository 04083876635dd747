package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/pkg/ids"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	fail   bool
}

func (r *recordingRepo) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("mongo down")
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *recordingRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEvent(nil), r.events...)
}

func TestDispatcher_PreservesPerActorOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 50; i++ {
		d.Record(context.Background(), domain.AuditEvent{
			Action:  domain.AuditLogin,
			ActorID: "actor-1",
			Detail:  strconv.Itoa(i),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	got := repo.snapshot()
	require.Len(t, got, 50)
	for i, ev := range got {
		assert.Equal(t, strconv.Itoa(i), ev.Detail)
	}
}

func TestDispatcher_FillsRequestIDAndTimestamp(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	ctx := ids.WithRequestID(context.Background(), "req-42")
	d.Record(ctx, domain.AuditEvent{Action: domain.AuditRegister, ActorID: "a"})
	require.NoError(t, d.Stop(context.Background()))

	got := repo.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "req-42", got[0].RequestID)
	assert.False(t, got[0].OccurredAt.IsZero())
}

func TestDispatcher_DropsWhenShardFull(t *testing.T) {
	repo := &recordingRepo{}
	d := newDispatcher(1, 1, repo, zerolog.Nop())

	for i := 0; i < 3; i++ {
		d.Record(context.Background(), domain.AuditEvent{Action: domain.AuditLogin, ActorID: "a"})
	}
	assert.Equal(t, int64(2), d.Dropped())

	d.Start(context.Background())
	require.NoError(t, d.Stop(context.Background()))
	assert.Len(t, repo.snapshot(), 1)
}

func TestDispatcher_RecordAfterStopIsDropped(t *testing.T) {
	d := NewDispatcher(2, &recordingRepo{}, zerolog.Nop())
	d.Start(context.Background())
	require.NoError(t, d.Stop(context.Background()))

	d.Record(context.Background(), domain.AuditEvent{Action: domain.AuditLogout, ActorID: "a"})
	assert.Equal(t, int64(1), d.Dropped())
	require.NoError(t, d.Stop(context.Background()))
}

func TestDispatcher_PersistenceFailureDoesNotStopWorker(t *testing.T) {
	repo := &recordingRepo{fail: true}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	d.Record(context.Background(), domain.AuditEvent{Action: domain.AuditLogin, ActorID: "a"})
	d.Record(context.Background(), domain.AuditEvent{Action: domain.AuditLogin, ActorID: "a"})
	require.NoError(t, d.Stop(context.Background()))
	assert.Empty(t, repo.snapshot())
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())
	first := d.shardIndex("64b7f0c2a1b2c3d4e5f60718")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("64b7f0c2a1b2c3d4e5f60718"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}
