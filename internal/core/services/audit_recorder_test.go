package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/smb_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/SscSPs/smb_ledger/internal/core/services"
)

var errSinkDown = errors.New("audit sink unavailable")

// flakyAuditRepo fails the first `failures` appends, then delegates.
type flakyAuditRepo struct {
	*memory.AuditRepository
	failures int64
	calls    atomic.Int64
}

func (r *flakyAuditRepo) AppendEntry(ctx context.Context, entry domain.AuditEntry) error {
	if r.calls.Add(1) <= r.failures {
		return errSinkDown
	}
	return r.AuditRepository.AppendEntry(ctx, entry)
}

func recorderConfig() services.AuditRecorderConfig {
	return services.AuditRecorderConfig{
		QueueSize:            8,
		WriteTimeout:         time.Second,
		RetryMaxRetries:      2,
		RetryInitialInterval: time.Millisecond,
	}
}

func startedRecorder(t *testing.T, repo *flakyAuditRepo, cfg services.AuditRecorderConfig) *services.AuditRecorder {
	t.Helper()
	r := services.NewAuditRecorder(repo, services.DefaultSeverityTable(), cfg, slog.Default())
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(func() { _ = r.Shutdown(context.Background()) })
	return r
}

func record(id string) services.AuditRecord {
	return services.AuditRecord{
		Actor:      testActor,
		Action:     domain.ActionPosted,
		EntityType: domain.EntityTransaction,
		EntityID:   id,
		After:      map[string]string{"id": id},
	}
}

func TestAuditRecorder_RecordDropsWhenQueueFull(t *testing.T) {
	repo := &flakyAuditRepo{AuditRepository: memory.NewAuditRepository()}
	cfg := recorderConfig()
	cfg.QueueSize = 1
	r := services.NewAuditRecorder(repo, nil, cfg, nil)

	// not started: nothing drains the queue
	assert.True(t, r.Record(context.Background(), record("txn-1")))
	assert.False(t, r.Record(context.Background(), record("txn-2")))

	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Shutdown(context.Background()))

	entries, err := repo.ListEntries(context.Background(), domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "txn-1", entries[0].EntityID)
}

func TestAuditRecorder_FailingSinkLosesEntryButKeepsChain(t *testing.T) {
	repo := &flakyAuditRepo{AuditRepository: memory.NewAuditRepository(), failures: 1}
	r := startedRecorder(t, repo, recorderConfig())
	ctx := context.Background()

	assert.True(t, r.Record(ctx, record("lost")))
	assert.True(t, r.Record(ctx, record("kept-1")))
	assert.True(t, r.Record(ctx, record("kept-2")))
	require.NoError(t, r.Shutdown(ctx))

	entries, err := repo.ListEntries(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "kept-1", entries[0].EntityID)
	assert.Empty(t, entries[0].PreviousHash)
	assert.True(t, services.VerifyAuditChain(entries).Valid)
}

func TestAuditRecorder_RejectsIncompleteRecord(t *testing.T) {
	repo := &flakyAuditRepo{AuditRepository: memory.NewAuditRepository()}
	r := startedRecorder(t, repo, recorderConfig())

	assert.False(t, r.Record(context.Background(), services.AuditRecord{Actor: testActor, Action: domain.ActionPosted}))
	assert.Error(t, r.RecordWithRetry(context.Background(), services.AuditRecord{EntityType: domain.EntityTransaction, EntityID: "x"}))
}

func TestAuditRecorder_RecordWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int64
		wantErr   bool
		wantCalls int64
	}{
		{name: "first attempt", failures: 0, wantCalls: 1},
		{name: "succeeds on last retry", failures: 2, wantCalls: 3},
		{name: "gives up after max retries", failures: 10, wantErr: true, wantCalls: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &flakyAuditRepo{AuditRepository: memory.NewAuditRepository(), failures: tt.failures}
			r := startedRecorder(t, repo, recorderConfig())

			err := r.RecordWithRetry(context.Background(), record("txn-void"))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errSinkDown)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, repo.calls.Load())

			entries, err := repo.ListEntries(context.Background(), domain.AuditFilter{})
			require.NoError(t, err)
			if tt.wantErr {
				assert.Empty(t, entries)
			} else {
				require.Len(t, entries, 1)
				assert.Equal(t, domain.SeverityHigh, entries[0].Severity)
			}
		})
	}
}

func TestAuditRecorder_RetryStopsWhenContextCancelled(t *testing.T) {
	repo := &flakyAuditRepo{AuditRepository: memory.NewAuditRepository(), failures: 100}
	cfg := recorderConfig()
	cfg.RetryMaxRetries = 50
	cfg.RetryInitialInterval = 50 * time.Millisecond
	r := startedRecorder(t, repo, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, r.RecordWithRetry(ctx, record("txn-void")))
	assert.Less(t, repo.calls.Load(), int64(50))
}

func TestAuditRecorder_ShutdownDrainsQueue(t *testing.T) {
	repo := &flakyAuditRepo{AuditRepository: memory.NewAuditRepository()}
	cfg := recorderConfig()
	cfg.QueueSize = 64
	r := services.NewAuditRecorder(repo, nil, cfg, nil)
	require.NoError(t, r.Start(context.Background()))
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.True(t, r.Record(ctx, record(fmt.Sprintf("txn-%02d", i))))
	}
	require.NoError(t, r.Shutdown(ctx))

	entries, err := repo.ListEntries(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 50)
	assert.True(t, services.VerifyAuditChain(entries).Valid)

	assert.False(t, r.Record(ctx, record("late")))
	assert.ErrorIs(t, r.RecordWithRetry(ctx, record("late")), services.ErrRecorderClosed)
	assert.NoError(t, r.Shutdown(ctx), "shutdown is idempotent")
	assert.ErrorIs(t, r.Start(ctx), services.ErrRecorderClosed)
}

func TestAuditRecorder_ConcurrentWritersShareOneChain(t *testing.T) {
	repo := &flakyAuditRepo{AuditRepository: memory.NewAuditRepository()}
	cfg := recorderConfig()
	cfg.QueueSize = 256
	r := startedRecorder(t, repo, cfg)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Record(ctx, record(fmt.Sprintf("async-%d", i)))
		}(i)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, r.RecordWithRetry(ctx, record(fmt.Sprintf("sync-%d", i))))
		}(i)
	}
	wg.Wait()
	require.NoError(t, r.Shutdown(ctx))

	entries, err := repo.ListEntries(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 40)
	assert.True(t, services.VerifyAuditChain(entries).Valid)
}

func TestAuditRecorder_ContinuesExistingChain(t *testing.T) {
	store := memory.NewAuditRepository()
	ctx := context.Background()

	first := services.NewAuditRecorder(store, nil, recorderConfig(), nil)
	require.NoError(t, first.Start(ctx))
	require.NoError(t, first.RecordWithRetry(ctx, record("txn-1")))
	require.NoError(t, first.Shutdown(ctx))

	second := services.NewAuditRecorder(store, nil, recorderConfig(), nil)
	require.NoError(t, second.Start(ctx))
	require.NoError(t, second.RecordWithRetry(ctx, record("txn-2")))
	require.NoError(t, second.Shutdown(ctx))

	entries, err := store.ListEntries(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Hash, entries[1].PreviousHash)
	assert.True(t, services.VerifyAuditChain(entries).Valid)
}

func TestAuditRecorder_ReplicasSharingAStoreKeepOneChain(t *testing.T) {
	store := memory.NewAuditRepository()
	ctx := context.Background()

	a := services.NewAuditRecorder(store, nil, recorderConfig(), nil)
	b := services.NewAuditRecorder(store, nil, recorderConfig(), nil)
	require.NoError(t, a.Start(ctx))
	require.NoError(t, b.Start(ctx))
	for i := 0; i < 3; i++ {
		require.NoError(t, a.RecordWithRetry(ctx, record(fmt.Sprintf("a-%d", i))))
		require.NoError(t, b.RecordWithRetry(ctx, record(fmt.Sprintf("b-%d", i))))
	}
	require.NoError(t, a.Shutdown(ctx))
	require.NoError(t, b.Shutdown(ctx))

	entries, err := store.ListEntries(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 6)
	assert.True(t, services.VerifyAuditChain(entries).Valid)
}

// racingAuditRepo lets another writer append between the recorder reading
// the head and its first append.
type racingAuditRepo struct {
	*memory.AuditRepository
	other *services.AuditRecorder
	once  sync.Once
}

func (r *racingAuditRepo) AppendEntry(ctx context.Context, entry domain.AuditEntry) error {
	r.once.Do(func() {
		_ = r.other.RecordWithRetry(ctx, record("other-replica"))
	})
	return r.AuditRepository.AppendEntry(ctx, entry)
}

func TestAuditRecorder_RelinksWhenHeadMoves(t *testing.T) {
	store := memory.NewAuditRepository()
	ctx := context.Background()

	other := services.NewAuditRecorder(store, nil, recorderConfig(), nil)
	require.NoError(t, other.Start(ctx))
	t.Cleanup(func() { _ = other.Shutdown(context.Background()) })

	cfg := recorderConfig()
	cfg.RetryMaxRetries = 0
	r := services.NewAuditRecorder(&racingAuditRepo{AuditRepository: store, other: other}, nil, cfg, nil)
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.RecordWithRetry(ctx, record("mine")))
	require.NoError(t, r.Shutdown(ctx))

	entries, err := store.ListEntries(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "other-replica", entries[0].EntityID)
	assert.Equal(t, "mine", entries[1].EntityID)
	assert.Equal(t, entries[0].Hash, entries[1].PreviousHash)
	assert.True(t, services.VerifyAuditChain(entries).Valid)
}

func TestVerifyAuditChain_DetectsTampering(t *testing.T) {
	store := memory.NewAuditRepository()
	ctx := context.Background()
	r := services.NewAuditRecorder(store, nil, recorderConfig(), nil)
	require.NoError(t, r.Start(ctx))
	for i := 0; i < 4; i++ {
		require.NoError(t, r.RecordWithRetry(ctx, record(fmt.Sprintf("txn-%d", i))))
	}
	require.NoError(t, r.Shutdown(ctx))

	entries, err := store.ListEntries(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.True(t, services.VerifyAuditChain(entries).Valid)

	edited := append([]domain.AuditEntry(nil), entries...)
	edited[2].After = json.RawMessage(`{"id":"something-else"}`)
	got := services.VerifyAuditChain(edited)
	assert.False(t, got.Valid)
	assert.Equal(t, entries[2].ID, got.BrokenAt)

	removed := append(append([]domain.AuditEntry(nil), entries[:1]...), entries[2:]...)
	got = services.VerifyAuditChain(removed)
	assert.False(t, got.Valid)
	assert.Equal(t, entries[2].ID, got.BrokenAt)
}

func TestAuditService_VerifyChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Ledger.PostEvent(ctx, saleEvent("inv-audit", "100.00", "16.00"), testActor)
	require.NoError(t, err)
	waitForAudit(t, f, 1)

	v, err := f.svc.Audit.VerifyChain(ctx)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, 1, v.Entries)

	listed, err := f.svc.Audit.ListEntries(ctx, domain.AuditFilter{EntityType: domain.EntityTransaction})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.ActionPosted, listed[0].Action)
	assert.Equal(t, testActor, listed[0].Actor)
}
