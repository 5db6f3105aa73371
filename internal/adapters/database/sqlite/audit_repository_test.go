package sqlite_test

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/smb_ledger/internal/adapters/database/sqlite"
	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/SscSPs/smb_ledger/internal/core/services"
)

func newRepo(t *testing.T, path string) *sqlite.AuditRepository {
	t.Helper()
	repo, err := sqlite.NewAuditRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func record(i int) services.AuditRecord {
	return services.AuditRecord{
		Actor:      "user-1",
		Action:     domain.ActionPosted,
		EntityType: domain.EntityTransaction,
		EntityID:   fmt.Sprintf("txn-%d", i),
		After:      map[string]any{"amount": i * 100, "memo": "sale"},
	}
}

func TestAuditRepository_ChainSurvivesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, ":memory:")

	r := services.NewAuditRecorder(repo, nil, services.DefaultAuditRecorderConfig(), slog.Default())
	require.NoError(t, r.Start(ctx))
	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordWithRetry(ctx, record(i)))
	}
	require.NoError(t, r.Shutdown(ctx))

	entries, err := repo.ListEntries(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Sequence)
		assert.Empty(t, e.Before)
		assert.JSONEq(t, fmt.Sprintf(`{"amount":%d,"memo":"sale"}`, i*100), string(e.After))
	}
	assert.True(t, services.VerifyAuditChain(entries).Valid)

	head, err := repo.LastHash(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries[4].Hash, head)
}

func TestAuditRepository_FiltersAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, ":memory:")

	head, err := repo.LastHash(ctx)
	require.NoError(t, err)
	assert.Empty(t, head)

	r := services.NewAuditRecorder(repo, nil, services.DefaultAuditRecorderConfig(), nil)
	require.NoError(t, r.Start(ctx))
	for i := 0; i < 4; i++ {
		require.NoError(t, r.RecordWithRetry(ctx, record(i)))
	}
	require.NoError(t, r.RecordWithRetry(ctx, services.AuditRecord{
		Actor: "user-1", Action: domain.ActionImported, EntityType: domain.EntityReconciliationSession, EntityID: "sess-1",
	}))
	require.NoError(t, r.Shutdown(ctx))

	last2, err := repo.ListEntries(ctx, domain.AuditFilter{EntityType: domain.EntityTransaction, Limit: 2})
	require.NoError(t, err)
	require.Len(t, last2, 2)
	assert.Equal(t, "txn-2", last2[0].EntityID)
	assert.Equal(t, "txn-3", last2[1].EntityID)

	one, err := repo.ListEntries(ctx, domain.AuditFilter{EntityID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, domain.SeverityLow, one[0].Severity)

	err = repo.AppendEntry(ctx, one[0])
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	stale := one[0]
	stale.ID = "fork-1"
	err = repo.AppendEntry(ctx, stale)
	assert.ErrorIs(t, err, apperrors.ErrConflict, "a stale head must not fork the chain")
}

func TestAuditRepository_ReopensFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.db")

	first, err := sqlite.NewAuditRepository(path)
	require.NoError(t, err)
	r := services.NewAuditRecorder(first, nil, services.DefaultAuditRecorderConfig(), nil)
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.RecordWithRetry(ctx, record(1)))
	require.NoError(t, r.Shutdown(ctx))
	require.NoError(t, first.Close())

	second := newRepo(t, path)
	r = services.NewAuditRecorder(second, nil, services.DefaultAuditRecorderConfig(), nil)
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.RecordWithRetry(ctx, record(2)))
	require.NoError(t, r.Shutdown(ctx))

	entries, err := second.ListEntries(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, services.VerifyAuditChain(entries).Valid)
}
