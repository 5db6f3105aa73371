package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

// ErrRecorderClosed is returned by RecordWithRetry after Shutdown.
var ErrRecorderClosed = errors.New("audit recorder is closed")

// AuditRecord is what a service reports about a mutation. Before and After are
// marshalled to JSON.
type AuditRecord struct {
	Actor      string
	Action     domain.AuditAction
	EntityType domain.EntityType
	EntityID   string
	Before     any
	After      any
}

// AuditRecorderConfig tunes the recorder.
type AuditRecorderConfig struct {
	QueueSize            int
	WriteTimeout         time.Duration
	RetryMaxRetries      uint64
	RetryInitialInterval time.Duration
}

// DefaultAuditRecorderConfig returns the settings used when none are given.
func DefaultAuditRecorderConfig() AuditRecorderConfig {
	return AuditRecorderConfig{
		QueueSize:            1024,
		WriteTimeout:         5 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
	}
}

// AuditRecorder writes the audit trail. Record is fire-and-forget: a full
// queue or a failing backend loses the entry with a warning and never fails
// the business operation. RecordWithRetry writes synchronously with bounded
// exponential backoff.
type AuditRecorder struct {
	BaseService
	repo     portsrepo.AuditRepositoryFacade
	severity *SeverityTable
	cfg      AuditRecorderConfig
	logger   *slog.Logger
	now      func() time.Time

	queue chan domain.AuditEntry
	wg    sync.WaitGroup

	state   sync.RWMutex
	started bool
	closed  bool

	// chainMu serializes this process's appends; other writers sharing the
	// store are caught by the repository's head check.
	chainMu sync.Mutex
}

// maxRelinks bounds how often one write re-reads a head that another writer
// advanced first.
const maxRelinks = 5

// NewAuditRecorder creates a recorder. Call Start before recording.
func NewAuditRecorder(repo portsrepo.AuditRepositoryFacade, severity *SeverityTable, cfg AuditRecorderConfig, logger *slog.Logger) *AuditRecorder {
	def := DefaultAuditRecorderConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = def.RetryInitialInterval
	}
	if severity == nil {
		severity = DefaultSeverityTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditRecorder{
		repo:     repo,
		severity: severity,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "audit_recorder")),
		now:      time.Now,
		queue:    make(chan domain.AuditEntry, cfg.QueueSize),
	}
}

// Start checks that the chain head is readable and launches the background
// writer.
func (r *AuditRecorder) Start(ctx context.Context) error {
	r.state.Lock()
	defer r.state.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}
	if r.started {
		return nil
	}
	if _, err := r.repo.LastHash(ctx); err != nil {
		return fmt.Errorf("loading audit chain head: %w", err)
	}

	r.started = true
	r.wg.Add(1)
	go r.run()
	return nil
}

func (r *AuditRecorder) run() {
	defer r.wg.Done()
	for entry := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
		err := r.write(ctx, &entry)
		cancel()
		if err != nil {
			r.logger.Warn("Audit entry dropped",
				slog.String("error", err.Error()),
				slog.String("action", string(entry.Action)),
				slog.String("entity_type", string(entry.EntityType)),
				slog.String("entity_id", entry.EntityID))
		}
	}
}

// Record enqueues an entry without blocking. It reports whether the entry was
// accepted.
func (r *AuditRecorder) Record(ctx context.Context, rec AuditRecord) bool {
	entry, err := r.newEntry(rec)
	if err != nil {
		r.GetLogger(ctx).Warn("Audit entry dropped", slog.String("error", err.Error()))
		return false
	}

	r.state.RLock()
	defer r.state.RUnlock()
	if r.closed {
		r.GetLogger(ctx).Warn("Audit entry dropped: recorder closed",
			slog.String("action", string(entry.Action)),
			slog.String("entity_id", entry.EntityID))
		return false
	}
	select {
	case r.queue <- entry:
		return true
	default:
		r.GetLogger(ctx).Warn("Audit entry dropped: queue full",
			slog.String("action", string(entry.Action)),
			slog.String("entity_id", entry.EntityID),
			slog.Int("queue_size", r.cfg.QueueSize))
		return false
	}
}

// RecordWithRetry writes the entry before returning, retrying failed writes
// with exponential backoff up to the configured number of retries.
func (r *AuditRecorder) RecordWithRetry(ctx context.Context, rec AuditRecord) error {
	r.state.RLock()
	closed := r.closed
	r.state.RUnlock()
	if closed {
		return ErrRecorderClosed
	}

	entry, err := r.newEntry(rec)
	if err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.RetryInitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, r.cfg.RetryMaxRetries), ctx)

	attempts := 0
	operation := func() error {
		attempts++
		wctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
		defer cancel()
		return r.write(wctx, &entry)
	}
	notify := func(err error, wait time.Duration) {
		r.GetLogger(ctx).Warn("Audit write failed, retrying",
			slog.String("error", err.Error()),
			slog.Int("attempt", attempts),
			slog.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		r.GetLogger(ctx).Warn("Audit entry not recorded",
			slog.String("error", err.Error()),
			slog.Int("attempts", attempts),
			slog.String("entity_id", entry.EntityID))
		return fmt.Errorf("audit entry not recorded after %d attempts: %w", attempts, err)
	}
	return nil
}

// Shutdown stops accepting entries and waits for the queue to drain.
func (r *AuditRecorder) Shutdown(ctx context.Context) error {
	r.state.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.state.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// write links the entry to the stored chain head and appends it. The head is
// read from the store on every write so replicas sharing it extend one chain;
// when another writer wins the race the entry is relinked to the new head.
func (r *AuditRecorder) write(ctx context.Context, entry *domain.AuditEntry) error {
	r.chainMu.Lock()
	defer r.chainMu.Unlock()

	for attempt := 0; ; attempt++ {
		head, err := r.repo.LastHash(ctx)
		if err != nil {
			return fmt.Errorf("loading audit chain head: %w", err)
		}
		entry.PreviousHash = head
		entry.Hash = ComputeAuditHash(*entry)
		err = r.repo.AppendEntry(ctx, *entry)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) || attempt == maxRelinks {
			return err
		}
		r.logger.Debug("Audit chain head moved, relinking", slog.String("entry_id", entry.ID))
	}
}

func (r *AuditRecorder) newEntry(rec AuditRecord) (domain.AuditEntry, error) {
	if rec.Action == "" || rec.EntityType == "" || rec.EntityID == "" {
		return domain.AuditEntry{}, errors.New("audit record needs an action, entity type and entity id")
	}
	before, err := marshalSnapshot(rec.Before)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("marshalling audit before state: %w", err)
	}
	after, err := marshalSnapshot(rec.After)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("marshalling audit after state: %w", err)
	}
	return domain.AuditEntry{
		ID:         uuid.NewString(),
		Actor:      rec.Actor,
		Action:     rec.Action,
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		Before:     before,
		After:      after,
		Severity:   r.severity.Classify(rec.Action, rec.EntityType),
		Timestamp:  r.now().UTC().Truncate(time.Microsecond),
	}, nil
}

func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}
