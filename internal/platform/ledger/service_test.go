package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepo mimics the audit_ledger table, including the unique constraint
// on seq.
type mockRepo struct {
	mu      sync.Mutex
	entries []*Entry
}

func (m *mockRepo) Append(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.entries {
		if existing.Seq == e.Seq {
			return ErrSeqConflict
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepo) Last(_ context.Context) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return nil, nil
	}
	return m.entries[len(m.entries)-1], nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Entry, int, error) {
	return m.entries, len(m.entries), nil
}

func (m *mockRepo) ListByResource(_ context.Context, resourceType, resourceID string) ([]*Entry, error) {
	var out []*Entry
	for _, e := range m.entries {
		if e.ResourceType == resourceType && e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) All(_ context.Context) ([]*Entry, error) {
	return m.entries, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := &mockRepo{}
	return NewService(repo, zerolog.Nop()), repo
}

func TestRecordChainsEntries(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Record(ctx, "nurse-1", "nurse", "triage.create", "triage_entry", "abc", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Seq)
	assert.Empty(t, first.PrevHash)
	assert.NotEmpty(t, first.Hash)

	second, err := svc.Record(ctx, "doctor-1", "doctor", "triage.assign", "triage_entry", "abc", map[string]interface{}{"doctor": "doctor-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, first.Hash, second.PrevHash)
}

func TestRecordRequiresActorAndAction(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Record(ctx, "", "nurse", "triage.create", "triage_entry", "abc", nil)
	assert.Error(t, err)

	_, err = svc.Record(ctx, "nurse-1", "nurse", "", "triage_entry", "abc", nil)
	assert.Error(t, err)
}

func TestVerifyIntactChain(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Record(ctx, "nurse-1", "nurse", "vitals.log", "patient", "p1", nil)
		require.NoError(t, err)
	}

	result, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 5, result.Entries)
}

func TestVerifyDetectsTamperedEntry(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Record(ctx, "nurse-1", "nurse", "vitals.log", "patient", "p1", nil)
		require.NoError(t, err)
	}

	// Retroactive edit of a stored entry must fail verification at that seq.
	repo.entries[1].Actor = "intruder"

	result, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, int64(2), result.BadSeq)
}

func TestVerifyDetectsBrokenLink(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, "nurse-1", "nurse", "vitals.log", "patient", "p1", nil)
		require.NoError(t, err)
	}

	// Re-pointing an entry at a forged predecessor breaks the chain even if
	// its own hash is recomputed to match.
	repo.entries[2].PrevHash = "forged"
	repo.entries[2].Hash = ComputeHash(repo.entries[2])

	result, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, int64(3), result.BadSeq)
}

// contendedRepo simulates another server instance stealing the chain tip:
// the first n appends find their position already taken by a competing entry.
type contendedRepo struct {
	*mockRepo
	conflicts int
}

func (r *contendedRepo) Append(ctx context.Context, e *Entry) error {
	if r.conflicts > 0 {
		r.conflicts--
		rival := &Entry{
			ID:        uuid.New(),
			Seq:       e.Seq,
			Actor:     "other-node",
			ActorRole: "system",
			Action:    "patient.read",
			PrevHash:  e.PrevHash,
			CreatedAt: time.Now().UTC(),
		}
		rival.Hash = ComputeHash(rival)
		if err := r.mockRepo.Append(ctx, rival); err != nil {
			return err
		}
		return ErrSeqConflict
	}
	return r.mockRepo.Append(ctx, e)
}

func TestRecord_ConcurrentAppendsAllLand(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	const writers = 20
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Record(ctx, "nurse-1", "nurse", "vitals.log", "patient", "p1", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, repo.entries, writers)

	result, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, writers, result.Entries)
}

func TestRecord_RetriesPastCompetingWriter(t *testing.T) {
	repo := &contendedRepo{mockRepo: &mockRepo{}, conflicts: 2}
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	e, err := svc.Record(ctx, "nurse-1", "nurse", "vitals.log", "patient", "p1", nil)
	require.NoError(t, err)

	// Two rival entries landed first; ours must sit behind them, linked to
	// the final rival's hash.
	assert.Equal(t, int64(3), e.Seq)
	assert.Len(t, repo.entries, 3)
	assert.Equal(t, repo.entries[1].Hash, e.PrevHash)

	result, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestRecord_GivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := &contendedRepo{mockRepo: &mockRepo{}, conflicts: maxAppendRetries}
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Record(context.Background(), "nurse-1", "nurse", "vitals.log", "patient", "p1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSeqConflict)
}

func TestTrailFiltersByResource(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	svc.Record(ctx, "nurse-1", "nurse", "triage.create", "triage_entry", "a", nil)
	svc.Record(ctx, "nurse-1", "nurse", "triage.create", "triage_entry", "b", nil)
	svc.Record(ctx, "doctor-1", "doctor", "triage.assign", "triage_entry", "a", nil)

	trail, err := svc.Trail(ctx, "triage_entry", "a")
	require.NoError(t, err)
	assert.Len(t, trail, 2)
}
