package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Appends retry this many times when another writer wins the chain position.
const maxAppendRetries = 5

type Service struct {
	repo Repository
	log  zerolog.Logger

	// Serializes appends from this process so concurrent requests never
	// race each other for the chain tip. Conflicts with other server
	// instances still surface as ErrSeqConflict and are retried.
	appendMu sync.Mutex
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record appends a new entry to the chain. The entry's hash links it to the
// current tail. Appends are serialized in-process; a conflict with another
// writer re-reads the tail and retries, so no entry is dropped under
// concurrency.
func (s *Service) Record(ctx context.Context, actor, actorRole, action, resourceType, resourceID string, details map[string]interface{}) (*Entry, error) {
	if actor == "" {
		return nil, fmt.Errorf("actor is required")
	}
	if action == "" {
		return nil, fmt.Errorf("action is required")
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxAppendRetries; attempt++ {
		last, err := s.repo.Last(ctx)
		if err != nil {
			return nil, fmt.Errorf("read chain tail: %w", err)
		}

		e := &Entry{
			ID:           uuid.New(),
			Seq:          1,
			Actor:        actor,
			ActorRole:    actorRole,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Details:      details,
			CreatedAt:    time.Now().UTC(),
		}
		if last != nil {
			e.Seq = last.Seq + 1
			e.PrevHash = last.Hash
		}
		e.Hash = ComputeHash(e)

		err = s.repo.Append(ctx, e)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, ErrSeqConflict) {
			return nil, fmt.Errorf("append entry: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("append entry after %d attempts: %w", maxAppendRetries, lastErr)
}

// RecordAsync appends an entry without blocking the caller and logs failures
// instead of returning them. Used from request paths where the primary write
// already succeeded and the audit trail must not fail the response.
func (s *Service) RecordAsync(actor, actorRole, action, resourceType, resourceID string, details map[string]interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.Record(ctx, actor, actorRole, action, resourceType, resourceID, details); err != nil {
			s.log.Error().Err(err).Str("action", action).Msg("audit ledger append failed")
		}
	}()
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Trail(ctx context.Context, resourceType, resourceID string) ([]*Entry, error) {
	return s.repo.ListByResource(ctx, resourceType, resourceID)
}

// Verify walks the full chain and recomputes every hash. The first entry
// whose stored hash or prev-hash link does not match is reported.
func (s *Service) Verify(ctx context.Context) (*VerifyResult, error) {
	entries, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{Valid: true, Entries: len(entries)}
	prevHash := ""
	for _, e := range entries {
		if e.PrevHash != prevHash || ComputeHash(e) != e.Hash {
			result.Valid = false
			result.BadSeq = e.Seq
			result.BadEntry = e.ID.String()
			return result, nil
		}
		prevHash = e.Hash
	}
	return result, nil
}
