// Package ledger keeps a tamper-evident audit trail of clinical actions.
// Entries form a hash chain: each entry's hash covers its own fields plus
// the hash of the entry before it, so any retroactive edit breaks every
// hash downstream and is caught by Verify.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable record in the audit chain.
type Entry struct {
	ID           uuid.UUID              `db:"id" json:"id"`
	Seq          int64                  `db:"seq" json:"seq"`
	Actor        string                 `db:"actor" json:"actor"`
	ActorRole    string                 `db:"actor_role" json:"actor_role"`
	Action       string                 `db:"action" json:"action"`
	ResourceType string                 `db:"resource_type" json:"resource_type"`
	ResourceID   string                 `db:"resource_id" json:"resource_id"`
	Details      map[string]interface{} `db:"details" json:"details,omitempty"`
	PrevHash     string                 `db:"prev_hash" json:"prev_hash"`
	Hash         string                 `db:"hash" json:"hash"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
}

// ComputeHash derives the entry's chain hash. The hash field itself is
// excluded; everything else, including PrevHash, is covered.
func ComputeHash(e *Entry) string {
	input := fmt.Sprintf("%s|%d|%s|%s|%s|%s|%s|%d|%s",
		e.ID,
		e.Seq,
		e.Actor,
		e.ActorRole,
		e.Action,
		e.ResourceType,
		e.ResourceID,
		e.CreatedAt.UnixNano(),
		e.PrevHash,
	)
	if e.Details != nil {
		if detailsJSON, err := json.Marshal(e.Details); err == nil {
			input += "|" + string(detailsJSON)
		}
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// VerifyResult reports the outcome of a chain walk.
type VerifyResult struct {
	Valid    bool   `json:"valid"`
	Entries  int    `json:"entries"`
	BadSeq   int64  `json:"bad_seq,omitempty"`
	BadEntry string `json:"bad_entry,omitempty"`
}
