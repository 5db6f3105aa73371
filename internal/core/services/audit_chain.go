package services

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// ComputeAuditHash hashes an entry's content together with the hash of the
// entry before it. Sequence is assigned by storage and is not covered.
func ComputeAuditHash(e domain.AuditEntry) string {
	h := sha256.New()
	for _, part := range []string{
		e.PreviousHash,
		e.ID,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Actor,
		string(e.Action),
		string(e.EntityType),
		e.EntityID,
		string(e.Severity),
		string(e.Before),
		string(e.After),
	} {
		h.Write([]byte(part))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyAuditChain walks entries oldest first and reports the first entry
// whose link or content hash does not check out.
func VerifyAuditChain(entries []domain.AuditEntry) domain.ChainVerification {
	prev := ""
	for _, e := range entries {
		if e.PreviousHash != prev || ComputeAuditHash(e) != e.Hash {
			return domain.ChainVerification{Entries: len(entries), Valid: false, BrokenAt: e.ID}
		}
		prev = e.Hash
	}
	return domain.ChainVerification{Entries: len(entries), Valid: true}
}
