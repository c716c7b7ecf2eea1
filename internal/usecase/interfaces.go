package usecase

import (
	"context"

	"plexi/internal/domain"
)

// Transport fetches untrusted bytes from the auditor endpoint. Retry and
// pooling policy live behind this interface, never in the core.
type Transport interface {
	AuditorConfig(ctx context.Context) (domain.AuditorConfiguration, error)
	Namespace(ctx context.Context, name string) (domain.NamespaceInfo, error)
	SignedRecord(ctx context.Context, namespace string, epoch domain.Epoch) ([]byte, error)
	LastVerifiedEpoch(ctx context.Context, namespace string) (domain.Epoch, error)
	Proof(ctx context.Context, directoryURL, blobName string) ([]byte, error)
}

// SignatureVerifier checks a record's signature under a public key.
type SignatureVerifier interface {
	VerifyRecord(rec domain.SignedEpochRecord, publicKey []byte) (bool, error)
}

// ConsistencyVerifier checks that one epoch digest extends another.
type ConsistencyVerifier interface {
	VerifyConsistency(prevEpoch domain.Epoch, prevDigest domain.Digest, nextEpoch domain.Epoch, nextDigest domain.Digest, proofBytes []byte) error
}

// DigestStore remembers observed digests per (namespace, epoch) and
// reports ErrEquivocation on a conflicting sighting.
type DigestStore interface {
	Observe(ctx context.Context, namespace string, epoch domain.Epoch, digest domain.Digest) (domain.Digest, error)
}

// HistoryRepository persists audit results.
type HistoryRepository interface {
	Append(ctx context.Context, result domain.AuditResult) error
	LastVerified(ctx context.Context, namespace string) (domain.AuditResult, error)
}

// AlertPolicy decides whether a result warrants operator attention.
type AlertPolicy interface {
	Decide(ctx context.Context, result domain.AuditResult, equivocation bool) (alert bool, reasons []string, err error)
}
