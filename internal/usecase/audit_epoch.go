package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"plexi/internal/domain"
	"plexi/internal/infra/proof"
)

// AuditEpoch runs the audit protocol for one (namespace, epoch) pair:
// fetch, decode, signature check, then the consistency proof chained
// from the previous epoch's digest. Each call is a single linear pass
// with no retries and no shared mutable state; concurrent calls are
// independent.
type AuditEpoch struct {
	Transport Transport
	Crypto    SignatureVerifier
	Proofs    ConsistencyVerifier
	Clock     func() time.Time
}

// AuditRequest selects what to audit. VerifyingKey is optional: when
// nil, the key is resolved from the auditor configuration by the
// record's key_id hint. PrevDigest is optional: a caller that already
// audited epoch-1 supplies the digest and saves a fetch.
type AuditRequest struct {
	Namespace    string
	Epoch        domain.Epoch
	VerifyingKey []byte
	PrevDigest   *domain.Digest
}

// Execute audits one epoch. Transport failures propagate with no
// result. A record that fails to decode yields a result with the
// signature marked failed together with ErrMalformedRecord.
// Cryptographic pass/fail never aborts: it lands in the result so the
// audit history stays complete.
func (uc *AuditEpoch) Execute(ctx context.Context, req AuditRequest) (domain.AuditResult, error) {
	raw, err := uc.Transport.SignedRecord(ctx, req.Namespace, req.Epoch)
	if err != nil {
		return domain.AuditResult{}, err
	}

	rec, err := domain.DecodeRecord(raw)
	if err != nil {
		return domain.AuditResult{
			Namespace: req.Namespace,
			Epoch:     req.Epoch,
			Signature: domain.OutcomeFail,
			Proof:     domain.OutcomeSkipped,
			Reason:    "record does not decode",
			CheckedAt: uc.now(),
		}, err
	}
	if rec.Namespace == "" {
		rec.Namespace = req.Namespace
	}

	result := domain.AuditResult{
		Namespace: req.Namespace,
		Epoch:     rec.Epoch,
		Digest:    rec.Digest,
		Signature: domain.OutcomeFail,
		Proof:     domain.OutcomeSkipped,
		CheckedAt: uc.now(),
	}
	if rec.Epoch != req.Epoch {
		result.Reason = fmt.Sprintf("record epoch %s does not match requested %s", rec.Epoch, req.Epoch)
		return result, nil
	}

	key, reason, err := uc.resolveKey(ctx, req, rec)
	if err != nil {
		return domain.AuditResult{}, err
	}
	if reason != "" {
		result.Reason = reason
		return result, nil
	}

	ok, err := uc.Crypto.VerifyRecord(rec, key)
	if err != nil {
		// bad key material is a caller mistake, not an audit outcome.
		return domain.AuditResult{}, err
	}
	if !ok {
		// a forged signature makes the proof irrelevant: skip it.
		result.Reason = "signature does not verify for the auditor key"
		return result, nil
	}
	result.Signature = domain.OutcomePass

	uc.checkProof(ctx, req, rec, &result)
	return result, nil
}

// resolveKey picks the verifying key: the caller's, or the auditor
// configuration entry matching the record's key_id.
func (uc *AuditEpoch) resolveKey(ctx context.Context, req AuditRequest, rec domain.SignedEpochRecord) ([]byte, string, error) {
	if req.VerifyingKey != nil {
		return req.VerifyingKey, "", nil
	}
	if rec.KeyID == nil {
		return nil, "record has no key_id and no verifying key was supplied", nil
	}
	cfg, err := uc.Transport.AuditorConfig(ctx)
	if err != nil {
		return nil, "", err
	}
	info, found := cfg.KeyByID(*rec.KeyID)
	if !found {
		return nil, fmt.Sprintf("auditor has no key with key_id %d", *rec.KeyID), nil
	}
	key, err := hex.DecodeString(info.PublicKey)
	if err != nil {
		return nil, "auditor key is not valid hex", nil
	}
	return key, "", nil
}

// checkProof fills in the proof outcome once the signature has passed.
func (uc *AuditEpoch) checkProof(ctx context.Context, req AuditRequest, rec domain.SignedEpochRecord, result *domain.AuditResult) {
	info, err := uc.Transport.Namespace(ctx, req.Namespace)
	if err != nil {
		result.Proof = domain.OutcomeFail
		result.Reason = fmt.Sprintf("namespace lookup failed: %v", err)
		return
	}

	root, err := info.ParsedRoot()
	if err != nil {
		if info.Status == domain.NamespaceInitialization {
			// nothing to chain from yet.
			result.Proof = domain.OutcomeSkipped
			return
		}
		result.Proof = domain.OutcomeFail
		result.Reason = "namespace has no usable root"
		return
	}

	switch {
	case rec.Epoch < root.Epoch:
		result.Proof = domain.OutcomeFail
		result.Reason = "epoch predates the namespace root"
		return
	case rec.Epoch == root.Epoch:
		// genesis: no predecessor to chain from, only self-consistency.
		if !rec.Digest.Equal(root.Digest) {
			result.Proof = domain.OutcomeFail
			result.Reason = "genesis digest does not match namespace root"
			return
		}
		result.Proof = domain.OutcomeSkipped
		return
	}

	if info.LogDirectory == "" {
		// the namespace publishes no proofs; signature-only audit.
		result.Proof = domain.OutcomeSkipped
		return
	}

	prevDigest, err := uc.previousDigest(ctx, req)
	if err != nil {
		result.Proof = domain.OutcomeFail
		result.Reason = fmt.Sprintf("previous digest unavailable: %v", err)
		return
	}

	blob := proof.BlobName(rec.Epoch, prevDigest, rec.Digest)
	proofBytes, err := uc.Transport.Proof(ctx, info.LogDirectory, blob)
	if err != nil {
		result.Proof = domain.OutcomeFail
		result.Reason = fmt.Sprintf("proof fetch failed: %v", err)
		return
	}

	if err := uc.Proofs.VerifyConsistency(rec.Epoch.Prev(), prevDigest, rec.Epoch, rec.Digest, proofBytes); err != nil {
		result.Proof = domain.OutcomeFail
		result.Reason = err.Error()
		return
	}
	result.Proof = domain.OutcomePass
}

func (uc *AuditEpoch) previousDigest(ctx context.Context, req AuditRequest) (domain.Digest, error) {
	if req.PrevDigest != nil {
		return *req.PrevDigest, nil
	}
	raw, err := uc.Transport.SignedRecord(ctx, req.Namespace, req.Epoch.Prev())
	if err != nil {
		return domain.Digest{}, err
	}
	prev, err := domain.DecodeRecord(raw)
	if err != nil {
		return domain.Digest{}, err
	}
	if prev.Epoch != req.Epoch.Prev() {
		return domain.Digest{}, errors.New("previous record carries the wrong epoch")
	}
	return prev.Digest, nil
}

func (uc *AuditEpoch) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock()
	}
	return time.Now().UTC()
}
