// Package attest is the embeddable verification surface: sign and
// verify epoch attestations without an auditor deployment. It performs
// no network or disk I/O.
package attest

import (
	"crypto/ed25519"

	"plexi/internal/domain"
	cryptoinfra "plexi/internal/infra/crypto"
	"plexi/internal/infra/proof"
)

// Attestation is the unit callers sign and verify. Epoch and digest
// identify one log revision; the timestamp is auditor wall time in
// milliseconds.
type Attestation struct {
	Namespace   string
	Ciphersuite domain.Ciphersuite
	Timestamp   uint64
	Epoch       domain.Epoch
	Digest      domain.Digest
}

// Sign produces the signed record for an attestation. The record's
// key_id is derived from the private key.
func Sign(att Attestation, privateKey ed25519.PrivateKey) (domain.SignedEpochRecord, error) {
	cs := att.Ciphersuite
	if cs == 0 {
		cs = domain.CiphersuiteProtobufEd25519
	}
	rec := domain.SignedEpochRecord{
		Namespace:   att.Namespace,
		Ciphersuite: cs,
		Timestamp:   att.Timestamp,
		Epoch:       att.Epoch,
		Digest:      att.Digest,
	}
	return cryptoinfra.NewService().SignRecord(rec, privateKey)
}

// Verify checks a record's signature under a public key. It reports
// (false, nil) for a signature that simply does not verify; an error
// means the inputs were unusable (bad key, unknown ciphersuite).
func Verify(rec domain.SignedEpochRecord, publicKey ed25519.PublicKey) (bool, error) {
	return cryptoinfra.NewService().VerifyRecord(rec, publicKey)
}

// VerifyWithProof checks the signature and then the append-only link
// from the previous epoch's digest, using raw proof bytes the caller
// fetched from the log directory.
func VerifyWithProof(rec domain.SignedEpochRecord, publicKey ed25519.PublicKey, prevDigest domain.Digest, proofBytes []byte) (domain.AuditResult, error) {
	result := domain.AuditResult{
		Namespace: rec.Namespace,
		Epoch:     rec.Epoch,
		Digest:    rec.Digest,
		Signature: domain.OutcomeFail,
		Proof:     domain.OutcomeSkipped,
	}

	ok, err := Verify(rec, publicKey)
	if err != nil {
		return domain.AuditResult{}, err
	}
	if !ok {
		result.Reason = "signature does not verify"
		return result, nil
	}
	result.Signature = domain.OutcomePass

	// a start-of-log record has no predecessor to chain from, so any
	// claimed link into it is bogus.
	if rec.Epoch == 0 {
		result.Proof = domain.OutcomeFail
		result.Reason = "epoch 0 has no predecessor"
		return result, nil
	}

	verifier := proof.NewVerifier(nil)
	if err := verifier.VerifyConsistency(rec.Epoch.Prev(), prevDigest, rec.Epoch, rec.Digest, proofBytes); err != nil {
		result.Proof = domain.OutcomeFail
		result.Reason = err.Error()
		return result, nil
	}
	result.Proof = domain.OutcomePass
	return result, nil
}

// ProofBlobName returns the object name under which a log directory
// publishes the consistency proof into an epoch.
func ProofBlobName(epoch domain.Epoch, prevDigest, digest domain.Digest) string {
	return proof.BlobName(epoch, prevDigest, digest)
}
