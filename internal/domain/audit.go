package domain

import "time"

// Outcome is a first-class verification result. Cryptographic failure is
// reportable data, not an error: a failed signature may mean a
// compromised log and belongs in the audit history.
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeSkipped Outcome = "skipped"
)

// AuditResult is the report for one audited epoch. Immutable once built.
type AuditResult struct {
	Namespace string    `json:"namespace"`
	Epoch     Epoch     `json:"epoch"`
	Digest    Digest    `json:"digest"`
	Signature Outcome   `json:"signature_verification"`
	Proof     Outcome   `json:"proof_verification"`
	Reason    string    `json:"reason,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Valid reports overall audit success: the signature verified and the
// proof either verified or was legitimately skipped (genesis epoch, or
// a namespace that publishes no proofs).
func (r AuditResult) Valid() bool {
	return r.Signature == OutcomePass && (r.Proof == OutcomePass || r.Proof == OutcomeSkipped)
}
