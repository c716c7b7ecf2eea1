package domain

import "github.com/google/uuid"

// Report is an emergency epoch attestation signed by the log operator
// instead of the auditor. Its shape and signing payload are identical to
// a SignedEpochRecord; only the key behind the signature differs.
type Report = SignedEpochRecord

// ReportResponse is the auditor's acknowledgement of a submitted report.
type ReportResponse struct {
	ID     uuid.UUID `json:"id"`
	Report Report    `json:"report"`
}
