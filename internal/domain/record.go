package domain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
)

// SignatureLen is the ed25519 signature width shared by both ciphersuites.
const SignatureLen = 64

// SignedEpochRecord is a signed attestation that a namespace reached a
// given digest at a given epoch. Records are immutable after creation:
// the client decodes them, verifies them, and reports on them.
type SignedEpochRecord struct {
	Namespace   string
	Ciphersuite Ciphersuite
	Timestamp   uint64 // unix millis
	Epoch       Epoch
	Digest      Digest
	Signature   []byte
	KeyID       *uint8
}

// recordDoc is the wire shape. The canonical field set is
// {timestamp, epoch, digest, signature}; namespace, ciphersuite and
// key_id travel alongside when the server provides them.
type recordDoc struct {
	Namespace   string  `json:"namespace,omitempty"`
	Ciphersuite *uint16 `json:"ciphersuite,omitempty"`
	Timestamp   *uint64 `json:"timestamp"`
	Epoch       *uint64 `json:"epoch"`
	Digest      string  `json:"digest"`
	Signature   string  `json:"signature"`
	KeyID       *uint8  `json:"key_id,omitempty"`
}

// DecodeRecord parses a JSON signed epoch record, enforcing field
// presence and length constraints. Any violation yields ErrMalformedRecord.
func DecodeRecord(data []byte) (SignedEpochRecord, error) {
	var doc recordDoc
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return SignedEpochRecord{}, ErrMalformedRecord
	}
	return recordFromDoc(doc)
}

// ReadRecord decodes a record from a stream (file or stdin).
func ReadRecord(r io.Reader) (SignedEpochRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return SignedEpochRecord{}, ErrMalformedRecord
	}
	return DecodeRecord(data)
}

func recordFromDoc(doc recordDoc) (SignedEpochRecord, error) {
	if doc.Timestamp == nil || doc.Epoch == nil || doc.Digest == "" || doc.Signature == "" {
		return SignedEpochRecord{}, ErrMalformedRecord
	}
	digest, err := ParseDigest(doc.Digest)
	if err != nil {
		return SignedEpochRecord{}, ErrMalformedRecord
	}
	sig, err := hex.DecodeString(doc.Signature)
	if err != nil {
		return SignedEpochRecord{}, ErrMalformedRecord
	}
	if len(sig) != SignatureLen {
		return SignedEpochRecord{}, ErrMalformedRecord
	}
	rec := SignedEpochRecord{
		Namespace:   doc.Namespace,
		Ciphersuite: CiphersuiteProtobufEd25519,
		Timestamp:   *doc.Timestamp,
		Epoch:       Epoch(*doc.Epoch),
		Digest:      digest,
		Signature:   sig,
		KeyID:       doc.KeyID,
	}
	if doc.Ciphersuite != nil {
		rec.Ciphersuite = Ciphersuite(*doc.Ciphersuite)
	}
	return rec, nil
}

// Encode serializes the record back to its JSON wire form.
// Decode(Encode(r)) == r for every valid record.
func (r SignedEpochRecord) Encode() ([]byte, error) {
	ts := r.Timestamp
	ep := uint64(r.Epoch)
	doc := recordDoc{
		Namespace: r.Namespace,
		Timestamp: &ts,
		Epoch:     &ep,
		Digest:    r.Digest.String(),
		Signature: hex.EncodeToString(r.Signature),
		KeyID:     r.KeyID,
	}
	if r.Ciphersuite != CiphersuiteProtobufEd25519 {
		cs := uint16(r.Ciphersuite)
		doc.Ciphersuite = &cs
	}
	return json.Marshal(doc)
}

func (r SignedEpochRecord) MarshalJSON() ([]byte, error) {
	return r.Encode()
}

func (r *SignedEpochRecord) UnmarshalJSON(data []byte) error {
	rec, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// Equal compares every field, including the signature bytes.
func (r SignedEpochRecord) Equal(other SignedEpochRecord) bool {
	if r.Namespace != other.Namespace ||
		r.Ciphersuite != other.Ciphersuite ||
		r.Timestamp != other.Timestamp ||
		r.Epoch != other.Epoch ||
		!r.Digest.Equal(other.Digest) ||
		!bytes.Equal(r.Signature, other.Signature) {
		return false
	}
	if (r.KeyID == nil) != (other.KeyID == nil) {
		return false
	}
	return r.KeyID == nil || *r.KeyID == *other.KeyID
}
