package domain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
)

// DigestLen is the byte width of every epoch digest this client handles.
const DigestLen = 32

// Digest is the authenticated root of a log's data structure at one epoch.
// It is opaque: compared for equality or handed to proof verification.
type Digest struct {
	b []byte
}

func NewDigest(raw []byte) (Digest, error) {
	if len(raw) != DigestLen {
		return Digest{}, ErrInvalidLength
	}
	return Digest{b: bytes.Clone(raw)}, nil
}

func ParseDigest(s string) (Digest, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, ErrInvalidEncoding
	}
	return NewDigest(raw)
}

func (d Digest) Bytes() []byte {
	return bytes.Clone(d.b)
}

func (d Digest) String() string {
	return hex.EncodeToString(d.b)
}

func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d.b, other.b)
}

func (d Digest) IsZero() bool {
	return len(d.b) == 0
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidEncoding
	}
	parsed, err := ParseDigest(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
