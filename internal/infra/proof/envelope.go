// Package proof decodes consistency-proof envelopes fetched from a log
// directory and checks them against a pair of epoch digests.
package proof

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"plexi/internal/domain"
)

// Envelope wire format (protobuf):
//
//	message ConsistencyEnvelope {
//	  uint64 from_size = 1;
//	  uint64 to_size   = 2;
//	  repeated bytes path = 3;
//	}
const (
	fieldFromSize = 1
	fieldToSize   = 2
	fieldPath     = 3
)

// Envelope wraps the authenticated structure's native proof: the tree
// sizes the proof spans and the hash path between them.
type Envelope struct {
	FromSize uint64
	ToSize   uint64
	Path     [][]byte
}

// DecodeEnvelope parses the protobuf envelope. Any wire-level damage
// yields ErrProofDecode; unknown fields are skipped for forward
// compatibility.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	rest := data
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			return Envelope{}, fmt.Errorf("%w: bad tag", domain.ErrProofDecode)
		}
		rest = rest[n:]
		switch {
		case num == fieldFromSize && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return Envelope{}, fmt.Errorf("%w: from_size", domain.ErrProofDecode)
			}
			env.FromSize = v
			rest = rest[n:]
		case num == fieldToSize && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(rest)
			if n < 0 {
				return Envelope{}, fmt.Errorf("%w: to_size", domain.ErrProofDecode)
			}
			env.ToSize = v
			rest = rest[n:]
		case num == fieldPath && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(rest)
			if n < 0 {
				return Envelope{}, fmt.Errorf("%w: path node", domain.ErrProofDecode)
			}
			node := make([]byte, len(v))
			copy(node, v)
			env.Path = append(env.Path, node)
			rest = rest[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, rest)
			if n < 0 {
				return Envelope{}, fmt.Errorf("%w: field %d", domain.ErrProofDecode, num)
			}
			rest = rest[n:]
		}
	}
	if env.FromSize == 0 || env.ToSize == 0 {
		return Envelope{}, fmt.Errorf("%w: missing tree sizes", domain.ErrProofDecode)
	}
	return env, nil
}

// Encode serializes the envelope; the inverse of DecodeEnvelope.
func (e Envelope) Encode() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldFromSize, protowire.VarintType)
	buf = protowire.AppendVarint(buf, e.FromSize)
	buf = protowire.AppendTag(buf, fieldToSize, protowire.VarintType)
	buf = protowire.AppendVarint(buf, e.ToSize)
	for _, node := range e.Path {
		buf = protowire.AppendTag(buf, fieldPath, protowire.BytesType)
		buf = protowire.AppendBytes(buf, node)
	}
	return buf
}

// BlobName addresses the proof for an epoch transition in a log
// directory, as "{epoch}/{previous_digest}/{current_digest}".
func BlobName(epoch domain.Epoch, previous, current domain.Digest) string {
	return fmt.Sprintf("%s/%s/%s", epoch, previous, current)
}
