package crypto

import (
	"encoding/binary"

	"google.golang.org/protobuf/encoding/protowire"

	"plexi/internal/domain"
)

// Field numbers of the protobuf signing payload. The layout must stay
// bit-for-bit stable across implementations: ascending field order,
// minimal varints.
const (
	fieldTimestamp = 1
	fieldEpoch     = 2
	fieldDigest    = 3
)

// CanonicalMessage builds the exact byte sequence that is signed for a
// record: {timestamp, epoch, digest} under the ciphersuite's layout.
// The signature field itself is never part of the message.
func CanonicalMessage(cs domain.Ciphersuite, timestamp uint64, epoch domain.Epoch, digest domain.Digest) ([]byte, error) {
	switch cs {
	case domain.CiphersuiteBincodeEd25519:
		return bincodeMessage(timestamp, epoch, digest), nil
	case domain.CiphersuiteProtobufEd25519:
		return protobufMessage(timestamp, epoch, digest), nil
	default:
		return nil, domain.ErrUnknownCiphersuite
	}
}

// bincodeMessage lays out u64 LE timestamp, u64 LE epoch, then the digest
// as a u64 LE byte count followed by the raw bytes.
func bincodeMessage(timestamp uint64, epoch domain.Epoch, digest domain.Digest) []byte {
	raw := digest.Bytes()
	buf := make([]byte, 0, 8+8+8+len(raw))
	buf = binary.LittleEndian.AppendUint64(buf, timestamp)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(epoch))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(raw)))
	buf = append(buf, raw...)
	return buf
}

// protobufMessage encodes the payload with the protobuf wire format:
// field 1 varint timestamp, field 2 varint epoch, field 3 bytes digest.
func protobufMessage(timestamp uint64, epoch domain.Epoch, digest domain.Digest) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldTimestamp, protowire.VarintType)
	buf = protowire.AppendVarint(buf, timestamp)
	buf = protowire.AppendTag(buf, fieldEpoch, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(epoch))
	buf = protowire.AppendTag(buf, fieldDigest, protowire.BytesType)
	buf = protowire.AppendBytes(buf, digest.Bytes())
	return buf
}

// RecordMessage is CanonicalMessage applied to a decoded record.
func RecordMessage(rec domain.SignedEpochRecord) ([]byte, error) {
	return CanonicalMessage(rec.Ciphersuite, rec.Timestamp, rec.Epoch, rec.Digest)
}
