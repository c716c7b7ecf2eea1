package domain

import (
	"fmt"
	"strconv"
)

// Ciphersuite selects the signing scheme and the canonical message layout
// a namespace uses. It is fixed per namespace at configuration time.
type Ciphersuite uint16

const (
	// CiphersuiteBincodeEd25519 signs a fixed-width little-endian layout.
	CiphersuiteBincodeEd25519 Ciphersuite = 0x0001
	// CiphersuiteProtobufEd25519 signs a protobuf wire encoding.
	CiphersuiteProtobufEd25519 Ciphersuite = 0x0002
)

func (c Ciphersuite) Known() bool {
	return c == CiphersuiteBincodeEd25519 || c == CiphersuiteProtobufEd25519
}

func (c Ciphersuite) String() string {
	switch c {
	case CiphersuiteBincodeEd25519:
		return "ed25519(bincode)"
	case CiphersuiteProtobufEd25519:
		return "ed25519(protobuf)"
	default:
		return fmt.Sprintf("unknown %d", uint16(c))
	}
}

func ParseCiphersuite(s string) (Ciphersuite, error) {
	switch s {
	case "ed25519(bincode)":
		return CiphersuiteBincodeEd25519, nil
	case "ed25519(protobuf)":
		return CiphersuiteProtobufEd25519, nil
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, ErrUnknownCiphersuite
	}
	return Ciphersuite(v), nil
}
