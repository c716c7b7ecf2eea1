package attest

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"plexi/internal/domain"
)

func ParseEd25519PrivateKeyHex(value string) (ed25519.PrivateKey, error) {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidKey, err)
	}
	return parseEd25519PrivateKey(raw)
}

func ParseEd25519PrivateKeyBase64(value string) (ed25519.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidKey, err)
	}
	return parseEd25519PrivateKey(raw)
}

func ParseEd25519PublicKeyHex(value string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidKey, err)
	}
	return parseEd25519PublicKey(raw)
}

func ParseEd25519PublicKeyBase64(value string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidKey, err)
	}
	return parseEd25519PublicKey(raw)
}

func parseEd25519PrivateKey(raw []byte) (ed25519.PrivateKey, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		key := ed25519.NewKeyFromSeed(raw)
		return append(ed25519.PrivateKey(nil), key...), nil
	case ed25519.PrivateKeySize:
		return append(ed25519.PrivateKey(nil), raw...), nil
	default:
		return nil, fmt.Errorf("%w: private key length %d", domain.ErrInvalidKey, len(raw))
	}
}

func parseEd25519PublicKey(raw []byte) (ed25519.PublicKey, error) {
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key length %d", domain.ErrInvalidKey, len(raw))
	}
	return append(ed25519.PublicKey(nil), raw...), nil
}

// KeyID is the short key hint carried on signed records: the last byte
// of the public key.
func KeyID(pub ed25519.PublicKey) (uint8, error) {
	if len(pub) != ed25519.PublicKeySize {
		return 0, fmt.Errorf("%w: public key length %d", domain.ErrInvalidKey, len(pub))
	}
	return pub[len(pub)-1], nil
}
