package crypto

import (
	"crypto/ed25519"
	"fmt"

	"plexi/internal/domain"
)

// Service verifies and produces record signatures. It holds no state and
// is safe for concurrent use.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// VerifyRecord checks the record's signature under the given public key.
// A wrong-length key is a caller mistake and returns ErrInvalidKey; a
// signature that does not verify returns (false, nil). Malformed
// signature bytes never panic.
func (s *Service) VerifyRecord(rec domain.SignedEpochRecord, publicKey []byte) (bool, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("%w: public key length %d", domain.ErrInvalidKey, len(publicKey))
	}
	if len(rec.Signature) != ed25519.SignatureSize {
		return false, nil
	}
	msg, err := RecordMessage(rec)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), msg, rec.Signature), nil
}

// SignRecord computes the canonical message for {namespace, epoch,
// digest, timestamp} and signs it, returning the completed record.
// No I/O: transmission is the caller's concern.
func (s *Service) SignRecord(rec domain.SignedEpochRecord, privateKey ed25519.PrivateKey) (domain.SignedEpochRecord, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return domain.SignedEpochRecord{}, fmt.Errorf("%w: private key length %d", domain.ErrInvalidKey, len(privateKey))
	}
	msg, err := RecordMessage(rec)
	if err != nil {
		return domain.SignedEpochRecord{}, err
	}
	rec.Signature = ed25519.Sign(privateKey, msg)
	pub := privateKey.Public().(ed25519.PublicKey)
	kid := pub[len(pub)-1]
	rec.KeyID = &kid
	return rec, nil
}
