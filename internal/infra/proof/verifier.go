package proof

import (
	"fmt"

	"plexi/internal/domain"
	"plexi/internal/infra/merkle"
)

// Oracle is the structural verification capability: something that can
// decide whether newRoot extends oldRoot given a hash path. The real
// implementation is the merkle package; tests substitute their own.
type Oracle interface {
	VerifyConsistency(oldRoot, newRoot []byte, fromSize, toSize uint64, path [][]byte) (bool, error)
}

// MerkleOracle delegates to the RFC 6962 tree verification.
type MerkleOracle struct{}

func (MerkleOracle) VerifyConsistency(oldRoot, newRoot []byte, fromSize, toSize uint64, path [][]byte) (bool, error) {
	return merkle.VerifyConsistencyProof(oldRoot, newRoot, int(fromSize), int(toSize), path)
}

// Verifier checks consistency-proof envelopes between consecutive epochs.
type Verifier struct {
	oracle Oracle
}

func NewVerifier(oracle Oracle) *Verifier {
	if oracle == nil {
		oracle = MerkleOracle{}
	}
	return &Verifier{oracle: oracle}
}

// VerifyConsistency decodes the envelope and checks that nextDigest is an
// append-only extension of prevDigest. Verification is only meaningful
// for next = prev + 1; other pairs fail before any cryptography runs.
// A cryptographically invalid proof returns ErrProofInvalid, never a
// silent pass.
func (v *Verifier) VerifyConsistency(prevEpoch domain.Epoch, prevDigest domain.Digest, nextEpoch domain.Epoch, nextDigest domain.Digest, proofBytes []byte) error {
	// epoch 0 has no predecessor; without this check uint64 wraparound
	// would accept prevEpoch 2^64-1 as "consecutive".
	if nextEpoch == 0 {
		return fmt.Errorf("%w: epoch 0 has no predecessor", domain.ErrEpochNotConsecutive)
	}
	if nextEpoch != prevEpoch+1 {
		return fmt.Errorf("%w: %s -> %s", domain.ErrEpochNotConsecutive, prevEpoch, nextEpoch)
	}
	env, err := DecodeEnvelope(proofBytes)
	if err != nil {
		return err
	}
	if env.FromSize > env.ToSize {
		return fmt.Errorf("%w: sizes %d -> %d", domain.ErrProofDecode, env.FromSize, env.ToSize)
	}
	ok, err := v.oracle.VerifyConsistency(prevDigest.Bytes(), nextDigest.Bytes(), env.FromSize, env.ToSize, env.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProofInvalid, err)
	}
	if !ok {
		return domain.ErrProofInvalid
	}
	return nil
}
