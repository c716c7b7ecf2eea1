// Package merkle implements the append-only authenticated structure the
// auditor verifies against: an RFC 6962 style hash tree whose root at
// tree size N is the epoch digest for epoch N's state.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
)

const HashSize = 32

var (
	ErrEmptyTree      = errors.New("empty merkle tree")
	ErrInvalidHashLen = errors.New("invalid hash length")
	ErrInvalidIndex   = errors.New("invalid leaf index")
	ErrInvalidSize    = errors.New("invalid tree size")
)

// LeafHash domain-separates leaves from interior nodes.
func LeafHash(data []byte) []byte {
	h := sha256.New()
	h.Write([]byte{0x00})
	h.Write(data)
	return h.Sum(nil)
}

func nodeHash(left, right []byte) []byte {
	h := sha256.New()
	h.Write([]byte{0x01})
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

// Root computes the tree hash over the given leaf hashes.
func Root(leaves [][]byte) ([]byte, error) {
	checked, err := checkLeaves(leaves)
	if err != nil {
		return nil, err
	}
	return subtreeHash(checked)
}

// ConsistencyProof proves that the tree of size fromSize is a prefix of
// the tree of size toSize.
func ConsistencyProof(leaves [][]byte, fromSize, toSize int) ([][]byte, error) {
	if fromSize <= 0 || toSize <= 0 || fromSize > toSize {
		return nil, ErrInvalidSize
	}
	if toSize > len(leaves) {
		return nil, ErrInvalidSize
	}
	checked, err := checkLeaves(leaves[:toSize])
	if err != nil {
		return nil, err
	}
	if fromSize == toSize {
		return [][]byte{}, nil
	}
	return consistencySubproof(checked, fromSize, toSize, true)
}

// VerifyConsistencyProof recomputes both roots from the proof path and
// compares them to the claimed ones. It never reports success for a
// path it could not fully consume.
func VerifyConsistencyProof(oldRoot, newRoot []byte, fromSize, toSize int, path [][]byte) (bool, error) {
	if fromSize <= 0 || toSize <= 0 || fromSize > toSize {
		return false, ErrInvalidSize
	}
	if fromSize == toSize {
		if len(path) != 0 {
			return false, nil
		}
		return bytes.Equal(oldRoot, newRoot), nil
	}
	if err := checkHash(oldRoot); err != nil {
		return false, err
	}
	if err := checkHash(newRoot); err != nil {
		return false, err
	}
	for _, p := range path {
		if err := checkHash(p); err != nil {
			return false, err
		}
	}
	if len(path) == 0 {
		return false, ErrInvalidSize
	}

	oldCandidate, newCandidate, used, err := consistencyRoots(fromSize, toSize, path, true, oldRoot)
	if err != nil {
		return false, err
	}
	if used != len(path) {
		return false, ErrInvalidSize
	}
	return bytes.Equal(oldCandidate, oldRoot) && bytes.Equal(newCandidate, newRoot), nil
}

// InclusionProof builds the audit path for the leaf at leafIndex.
func InclusionProof(leaves [][]byte, leafIndex int) ([][]byte, error) {
	checked, err := checkLeaves(leaves)
	if err != nil {
		return nil, err
	}
	if leafIndex < 0 || leafIndex >= len(checked) {
		return nil, ErrInvalidIndex
	}
	path := make([][]byte, 0)
	if err := inclusionPath(checked, leafIndex, &path); err != nil {
		return nil, err
	}
	return path, nil
}

// VerifyInclusionProof recomputes the root from a leaf hash and its audit
// path and compares it to the expected root.
func VerifyInclusionProof(leafHash []byte, leafIndex, treeSize int, path [][]byte, expectedRoot []byte) (bool, error) {
	if treeSize <= 0 {
		return false, ErrInvalidSize
	}
	if leafIndex < 0 || leafIndex >= treeSize {
		return false, ErrInvalidIndex
	}
	if err := checkHash(leafHash); err != nil {
		return false, err
	}
	if err := checkHash(expectedRoot); err != nil {
		return false, err
	}
	for _, p := range path {
		if err := checkHash(p); err != nil {
			return false, err
		}
	}
	root, used, err := inclusionRoot(leafHash, leafIndex, treeSize, path)
	if err != nil {
		return false, err
	}
	if used != len(path) {
		return false, ErrInvalidSize
	}
	return bytes.Equal(root, expectedRoot), nil
}

func subtreeHash(leaves [][]byte) ([]byte, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	if len(leaves) == 1 {
		return bytes.Clone(leaves[0]), nil
	}
	k := splitPoint(len(leaves))
	left, err := subtreeHash(leaves[:k])
	if err != nil {
		return nil, err
	}
	right, err := subtreeHash(leaves[k:])
	if err != nil {
		return nil, err
	}
	return nodeHash(left, right), nil
}

func inclusionPath(leaves [][]byte, leafIndex int, path *[][]byte) error {
	if len(leaves) == 1 {
		return nil
	}
	k := splitPoint(len(leaves))
	if leafIndex < k {
		if err := inclusionPath(leaves[:k], leafIndex, path); err != nil {
			return err
		}
		right, err := subtreeHash(leaves[k:])
		if err != nil {
			return err
		}
		*path = append(*path, right)
		return nil
	}
	if err := inclusionPath(leaves[k:], leafIndex-k, path); err != nil {
		return err
	}
	left, err := subtreeHash(leaves[:k])
	if err != nil {
		return err
	}
	*path = append(*path, left)
	return nil
}

func inclusionRoot(leafHash []byte, leafIndex, treeSize int, path [][]byte) ([]byte, int, error) {
	if treeSize == 1 {
		if leafIndex != 0 {
			return nil, 0, ErrInvalidIndex
		}
		return bytes.Clone(leafHash), 0, nil
	}
	k := splitPoint(treeSize)
	if leafIndex < k {
		left, used, err := inclusionRoot(leafHash, leafIndex, k, path)
		if err != nil {
			return nil, 0, err
		}
		if used >= len(path) {
			return nil, 0, ErrInvalidSize
		}
		return nodeHash(left, path[used]), used + 1, nil
	}
	right, used, err := inclusionRoot(leafHash, leafIndex-k, treeSize-k, path)
	if err != nil {
		return nil, 0, err
	}
	if used >= len(path) {
		return nil, 0, ErrInvalidSize
	}
	return nodeHash(path[used], right), used + 1, nil
}

func consistencySubproof(leaves [][]byte, fromSize, toSize int, isComplete bool) ([][]byte, error) {
	if fromSize == toSize {
		if isComplete {
			return [][]byte{}, nil
		}
		root, err := subtreeHash(leaves[:fromSize])
		if err != nil {
			return nil, err
		}
		return [][]byte{root}, nil
	}
	if toSize <= 1 {
		return nil, ErrInvalidSize
	}
	k := splitPoint(toSize)
	if fromSize <= k {
		proof, err := consistencySubproof(leaves[:k], fromSize, k, isComplete)
		if err != nil {
			return nil, err
		}
		right, err := subtreeHash(leaves[k:toSize])
		if err != nil {
			return nil, err
		}
		return append(proof, right), nil
	}
	proof, err := consistencySubproof(leaves[k:toSize], fromSize-k, toSize-k, false)
	if err != nil {
		return nil, err
	}
	left, err := subtreeHash(leaves[:k])
	if err != nil {
		return nil, err
	}
	return append(proof, left), nil
}

func consistencyRoots(fromSize, toSize int, path [][]byte, isComplete bool, oldRoot []byte) ([]byte, []byte, int, error) {
	if fromSize == toSize {
		if isComplete {
			return bytes.Clone(oldRoot), bytes.Clone(oldRoot), 0, nil
		}
		if len(path) == 0 {
			return nil, nil, 0, ErrInvalidSize
		}
		return bytes.Clone(path[0]), bytes.Clone(path[0]), 1, nil
	}
	if toSize <= 1 {
		return nil, nil, 0, ErrInvalidSize
	}

	k := splitPoint(toSize)
	if fromSize <= k {
		oldCandidate, newCandidate, used, err := consistencyRoots(fromSize, k, path, isComplete, oldRoot)
		if err != nil {
			return nil, nil, 0, err
		}
		if used >= len(path) {
			return nil, nil, 0, ErrInvalidSize
		}
		right := path[used]
		return oldCandidate, nodeHash(newCandidate, right), used + 1, nil
	}

	oldCandidate, newCandidate, used, err := consistencyRoots(fromSize-k, toSize-k, path, false, oldRoot)
	if err != nil {
		return nil, nil, 0, err
	}
	if used >= len(path) {
		return nil, nil, 0, ErrInvalidSize
	}
	left := path[used]
	return nodeHash(left, oldCandidate), nodeHash(left, newCandidate), used + 1, nil
}

func checkLeaves(leaves [][]byte) ([][]byte, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	out := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		if err := checkHash(leaf); err != nil {
			return nil, fmt.Errorf("leaf %d: %w", i, err)
		}
		out[i] = bytes.Clone(leaf)
	}
	return out, nil
}

func checkHash(hash []byte) error {
	if len(hash) != HashSize {
		return ErrInvalidHashLen
	}
	return nil
}

// splitPoint is the largest power of two strictly less than n.
func splitPoint(n int) int {
	k := 1
	for k<<1 < n {
		k <<= 1
	}
	return k
}
