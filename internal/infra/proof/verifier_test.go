package proof

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"plexi/internal/domain"
	"plexi/internal/infra/merkle"
)

func growTree(t *testing.T, n int) [][]byte {
	t.Helper()
	leaves := make([][]byte, n)
	for i := range leaves {
		var seed [8]byte
		binary.BigEndian.PutUint64(seed[:], uint64(i))
		leaves[i] = merkle.LeafHash(seed[:])
	}
	return leaves
}

func digestAt(t *testing.T, leaves [][]byte, size int) domain.Digest {
	t.Helper()
	root, err := merkle.Root(leaves[:size])
	if err != nil {
		t.Fatalf("root at size %d: %v", size, err)
	}
	d, err := domain.NewDigest(root)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	return d
}

func envelopeBetween(t *testing.T, leaves [][]byte, from, to int) []byte {
	t.Helper()
	path, err := merkle.ConsistencyProof(leaves, from, to)
	if err != nil {
		t.Fatalf("consistency proof %d->%d: %v", from, to, err)
	}
	return Envelope{FromSize: uint64(from), ToSize: uint64(to), Path: path}.Encode()
}

func TestVerifyConsistencyConsecutiveEpochs(t *testing.T) {
	leaves := growTree(t, 12)
	v := NewVerifier(nil)

	// epoch N corresponds to tree size 4+N for this fixture.
	prev := digestAt(t, leaves, 9)
	next := digestAt(t, leaves, 12)
	env := envelopeBetween(t, leaves, 9, 12)

	if err := v.VerifyConsistency(5, prev, 6, next, env); err != nil {
		t.Fatalf("valid proof rejected: %v", err)
	}
}

func TestVerifyConsistencyRejectsEpochGap(t *testing.T) {
	leaves := growTree(t, 8)
	v := NewVerifier(nil)
	prev := digestAt(t, leaves, 4)
	next := digestAt(t, leaves, 8)
	env := envelopeBetween(t, leaves, 4, 8)

	err := v.VerifyConsistency(3, prev, 5, next, env)
	if !errors.Is(err, domain.ErrEpochNotConsecutive) {
		t.Fatalf("expected ErrEpochNotConsecutive, got %v", err)
	}
}

func TestVerifyConsistencyRejectsStartEpoch(t *testing.T) {
	leaves := growTree(t, 8)
	v := NewVerifier(nil)
	prev := digestAt(t, leaves, 4)
	next := digestAt(t, leaves, 8)
	env := envelopeBetween(t, leaves, 4, 8)

	// epoch 0 must never chain: prevEpoch 2^64-1 would satisfy the
	// naive +1 arithmetic through wraparound.
	err := v.VerifyConsistency(^domain.Epoch(0), prev, 0, next, env)
	if !errors.Is(err, domain.ErrEpochNotConsecutive) {
		t.Fatalf("expected ErrEpochNotConsecutive, got %v", err)
	}
}

func TestVerifyConsistencyTamperedProof(t *testing.T) {
	leaves := growTree(t, 10)
	v := NewVerifier(nil)
	prev := digestAt(t, leaves, 7)
	next := digestAt(t, leaves, 10)

	path, err := merkle.ConsistencyProof(leaves, 7, 10)
	if err != nil {
		t.Fatalf("proof: %v", err)
	}
	path[0][0] ^= 0x01
	env := Envelope{FromSize: 7, ToSize: 10, Path: path}.Encode()

	err = v.VerifyConsistency(1, prev, 2, next, env)
	if !errors.Is(err, domain.ErrProofInvalid) {
		t.Fatalf("expected ErrProofInvalid, got %v", err)
	}
}

func TestVerifyConsistencyMismatchedDigest(t *testing.T) {
	leaves := growTree(t, 10)
	v := NewVerifier(nil)
	prev := digestAt(t, leaves, 7)
	wrongNext := digestAt(t, leaves, 9)
	env := envelopeBetween(t, leaves, 7, 10)

	err := v.VerifyConsistency(1, prev, 2, wrongNext, env)
	if !errors.Is(err, domain.ErrProofInvalid) {
		t.Fatalf("expected ErrProofInvalid, got %v", err)
	}
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	cases := map[string][]byte{
		"junk":          {0xff, 0xff, 0xff},
		"empty":         {},
		"truncated":     {0x08},
		"missing sizes": Envelope{Path: [][]byte{bytes.Repeat([]byte{0xaa}, 32)}}.Encode(),
	}
	for name, data := range cases {
		if _, err := DecodeEnvelope(data); !errors.Is(err, domain.ErrProofDecode) {
			t.Fatalf("%s: expected ErrProofDecode, got %v", name, err)
		}
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	in := Envelope{
		FromSize: 3,
		ToSize:   9,
		Path: [][]byte{
			bytes.Repeat([]byte{0x01}, 32),
			bytes.Repeat([]byte{0x02}, 32),
		},
	}
	out, err := DecodeEnvelope(in.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.FromSize != in.FromSize || out.ToSize != in.ToSize || len(out.Path) != len(in.Path) {
		t.Fatal("envelope round trip mismatch")
	}
	for i := range in.Path {
		if !bytes.Equal(in.Path[i], out.Path[i]) {
			t.Fatalf("path node %d mismatch", i)
		}
	}
}

func TestBlobName(t *testing.T) {
	prev := digestAt(t, growTree(t, 2), 1)
	cur := digestAt(t, growTree(t, 2), 2)
	name := BlobName(7, prev, cur)
	want := "7/" + prev.String() + "/" + cur.String()
	if name != want {
		t.Fatalf("blob name %q, want %q", name, want)
	}
}
