package main

import (
	"crypto/ed25519"
	"flag"
	"fmt"
	"os"

	"plexi/internal/domain"
	"plexi/pkg/attest"
)

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var pubHex string
	var pubBase64 string
	var proofPath string
	var prevDigestHex string

	fs.StringVar(&inPath, "in", "", "signed record JSON path (default stdin)")
	fs.StringVar(&pubHex, "publickey-hex", "", "ed25519 public key hex")
	fs.StringVar(&pubBase64, "publickey-base64", "", "ed25519 public key base64")
	fs.StringVar(&proofPath, "proof", "", "consistency proof blob path")
	fs.StringVar(&prevDigestHex, "prev-digest", "", "previous epoch digest hex, required with --proof")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	pubKey, err := parsePublicKey(pubHex, pubBase64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse public key: %v\n", err)
		return 1
	}

	in, err := fileOrStdin(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read record: %v\n", err)
		return 1
	}
	rec, err := domain.ReadRecord(in)
	in.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode record: %v\n", err)
		return 1
	}

	if proofPath == "" {
		ok, err := attest.Verify(rec, pubKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "verify: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Signature invalid")
			return 1
		}
		fmt.Println("Signature valid")
		return 0
	}

	if prevDigestHex == "" {
		fmt.Fprintln(os.Stderr, "--proof requires --prev-digest")
		return 1
	}
	prevDigest, err := domain.ParseDigest(prevDigestHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse prev-digest: %v\n", err)
		return 1
	}
	proofBytes, err := os.ReadFile(proofPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read proof: %v\n", err)
		return 1
	}

	result, err := attest.VerifyWithProof(rec, pubKey, prevDigest, proofBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		return 1
	}
	if !result.Valid() {
		fmt.Fprintf(os.Stderr, "Verification failed: %s\n", result.Reason)
		return 1
	}
	fmt.Println("Signature valid")
	fmt.Println("Proof valid")
	return 0
}

func parsePublicKey(pubHex, pubBase64 string) (ed25519.PublicKey, error) {
	switch {
	case pubHex != "" && pubBase64 != "":
		return nil, fmt.Errorf("use exactly one of --publickey-hex or --publickey-base64")
	case pubHex != "":
		return attest.ParseEd25519PublicKeyHex(pubHex)
	case pubBase64 != "":
		return attest.ParseEd25519PublicKeyBase64(pubBase64)
	default:
		return nil, fmt.Errorf("a public key is required")
	}
}

func parsePrivateKey(keyHex, keyBase64 string) (ed25519.PrivateKey, error) {
	switch {
	case keyHex != "" && keyBase64 != "":
		return nil, fmt.Errorf("use exactly one of --key-hex or --key-base64")
	case keyHex != "":
		return attest.ParseEd25519PrivateKeyHex(keyHex)
	case keyBase64 != "":
		return attest.ParseEd25519PrivateKeyBase64(keyBase64)
	default:
		return nil, fmt.Errorf("a signing key is required")
	}
}
