package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"plexi/internal/domain"
	"plexi/pkg/attest"
)

func runSign(args []string) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var namespace string
	var epoch uint64
	var digestHex string
	var ciphersuite string
	var timestamp uint64
	var keyHex string
	var keyBase64 string
	var outPath string

	fs.StringVar(&namespace, "namespace", "", "namespace name")
	fs.Uint64Var(&epoch, "epoch", 0, "epoch height")
	fs.StringVar(&digestHex, "digest", "", "epoch digest hex")
	fs.StringVar(&ciphersuite, "ciphersuite", "ed25519(protobuf)", "signing ciphersuite")
	fs.Uint64Var(&timestamp, "timestamp", 0, "unix millis (default now)")
	fs.StringVar(&keyHex, "key-hex", "", "ed25519 private key or seed hex")
	fs.StringVar(&keyBase64, "key-base64", "", "ed25519 private key or seed base64")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if namespace == "" || digestHex == "" {
		fmt.Fprintln(os.Stderr, "sign requires --namespace and --digest")
		return 1
	}

	cs, err := domain.ParseCiphersuite(ciphersuite)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse ciphersuite: %v\n", err)
		return 1
	}
	digest, err := domain.ParseDigest(digestHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse digest: %v\n", err)
		return 1
	}
	key, err := parsePrivateKey(keyHex, keyBase64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse key: %v\n", err)
		return 1
	}
	if timestamp == 0 {
		timestamp = uint64(time.Now().UnixMilli())
	}

	rec, err := attest.Sign(attest.Attestation{
		Namespace:   namespace,
		Ciphersuite: cs,
		Timestamp:   timestamp,
		Epoch:       domain.Epoch(epoch),
		Digest:      digest,
	}, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: %v\n", err)
		return 1
	}

	payload, err := rec.Encode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode record: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write record: %v\n", err)
		return 1
	}
	return 0
}
