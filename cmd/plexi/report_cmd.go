package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"plexi/internal/domain"
	"plexi/internal/infra/transport"
	"plexi/pkg/attest"
)

// runReport builds an emergency attestation signed by the log operator,
// for the window where the primary auditor is offline. Without --submit
// the signed report is printed and nothing leaves the machine.
func runReport(args []string) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var remote string
	var namespace string
	var epoch uint64
	var digestHex string
	var ciphersuite string
	var keyHex string
	var keyBase64 string
	var submit bool

	fs.StringVar(&remote, "remote-url", "", "auditor endpoint (default $PLEXI_REMOTE_URL)")
	fs.StringVar(&namespace, "namespace", "", "namespace name")
	fs.Uint64Var(&epoch, "epoch", 0, "epoch height")
	fs.StringVar(&digestHex, "digest", "", "epoch digest hex")
	fs.StringVar(&ciphersuite, "ciphersuite", "ed25519(protobuf)", "signing ciphersuite")
	fs.StringVar(&keyHex, "key-hex", "", "log operator private key or seed hex")
	fs.StringVar(&keyBase64, "key-base64", "", "log operator private key or seed base64")
	fs.BoolVar(&submit, "submit", false, "submit the report to the auditor")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if namespace == "" || digestHex == "" {
		fmt.Fprintln(os.Stderr, "report requires --namespace and --digest")
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

	report, err := attest.Sign(attest.Attestation{
		Namespace:   namespace,
		Ciphersuite: cs,
		Timestamp:   uint64(time.Now().UnixMilli()),
		Epoch:       domain.Epoch(epoch),
		Digest:      digest,
	}, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign report: %v\n", err)
		return 1
	}

	if !submit {
		payload, err := report.Encode()
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
			return 1
		}
		return printOrFail(payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := transport.New(remoteURL(remote), zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "remote: %v\n", err)
		return 1
	}
	resp, err := client.SubmitReport(ctx, namespace, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "submit report: %v\n", err)
		return 1
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode response: %v\n", err)
		return 1
	}
	return printOrFail(payload)
}

func printOrFail(payload []byte) int {
	if err := writeOutput("", payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
