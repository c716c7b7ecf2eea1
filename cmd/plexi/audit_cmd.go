package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"plexi/internal/domain"
	cryptoinfra "plexi/internal/infra/crypto"
	"plexi/internal/infra/proof"
	"plexi/internal/infra/transport"
	"plexi/internal/usecase"
)

func runAudit(args []string) int {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var remote string
	var namespace string
	var epochFlag uint64
	var verifyingKey string
	var noVerify bool
	var long bool

	fs.StringVar(&remote, "remote-url", "", "auditor endpoint (default $PLEXI_REMOTE_URL)")
	fs.StringVar(&namespace, "namespace", "", "namespace to audit")
	fs.Uint64Var(&epochFlag, "epoch", 0, "epoch height (default last verified)")
	fs.StringVar(&verifyingKey, "verifying-key", "", "auditor public key hex, overrides key_id lookup")
	fs.BoolVar(&noVerify, "no-verify", false, "fetch and print the record without verifying")
	fs.BoolVar(&long, "long", false, "print the full field dump")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if namespace == "" {
		fmt.Fprintln(os.Stderr, "audit requires --namespace")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := transport.New(remoteURL(remote), zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "remote: %v\n", err)
		return 1
	}

	epoch := domain.Epoch(epochFlag)
	if !flagPassed(fs, "epoch") {
		epoch, err = client.LastVerifiedEpoch(ctx, namespace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "namespace %s has no last verified epoch, specify --epoch: %v\n", namespace, err)
			return 1
		}
	}

	if noVerify {
		raw, err := client.SignedRecord(ctx, namespace, epoch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fetch record: %v\n", err)
			return 1
		}
		rec, err := domain.DecodeRecord(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode record: %v\n", err)
			return 1
		}
		fmt.Println(formatAuditResponse(long, rec, statusDisabled(), statusDisabled()))
		return 0
	}

	uc := &usecase.AuditEpoch{
		Transport: client,
		Crypto:    cryptoinfra.NewService(),
		Proofs:    proof.NewVerifier(nil),
	}
	req := usecase.AuditRequest{Namespace: namespace, Epoch: epoch}
	if verifyingKey != "" {
		key, err := hex.DecodeString(verifyingKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse verifying key: %v\n", err)
			return 1
		}
		req.VerifyingKey = key
	}

	result, err := uc.Execute(ctx, req)
	if err != nil && !errors.Is(err, domain.ErrMalformedRecord) {
		fmt.Fprintf(os.Stderr, "audit: %v\n", err)
		return 1
	}
	if errors.Is(err, domain.ErrMalformedRecord) {
		fmt.Fprintf(os.Stderr, "audit: record for %s epoch %s does not decode\n", namespace, epoch)
		return 1
	}

	// re-fetch for the field dump; the audit result keeps only outcomes.
	rec := domain.SignedEpochRecord{
		Namespace: result.Namespace,
		Epoch:     result.Epoch,
		Digest:    result.Digest,
	}
	if raw, err := client.SignedRecord(ctx, namespace, epoch); err == nil {
		if full, err := domain.DecodeRecord(raw); err == nil {
			rec = full
		}
	}

	sig := statusSuccess()
	if result.Signature != domain.OutcomePass {
		sig = statusFailed(result.Reason)
	}
	prf := statusSuccess()
	switch result.Proof {
	case domain.OutcomeSkipped:
		prf = statusDisabled()
	case domain.OutcomeFail:
		prf = statusFailed(result.Reason)
	}

	fmt.Println(formatAuditResponse(long, rec, sig, prf))
	if !result.Valid() {
		return 1
	}
	return 0
}

// flagPassed reports whether the named flag was set on the command
// line, so an explicit --epoch 0 is not mistaken for the default.
func flagPassed(fs *flag.FlagSet, name string) bool {
	passed := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}
