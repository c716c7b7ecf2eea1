package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"plexi/internal/domain"
)

type verificationStatus struct {
	checked bool
	err     string
}

func statusSuccess() verificationStatus  { return verificationStatus{checked: true} }
func statusDisabled() verificationStatus { return verificationStatus{} }
func statusFailed(reason string) verificationStatus {
	return verificationStatus{checked: true, err: reason}
}

func (s verificationStatus) ok() bool { return s.checked && s.err == "" }

func (s verificationStatus) String() string {
	switch {
	case !s.checked:
		return "-"
	case s.err != "":
		return "failed - " + s.err
	default:
		return "success"
	}
}

// formatAuditResponse mirrors the record layout operators are used to:
// a short status line by default, the full field dump with --long.
func formatAuditResponse(long bool, rec domain.SignedEpochRecord, sig, prf verificationStatus) string {
	if !long {
		switch {
		case !prf.checked:
			return sig.String()
		case sig.err != "":
			return sig.String()
		default:
			return prf.String()
		}
	}

	ts := time.UnixMilli(int64(rec.Timestamp)).UTC().Format("2006-01-02T15:04:05Z")
	lines := []string{
		"Namespace",
		fmt.Sprintf("  %-22s: %s", "Name", rec.Namespace),
		fmt.Sprintf("  %-22s: %s", "Ciphersuite", rec.Ciphersuite),
		"",
		fmt.Sprintf("Signature (%s)", ts),
		fmt.Sprintf("  %-22s: %s", "Epoch height", rec.Epoch),
		fmt.Sprintf("  %-22s: %s", "Epoch digest", rec.Digest),
		fmt.Sprintf("  %-22s: %x", "Signature", rec.Signature),
		fmt.Sprintf("  %-22s: %s", "Signature verification", sig),
		fmt.Sprintf("  %-22s: %s", "Proof verification", prf),
	}
	return strings.Join(lines, "\n")
}

func formatNamespace(long bool, info domain.NamespaceInfo) string {
	if !long {
		return info.Name
	}
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	lines := []string{
		info.Name,
		fmt.Sprintf("  %-11s: %s", "Status", info.Status),
		fmt.Sprintf("  %-11s: %s", "Ciphersuite", info.Ciphersuite),
		fmt.Sprintf("  %-11s: %s", "Root", orDash(info.Root)),
		fmt.Sprintf("  %-11s: %s", "Directory", orDash(info.LogDirectory)),
		"",
	}
	return strings.Join(lines, "\n")
}

func writeOutput(path string, payload []byte) error {
	if path == "" {
		if _, err := os.Stdout.Write(payload); err != nil {
			return err
		}
		_, err := fmt.Fprintln(os.Stdout)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
