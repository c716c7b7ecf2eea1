package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type NamespaceStatus string

const (
	NamespaceOnline         NamespaceStatus = "Online"
	NamespaceInitialization NamespaceStatus = "Initialization"
	NamespaceDisabled       NamespaceStatus = "Disabled"
)

// Root is the first attested state of a namespace: the epoch the log
// started publishing at, and the digest it started from. On the wire it
// is the string "epoch/hexdigest".
type Root struct {
	Epoch  Epoch
	Digest Digest
}

func ParseRoot(s string) (Root, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return Root{}, ErrInvalidRoot
	}
	epoch, err := ParseEpoch(parts[0])
	if err != nil {
		return Root{}, ErrInvalidRoot
	}
	digest, err := ParseDigest(parts[1])
	if err != nil {
		return Root{}, ErrInvalidRoot
	}
	return Root{Epoch: epoch, Digest: digest}, nil
}

func (r Root) String() string {
	return fmt.Sprintf("%s/%s", r.Epoch, r.Digest)
}

// NamespaceInfo describes one monitored transparency log instance as the
// auditor reports it.
type NamespaceInfo struct {
	Name              string          `json:"name"`
	LogDirectory      string          `json:"log_directory,omitempty"`
	Root              string          `json:"root,omitempty"`
	Status            NamespaceStatus `json:"status"`
	Ciphersuite       Ciphersuite     `json:"ciphersuite"`
	ReportsURI        string          `json:"reports_uri,omitempty"`
	AuditsURI         string          `json:"audits_uri,omitempty"`
	LastVerifiedEpoch *Epoch          `json:"last_verified_epoch,omitempty"`
}

// UnmarshalJSON also accepts the ciphersuite under "signature_version",
// the field name the auditor's API uses.
func (n *NamespaceInfo) UnmarshalJSON(data []byte) error {
	type alias NamespaceInfo
	aux := struct {
		*alias
		SignatureVersion *Ciphersuite `json:"signature_version"`
	}{alias: (*alias)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.SignatureVersion != nil {
		n.Ciphersuite = *aux.SignatureVersion
	}
	return nil
}

// ParsedRoot returns the namespace root, or ErrInvalidRoot when the
// namespace is still in initialization and has none.
func (n NamespaceInfo) ParsedRoot() (Root, error) {
	if n.Root == "" {
		return Root{}, ErrInvalidRoot
	}
	return ParseRoot(n.Root)
}

type Namespaces struct {
	Namespaces []NamespaceInfo `json:"namespaces"`
}

// LastVerifiedEpoch is the auditor's answer for the most recent epoch it
// has verified for a namespace.
type LastVerifiedEpoch struct {
	Epoch Epoch `json:"epoch"`
}
