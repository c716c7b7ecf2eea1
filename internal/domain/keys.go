package domain

import "encoding/hex"

// KeyInfo is one auditor verifying key with the epoch-millis instant it
// became valid.
type KeyInfo struct {
	PublicKey string `json:"public_key"` // hex
	NotBefore uint64 `json:"not_before"`
}

// KeyID is the last byte of the public key. Records carry it so a
// verifier can pick the right key out of the auditor configuration.
func (k KeyInfo) KeyID() (uint8, error) {
	raw, err := hex.DecodeString(k.PublicKey)
	if err != nil || len(raw) == 0 {
		return 0, ErrInvalidKey
	}
	return raw[len(raw)-1], nil
}

// AuditorConfiguration is the /info response: the auditor's signing keys
// and the logs it monitors.
type AuditorConfiguration struct {
	Keys []KeyInfo `json:"keys"`
	Logs []string  `json:"logs"`
}

// KeyByID finds the configured key matching a record's key_id hint.
func (c AuditorConfiguration) KeyByID(id uint8) (KeyInfo, bool) {
	for _, k := range c.Keys {
		kid, err := k.KeyID()
		if err != nil {
			continue
		}
		if kid == id {
			return k, true
		}
	}
	return KeyInfo{}, false
}
