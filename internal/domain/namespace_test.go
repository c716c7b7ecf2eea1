package domain

import (
	"encoding/json"
	"testing"
)

func TestNamespaceInfoDecodeSignatureVersion(t *testing.T) {
	payload := `{
		"name": "whatsapp.key-transparency.v1",
		"status": "Online",
		"signature_version": 2,
		"root": "1/` + "1111111111111111111111111111111111111111111111111111111111111111" + `"
	}`
	var info NamespaceInfo
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info.Ciphersuite != CiphersuiteProtobufEd25519 {
		t.Fatalf("ciphersuite = %s, want ed25519(protobuf)", info.Ciphersuite)
	}
	if info.Name != "whatsapp.key-transparency.v1" || info.Status != NamespaceOnline {
		t.Fatalf("decoded fields lost: %+v", info)
	}
}

func TestNamespaceInfoDecodeCiphersuiteField(t *testing.T) {
	var info NamespaceInfo
	if err := json.Unmarshal([]byte(`{"name":"akd","ciphersuite":1}`), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info.Ciphersuite != CiphersuiteBincodeEd25519 {
		t.Fatalf("ciphersuite = %s, want ed25519(bincode)", info.Ciphersuite)
	}
}
