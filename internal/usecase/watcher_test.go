package usecase

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"go.uber.org/zap"

	"plexi/internal/domain"
)

type fakeDigestStore struct {
	seen     map[string]domain.Digest
	observed int
}

func (f *fakeDigestStore) Observe(_ context.Context, namespace string, epoch domain.Epoch, digest domain.Digest) (domain.Digest, error) {
	if f.seen == nil {
		f.seen = make(map[string]domain.Digest)
	}
	f.observed++
	key := namespace + "/" + epoch.String()
	prior, ok := f.seen[key]
	if !ok {
		f.seen[key] = digest
		return digest, nil
	}
	if !prior.Equal(digest) {
		return prior, domain.ErrEquivocation
	}
	return prior, nil
}

type fakeHistory struct {
	appended []domain.AuditResult
	last     map[string]domain.AuditResult
}

func (f *fakeHistory) Append(_ context.Context, result domain.AuditResult) error {
	f.appended = append(f.appended, result)
	return nil
}

func (f *fakeHistory) LastVerified(_ context.Context, namespace string) (domain.AuditResult, error) {
	r, ok := f.last[namespace]
	if !ok {
		return domain.AuditResult{}, domain.ErrNotFound
	}
	return r, nil
}

type fakePolicy struct {
	alerts       int
	equivocation bool
}

func (f *fakePolicy) Decide(_ context.Context, result domain.AuditResult, equivocation bool) (bool, []string, error) {
	if equivocation {
		f.equivocation = true
	}
	if !result.Valid() || equivocation {
		f.alerts++
		return true, []string{"audit failed"}, nil
	}
	return false, nil, nil
}

func TestWatcherAdvanceAuditsToHead(t *testing.T) {
	pub, priv := testKeypair(t)
	digests := []domain.Digest{mustDigest(t, 0x01), mustDigest(t, 0x02), mustDigest(t, 0x03)}

	tr := &fakeTransport{
		config: domain.AuditorConfiguration{
			Keys: []domain.KeyInfo{{PublicKey: hexKey(pub)}},
		},
		namespaces: map[string]domain.NamespaceInfo{
			"akd": {
				Name:         "akd",
				LogDirectory: "https://logs.example/ns/",
				Root:         "1/" + digests[0].String(),
				Status:       domain.NamespaceOnline,
			},
		},
		records: map[string][]byte{
			"akd/1": signedRecord(t, priv, "akd", 1, digests[0]),
			"akd/2": signedRecord(t, priv, "akd", 2, digests[1]),
			"akd/3": signedRecord(t, priv, "akd", 3, digests[2]),
		},
		proofs: map[string][]byte{
			"2/" + digests[0].String() + "/" + digests[1].String(): {0x08, 0x05},
			"3/" + digests[1].String() + "/" + digests[2].String(): {0x08, 0x05},
		},
	}
	history := &fakeHistory{}
	store := &fakeDigestStore{}
	policy := &fakePolicy{}

	w := NewWatcher(newAudit(tr, &fakeConsistency{}), store, history, policy, zap.NewNop(), time.Minute)
	if err := w.Advance(context.Background(), "akd"); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if len(history.appended) != 3 {
		t.Fatalf("appended %d results, want 3", len(history.appended))
	}
	for _, r := range history.appended {
		if !r.Valid() {
			t.Fatalf("epoch %s invalid: %s", r.Epoch, r.Reason)
		}
	}
	if policy.alerts != 0 {
		t.Fatalf("alerts = %d, want 0", policy.alerts)
	}

	snap, ok := w.NamespaceSnapshot("akd")
	if !ok {
		t.Fatal("missing namespace snapshot")
	}
	if snap.LastEpoch != 3 {
		t.Fatalf("snapshot epoch = %s, want 3", snap.LastEpoch)
	}

	// a second pass with no new epochs audits nothing further.
	if err := w.Advance(context.Background(), "akd"); err != nil {
		t.Fatalf("second advance: %v", err)
	}
	if len(history.appended) != 3 {
		t.Fatalf("second pass appended results, total %d", len(history.appended))
	}
}

func TestWatcherFlagsEquivocation(t *testing.T) {
	pub, priv := testKeypair(t)
	rootDigest := mustDigest(t, 0x01)
	firstSeen := mustDigest(t, 0x0a)

	tr := &fakeTransport{
		config: domain.AuditorConfiguration{
			Keys: []domain.KeyInfo{{PublicKey: hexKey(pub)}},
		},
		namespaces: map[string]domain.NamespaceInfo{
			"akd": {Name: "akd", Root: "1/" + rootDigest.String(), Status: domain.NamespaceOnline},
		},
		records: map[string][]byte{
			"akd/1": signedRecord(t, priv, "akd", 1, rootDigest),
		},
	}
	store := &fakeDigestStore{seen: map[string]domain.Digest{"akd/1": firstSeen}}
	policy := &fakePolicy{}

	w := NewWatcher(newAudit(tr, &fakeConsistency{}), store, &fakeHistory{}, policy, zap.NewNop(), time.Minute)
	if err := w.Advance(context.Background(), "akd"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !policy.equivocation {
		t.Fatal("conflicting digest for the same epoch must reach the policy as equivocation")
	}
	if policy.alerts == 0 {
		t.Fatal("equivocation must raise an alert")
	}
}

func TestWatcherResumesFromHistory(t *testing.T) {
	pub, priv := testKeypair(t)
	digests := []domain.Digest{mustDigest(t, 0x01), mustDigest(t, 0x02), mustDigest(t, 0x03)}

	tr := &fakeTransport{
		config: domain.AuditorConfiguration{
			Keys: []domain.KeyInfo{{PublicKey: hexKey(pub)}},
		},
		namespaces: map[string]domain.NamespaceInfo{
			"akd": {
				Name:         "akd",
				LogDirectory: "https://logs.example/ns/",
				Root:         "1/" + digests[0].String(),
				Status:       domain.NamespaceOnline,
			},
		},
		records: map[string][]byte{
			"akd/1": signedRecord(t, priv, "akd", 1, digests[0]),
			"akd/2": signedRecord(t, priv, "akd", 2, digests[1]),
			"akd/3": signedRecord(t, priv, "akd", 3, digests[2]),
		},
		proofs: map[string][]byte{
			"3/" + digests[1].String() + "/" + digests[2].String(): {0x08, 0x05},
		},
	}
	history := &fakeHistory{
		last: map[string]domain.AuditResult{
			"akd": {
				Namespace: "akd",
				Epoch:     2,
				Digest:    digests[1],
				Signature: domain.OutcomePass,
				Proof:     domain.OutcomePass,
			},
		},
	}

	w := NewWatcher(newAudit(tr, &fakeConsistency{}), &fakeDigestStore{}, history, &fakePolicy{}, zap.NewNop(), time.Minute)
	if err := w.Advance(context.Background(), "akd"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(history.appended) != 1 {
		t.Fatalf("appended %d results, want only epoch 3", len(history.appended))
	}
	if history.appended[0].Epoch != 3 {
		t.Fatalf("resumed at epoch %s, want 3", history.appended[0].Epoch)
	}
}

func TestWatcherUsesConfiguredVerifyingKey(t *testing.T) {
	pub, priv := testKeypair(t)
	rootDigest := mustDigest(t, 0x01)

	// the auditor publishes no keys: only the configured key can work.
	tr := &fakeTransport{
		namespaces: map[string]domain.NamespaceInfo{
			"akd": {Name: "akd", Root: "1/" + rootDigest.String(), Status: domain.NamespaceOnline},
		},
		records: map[string][]byte{
			"akd/1": signedRecord(t, priv, "akd", 1, rootDigest),
		},
	}
	history := &fakeHistory{}

	w := NewWatcher(newAudit(tr, &fakeConsistency{}), &fakeDigestStore{}, history, &fakePolicy{}, zap.NewNop(), time.Minute)
	w.VerifyingKey = pub
	if err := w.Advance(context.Background(), "akd"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(history.appended) != 1 {
		t.Fatalf("appended %d results, want 1", len(history.appended))
	}
	if !history.appended[0].Valid() {
		t.Fatalf("audit with configured key invalid: %s", history.appended[0].Reason)
	}
}

func TestWatcherInitializingNamespaceIsQuiet(t *testing.T) {
	tr := &fakeTransport{
		namespaces: map[string]domain.NamespaceInfo{
			"new": {Name: "new", Status: domain.NamespaceInitialization},
		},
	}
	history := &fakeHistory{}
	w := NewWatcher(newAudit(tr, &fakeConsistency{}), &fakeDigestStore{}, history, &fakePolicy{}, zap.NewNop(), time.Minute)
	if err := w.Advance(context.Background(), "new"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(history.appended) != 0 {
		t.Fatal("an initializing namespace has nothing to audit")
	}
}

func hexKey(pub []byte) string {
	return hex.EncodeToString(pub)
}
