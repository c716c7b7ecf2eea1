package historydb

import (
	"context"
	"testing"
	"time"

	"plexi/internal/domain"
)

func TestResultFromModel(t *testing.T) {
	checked := time.Date(2024, 2, 15, 16, 26, 7, 0, time.UTC)
	m := AuditRecordModel{
		Namespace: "akd",
		Epoch:     744,
		Digest:    "2d2d5b56deb2a2058bded2d2e9bd2b594e0aa2b78e4b9d99851e4327cb3e0a03",
		Signature: "pass",
		Proof:     "skipped",
		CheckedAt: checked,
	}
	result, err := resultFromModel(m)
	if err != nil {
		t.Fatalf("map model: %v", err)
	}
	if result.Namespace != "akd" || result.Epoch != 744 {
		t.Fatalf("mapped result = %+v", result)
	}
	if !result.Valid() {
		t.Fatal("pass/skipped must map to a valid result")
	}
	if !result.CheckedAt.Equal(checked) {
		t.Fatalf("checked_at = %s", result.CheckedAt)
	}
}

func TestResultFromModelEmptyDigest(t *testing.T) {
	m := AuditRecordModel{
		Namespace: "akd",
		Epoch:     1,
		Signature: "fail",
		Proof:     "skipped",
		Reason:    "record does not decode",
	}
	result, err := resultFromModel(m)
	if err != nil {
		t.Fatalf("map model: %v", err)
	}
	if !result.Digest.IsZero() {
		t.Fatal("empty digest column must map to a zero digest")
	}
	if result.Valid() {
		t.Fatal("failed signature must not be valid")
	}
}

func TestResultFromModelBadDigest(t *testing.T) {
	m := AuditRecordModel{Namespace: "akd", Epoch: 1, Digest: "zz", Signature: "pass", Proof: "pass"}
	if _, err := resultFromModel(m); err == nil {
		t.Fatal("corrupt digest column must surface an error")
	}
}

func TestRepositoryWithoutDatabase(t *testing.T) {
	repo := NewAuditRepository(nil)
	if err := repo.Append(context.Background(), domain.AuditResult{}); err == nil {
		t.Fatal("append without a database must fail")
	}
	if _, err := repo.LastVerified(context.Background(), "akd"); err == nil {
		t.Fatal("lookup without a database must fail")
	}
}
