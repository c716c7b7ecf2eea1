package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"plexi/internal/domain"
)

func TestSignedRecordFetchesRawBytes(t *testing.T) {
	payload := `{"timestamp":1712579917252,"epoch":2,"digest":"00","signature":"ff"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/namespaces/test.log.v1/audits/2" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	body, err := c.SignedRecord(context.Background(), "test.log.v1", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != payload {
		t.Fatalf("body %q, want raw payload untouched", body)
	}
}

func TestNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, nil)
	_, err := c.SignedRecord(context.Background(), "ns", 1)
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestNotFoundIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, nil)
	_, err := c.LastVerifiedEpoch(context.Background(), "ns")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelledFetchPropagatesContextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, _ := New(srv.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.SignedRecord(ctx, "ns", 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProofRequiresDirectory(t *testing.T) {
	c, _ := New("http://auditor.example", nil)
	_, err := c.Proof(context.Background(), "", "1/aa/bb")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestNamespacesDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"namespaces":[{"name":"a.v1","status":"Online","ciphersuite":2}]}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, nil)
	out, err := c.Namespaces(context.Background())
	if err != nil {
		t.Fatalf("namespaces: %v", err)
	}
	if len(out.Namespaces) != 1 || out.Namespaces[0].Name != "a.v1" {
		t.Fatalf("unexpected namespaces: %+v", out)
	}
	if out.Namespaces[0].Ciphersuite != domain.CiphersuiteProtobufEd25519 {
		t.Fatalf("ciphersuite %v", out.Namespaces[0].Ciphersuite)
	}
}
