package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMintCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions" {
			t.Errorf("path = %q, want /sessions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}

		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "gpt-4o-realtime-preview" || req["voice"] != "alloy" {
			t.Errorf("request = %v", req)
		}

		io.WriteString(w, `{
			"id": "sess_001",
			"model": "gpt-4o-realtime-preview",
			"client_secret": {"value": "ek_abc123", "expires_at": 1735689600}
		}`)
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	cred, err := c.MintCredential(context.Background(), "", "")
	if err != nil {
		t.Fatalf("MintCredential: %v", err)
	}
	if cred.Value != "ek_abc123" {
		t.Fatalf("value = %q", cred.Value)
	}
	if cred.ExpiresAt != 1735689600 {
		t.Fatalf("expires_at = %d", cred.ExpiresAt)
	}
}

func TestMintCredentialRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"invalid api key"}}`)
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.MintCredential(context.Background(), "gpt-4o-realtime-preview", "alloy")

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if apiErr.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", apiErr.HTTPStatus)
	}
}
