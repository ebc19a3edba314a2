package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHasActiveEntitlement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/entitlements/alice/w1":
			w.Write([]byte(`{"active":true}`))
		case "/entitlements/bob/w1":
			w.Write([]byte(`{"active":false}`))
		case "/entitlements/carol/w1":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	active, err := c.HasActiveEntitlement(ctx, "alice", "w1")
	if err != nil || !active {
		t.Fatalf("alice: active=%v err=%v", active, err)
	}

	active, err = c.HasActiveEntitlement(ctx, "bob", "w1")
	if err != nil || active {
		t.Fatalf("bob: active=%v err=%v", active, err)
	}

	// 404 means "no entitlement", not an outage.
	active, err = c.HasActiveEntitlement(ctx, "carol", "w1")
	if err != nil || active {
		t.Fatalf("carol: active=%v err=%v", active, err)
	}

	// Anything else is an error the admission layer maps to PaymentRequired.
	if _, err := c.HasActiveEntitlement(ctx, "dave", "w1"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestAllowAll(t *testing.T) {
	active, err := AllowAll{}.HasActiveEntitlement(context.Background(), "anyone", "anywhere")
	if err != nil || !active {
		t.Fatalf("active=%v err=%v", active, err)
	}
}
