package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetSessionParsesPaidSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Fatalf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_123",
			"payment_status": "paid",
			"currency": "usd",
			"subtotal": "57.00",
			"shipping_amount": "5.00",
			"discount_amount": "0.00",
			"tax_amount": "4.96",
			"total_amount": "66.96",
			"cart_session_id": "guest-1"
		}`))
	}))
	defer server.Close()

	gateway, err := NewHTTPGateway(&Config{BaseURL: server.URL, AuthToken: "token"})
	if err != nil {
		t.Fatalf("new gateway failed: %v", err)
	}

	session, err := gateway.GetSession(context.Background(), "cs_123")
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if !session.Paid {
		t.Fatal("session should be paid")
	}
	if session.Currency != "USD" {
		t.Fatalf("currency want USD got %s", session.Currency)
	}
	if session.TotalAmount.StringFixed(2) != "66.96" {
		t.Fatalf("total want 66.96 got %s", session.TotalAmount.StringFixed(2))
	}
	if session.CartSessionID != "guest-1" {
		t.Fatalf("cart session want guest-1 got %s", session.CartSessionID)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	gateway, err := NewHTTPGateway(&Config{BaseURL: server.URL, AuthToken: "token"})
	if err != nil {
		t.Fatalf("new gateway failed: %v", err)
	}

	_, err = gateway.GetSession(context.Background(), "cs_missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound got %v", err)
	}
}

func TestGetSessionRejectsBadAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "cs_1", "payment_status": "paid", "total_amount": "abc"}`))
	}))
	defer server.Close()

	gateway, err := NewHTTPGateway(&Config{BaseURL: server.URL, AuthToken: "token"})
	if err != nil {
		t.Fatalf("new gateway failed: %v", err)
	}

	_, err = gateway.GetSession(context.Background(), "cs_1")
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("want ErrResponseInvalid got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("nil config want ErrConfigInvalid got %v", err)
	}
	if err := ValidateConfig(&Config{BaseURL: "https://pay.example.com"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing token want ErrConfigInvalid got %v", err)
	}
	if err := ValidateConfig(&Config{BaseURL: "https://pay.example.com", AuthToken: "t"}); err != nil {
		t.Fatalf("valid config should pass, got %v", err)
	}
}
