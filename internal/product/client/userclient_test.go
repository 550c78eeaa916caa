package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketbay_backend/internal/auth"
)

func TestGetByEmailResolvesAccount(t *testing.T) {
	var gotToken, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(auth.HeaderInternalToken)
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"owner-1","name":"Sel","role":"SELLER"}`))
	}))
	defer server.Close()

	c := NewUserClient(server.URL, "secret", time.Second)
	user, err := c.GetByEmail(context.Background(), "seller@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if user.ID != "owner-1" || user.Name != "Sel" || user.Role != auth.RoleSeller {
		t.Fatalf("unexpected account: %+v", user)
	}
	if gotToken != "secret" {
		t.Fatalf("expected internal token, got %q", gotToken)
	}
	if gotPath != "/api/users/internal/by-email/seller@example.com" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestGetByEmailUnknownAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewUserClient(server.URL, "secret", time.Second)
	if _, err := c.GetByEmail(context.Background(), "nobody@example.com"); err == nil {
		t.Fatal("a 404 must surface as an error")
	}
}

func TestGetByEmailRejectsEmptyID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"","name":"","role":"SELLER"}`))
	}))
	defer server.Close()

	c := NewUserClient(server.URL, "secret", time.Second)
	if _, err := c.GetByEmail(context.Background(), "seller@example.com"); err == nil {
		t.Fatal("an empty id must surface as an error")
	}
}

func TestGetByEmailTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"id":"owner-1"}`))
	}))
	defer server.Close()

	c := NewUserClient(server.URL, "secret", 20*time.Millisecond)
	if _, err := c.GetByEmail(context.Background(), "seller@example.com"); err == nil {
		t.Fatal("a slow user service must surface as an error")
	}
}
