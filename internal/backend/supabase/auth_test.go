package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teamtodo/internal/service"
)

func TestSignInWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		if r.Header.Get("apikey") != testAnonKey {
			t.Errorf("missing apikey header")
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["email"] != "ada@example.com" || body["password"] != "hunter2" {
			t.Errorf("unexpected body: %v", body)
		}
		io.WriteString(w, `{"access_token":"acc","token_type":"bearer","expires_in":3600,"expires_at":1900000000,"refresh_token":"ref","user":{"id":"`+testUserID+`"}}`)
	}))
	defer srv.Close()

	a := NewAuthClient(srv.URL, testAnonKey, srv.Client())
	tok, err := a.SignInWithPassword(context.Background(), "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "acc" || tok.RefreshToken != "ref" {
		t.Errorf("unexpected token: %+v", tok)
	}
	if !tok.Expiry.Equal(time.Unix(1900000000, 0)) {
		t.Errorf("unexpected expiry: %v", tok.Expiry)
	}
}

func TestSignInWithPassword_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`)
	}))
	defer srv.Close()

	a := NewAuthClient(srv.URL, testAnonKey, srv.Client())
	_, err := a.SignInWithPassword(context.Background(), "ada@example.com", "wrong")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Invalid login credentials" || apiErr.Code != "invalid_credentials" {
		t.Errorf("unexpected error fields: %+v", apiErr)
	}
}

func TestRefreshTokenSource(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("grant_type") != "refresh_token" {
			t.Errorf("unexpected grant: %s", r.URL.RawQuery)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "ref-1" && body["refresh_token"] != "ref-2" {
			t.Errorf("unexpected refresh token: %v", body)
		}
		io.WriteString(w, `{"access_token":"acc-new","token_type":"bearer","expires_in":3600,"refresh_token":"ref-2"}`)
	}))
	defer srv.Close()

	src := &refreshTokenSource{
		ctx:          context.Background(),
		auth:         NewAuthClient(srv.URL, testAnonKey, srv.Client()),
		refreshToken: "ref-1",
	}
	tok, err := src.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "acc-new" {
		t.Errorf("unexpected token: %+v", tok)
	}
	if src.refreshToken != "ref-2" {
		t.Errorf("expected rotated refresh token, got %q", src.refreshToken)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRefreshTokenSource_NoRefreshToken(t *testing.T) {
	src := &refreshTokenSource{ctx: context.Background(), auth: NewAuthClient("http://unused", "", nil)}
	if _, err := src.Token(); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSignOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/v1/logout" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer acc" {
			t.Errorf("unexpected Authorization header: %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := NewAuthClient(srv.URL, testAnonKey, srv.Client())
	if err := a.SignOut(context.Background(), "acc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSignOut_ExpiredSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"code":401,"error_code":"bad_jwt","msg":"invalid JWT"}`)
	}))
	defer srv.Close()

	a := NewAuthClient(srv.URL, testAnonKey, srv.Client())
	if err := a.SignOut(context.Background(), "stale"); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
