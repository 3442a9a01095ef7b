package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"teamtodo/internal/service"
)

const (
	authPath   = "/auth/v1/token"
	logoutPath = "/auth/v1/logout"
)

// AuthClient talks to the GoTrue token endpoint.
type AuthClient struct {
	http    *http.Client
	baseURL string
	anonKey string
}

// NewAuthClient creates a GoTrue client. A nil httpClient uses http.DefaultClient.
func NewAuthClient(baseURL, anonKey string, httpClient *http.Client) *AuthClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AuthClient{http: httpClient, baseURL: baseURL, anonKey: anonKey}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
}

func (r tokenResponse) token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
	}
	switch {
	case r.ExpiresAt > 0:
		tok.Expiry = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		tok.Expiry = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return tok
}

// SignInWithPassword exchanges email and password for a token.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*oauth2.Token, error) {
	return a.grant(ctx, "password", map[string]string{"email": email, "password": password})
}

// Refresh exchanges a refresh token for a new token.
func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return a.grant(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

// SignOut revokes the session that accessToken belongs to.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+logoutPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", a.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return wrapError(decodeAPIError(resp.StatusCode, body))
	}
	return nil
}

func (a *AuthClient) grant(ctx context.Context, grantType string, body map[string]string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	u := a.baseURL + authPath + "?" + url.Values{"grant_type": {grantType}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", a.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, wrapError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(err)
	}
	if resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, respBody)
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access token")
	}
	return tr.token(), nil
}

// refreshTokenSource renews the session through GoTrue. It is wrapped in
// oauth2.ReuseTokenSource, so it only runs once the access token expires.
type refreshTokenSource struct {
	ctx          context.Context
	auth         *AuthClient
	refreshToken string
}

func (s *refreshTokenSource) Token() (*oauth2.Token, error) {
	if s.refreshToken == "" {
		return nil, fmt.Errorf("%w: session expired and no refresh token stored", service.ErrUnauthorized)
	}
	tok, err := s.auth.Refresh(s.ctx, s.refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh failed: %v", service.ErrUnauthorized, err)
	}
	if tok.RefreshToken != "" {
		s.refreshToken = tok.RefreshToken
	}
	return tok, nil
}
