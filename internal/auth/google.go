package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
	googleJWKSURL  = "https://www.googleapis.com/oauth2/v3/certs"

	// Authorization codes are single-use; the exchange is bounded and never
	// retried.
	exchangeTimeout = 10 * time.Second

	keyRefreshInterval = 12 * time.Hour
)

// ExternalIdentity is the profile extracted from a verified provider token.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityProvider exchanges an OAuth authorization code for a verified
// external identity.
type IdentityProvider interface {
	ConsentURL() string
	Exchange(ctx context.Context, code string) (ExternalIdentity, error)
}

// GoogleProvider implements the authorization-code flow against Google. The
// returned id_token is always verified against Google's published signing
// keys and this service's client id before any claim is trusted.
type GoogleProvider struct {
	oauth *oauth2.Config
	keys  *googleKeySet
	now   func() time.Time
}

var _ IdentityProvider = (*GoogleProvider)(nil)

// NewGoogleProvider configures the flow. The redirect URI must exactly match
// the value registered with Google.
func NewGoogleProvider(clientID, clientSecret, redirectURI string) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
		keys: newGoogleKeySet(googleJWKSURL),
		now:  time.Now,
	}
}

// ConsentURL returns the provider consent screen URL for the browser redirect.
func (p *GoogleProvider) ConsentURL() string {
	return p.oauth.AuthCodeURL("", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the authorization code for an id_token and verifies it.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (ExternalIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: code exchange: %v", ErrUpstream, err)
	}
	raw, _ := token.Extra("id_token").(string)
	if raw == "" {
		return ExternalIdentity{}, fmt.Errorf("%w: response missing id_token", ErrUpstream)
	}
	return p.verifyIDToken(ctx, raw)
}

type googleClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// verifyIDToken checks the id_token signature against Google's JWKS and its
// audience against our client id. Skipping this would mean trusting any
// token the transport hands back, so failures are hard errors.
func (p *GoogleProvider) verifyIDToken(ctx context.Context, raw string) (ExternalIdentity, error) {
	parsed, err := jwt.ParseWithClaims(raw, &googleClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodRS256 {
			return nil, errors.New("unexpected signing method")
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing key id")
		}
		return p.keys.key(ctx, kid)
	},
		jwt.WithTimeFunc(p.now),
		jwt.WithAudience(p.oauth.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: id_token verification failed", ErrUpstream)
	}
	claims, ok := parsed.Claims.(*googleClaims)
	if !ok || !parsed.Valid {
		return ExternalIdentity{}, fmt.Errorf("%w: id_token verification failed", ErrUpstream)
	}
	if claims.Issuer != "https://accounts.google.com" && claims.Issuer != "accounts.google.com" {
		return ExternalIdentity{}, fmt.Errorf("%w: unexpected id_token issuer", ErrUpstream)
	}
	if strings.TrimSpace(claims.Subject) == "" || strings.TrimSpace(claims.Email) == "" {
		return ExternalIdentity{}, fmt.Errorf("%w: id_token missing subject or email", ErrUpstream)
	}
	return ExternalIdentity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// googleKeySet caches Google's RSA signing keys, refreshing on expiry or
// when an unknown kid shows up (key rotation).
type googleKeySet struct {
	url    string
	client *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	refreshAt time.Time
}

func newGoogleKeySet(url string) *googleKeySet {
	return &googleKeySet{
		url:    url,
		client: &http.Client{Timeout: exchangeTimeout},
	}
}

func (ks *googleKeySet) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if time.Now().After(ks.refreshAt) || ks.keys[kid] == nil {
		if err := ks.refresh(ctx); err != nil {
			return nil, err
		}
	}
	key, ok := ks.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

func (ks *googleKeySet) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return err
	}
	resp, err := ks.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch signing keys: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing keys: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode signing keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(payload.Keys))
	for _, k := range payload.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("signing key set is empty")
	}
	ks.keys = keys
	ks.refreshAt = time.Now().Add(keyRefreshInterval)
	return nil
}

func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}
	exponent := new(big.Int).SetBytes(eBytes)
	if !exponent.IsInt64() || exponent.Int64() <= 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(exponent.Int64()),
	}, nil
}
