package oidc

// Package oidc verifies bearer ID tokens against an OIDC issuer.
// Tokens are issued elsewhere; this adapter only validates them.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/tenderwatch/internal/domain/auth"
	apperrors "github.com/target/tenderwatch/internal/errors"
	"github.com/target/tenderwatch/internal/ports"
	"golang.org/x/oauth2"
)

// VerifierConfig holds configuration for the ID token verifier.
type VerifierConfig struct {
	IssuerURL  string
	ClientID   string
	Roles      ports.RoleMapper
	HTTPClient *http.Client // Optional, defaults to a client with a 30s timeout
}

// Verifier validates ID tokens once the issuer's discovery document has been fetched.
// Until Warm succeeds, Verify reports the verifier as unavailable.
type Verifier struct {
	issuer     string
	clientID   string
	roles      ports.RoleMapper
	httpClient *http.Client

	mu       sync.RWMutex
	verifier *gooidc.IDTokenVerifier
}

// NewVerifier validates cfg and returns a Verifier that has not yet contacted the issuer.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.Roles == nil {
		return nil, errors.New("role mapper is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Verifier{
		issuer:     normalizeIssuer(cfg.IssuerURL),
		clientID:   cfg.ClientID,
		roles:      cfg.Roles,
		httpClient: httpClient,
	}, nil
}

// Warm fetches the discovery document and prepares the token verifier.
func (v *Verifier) Warm(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	op, err := gooidc.NewProvider(ctx, v.issuer)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "oidc discovery")
	}

	v.mu.Lock()
	v.verifier = op.Verifier(&gooidc.Config{ClientID: v.clientID})
	v.mu.Unlock()
	return nil
}

// Ready reports whether Warm has completed successfully.
func (v *Verifier) Ready() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.verifier != nil
}

// Verify checks signature, issuer, audience and expiry, then maps claims to a user.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (domainauth.User, error) {
	v.mu.RLock()
	verifier := v.verifier
	v.mu.RUnlock()
	if verifier == nil {
		return domainauth.User{}, apperrors.Unavailable("oidc verifier not ready")
	}

	if strings.TrimSpace(rawToken) == "" {
		return domainauth.User{}, apperrors.Unauthenticated("empty bearer token")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	idTok, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return domainauth.User{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "verify id_token")
	}

	var c claims
	if claimsErr := idTok.Claims(&c); claimsErr != nil {
		return domainauth.User{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}

	return c.user(v.roles, idTok.Expiry), nil
}

// claims covers the standard OIDC profile claims plus the AD-style shape some issuers emit.
type claims struct {
	Sub            string   `json:"sub"`
	SamAccountName string   `json:"samaccountname"`
	Email          string   `json:"email"`
	Mail           string   `json:"mail"`
	GivenName      string   `json:"given_name"`
	FamilyName     string   `json:"family_name"`
	Groups         []string `json:"groups"`
	MemberOf       []string `json:"memberof"`
}

func (c claims) user(roles ports.RoleMapper, expiry time.Time) domainauth.User {
	groups := c.Groups
	if len(groups) == 0 {
		groups = c.MemberOf
	}
	return domainauth.User{
		ID:        firstNonEmpty(c.SamAccountName, c.Sub),
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		Email:     firstNonEmpty(c.Email, c.Mail),
		Role:      roles.Map(groups),
		ExpiresAt: expiry,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeIssuer accepts either an issuer URL or its discovery document URL.
func normalizeIssuer(raw string) string {
	issuer := strings.TrimSuffix(strings.TrimSpace(raw), "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return issuer
}
