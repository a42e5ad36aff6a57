package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// FirebaseJWKSURL serves the keys that sign Firebase Auth ID tokens.
const FirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

var ErrInvalidIDToken = errors.New("invalid id token")

// Identity is the verified subject of an identity-provider ID token.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, rawIDToken string) (*Identity, error)
}

type IdentityConfig struct {
	// FirebaseProjectID sets the issuer, audience and key set for Firebase
	// Auth. IssuerURL/ClientID override them for another OIDC provider.
	FirebaseProjectID string
	IssuerURL         string
	ClientID          string
	JWKSURL           string
}

func (c IdentityConfig) resolved() IdentityConfig {
	if p := strings.TrimSpace(c.FirebaseProjectID); p != "" {
		if c.IssuerURL == "" {
			c.IssuerURL = "https://securetoken.google.com/" + p
		}
		if c.ClientID == "" {
			c.ClientID = p
		}
		if c.JWKSURL == "" {
			c.JWKSURL = FirebaseJWKSURL
		}
	}
	return c
}

func (c IdentityConfig) Configured() bool {
	r := c.resolved()
	return strings.TrimSpace(r.IssuerURL) != "" && strings.TrimSpace(r.ClientID) != ""
}

type oidcIdentityVerifier struct {
	verifier *oidc.IDTokenVerifier
	log      *logger.Logger
}

// NewIdentityVerifier builds a go-oidc verifier. With a JWKS URL the keys
// are fetched lazily; without one the issuer's discovery document is read
// now.
func NewIdentityVerifier(ctx context.Context, cfg IdentityConfig, baseLog *logger.Logger) (IdentityVerifier, error) {
	cfg = cfg.resolved()
	if !cfg.Configured() {
		return nil, fmt.Errorf("identity verifier: %w: missing issuer or client id", ErrNotConfigured)
	}
	oc := &oidc.Config{ClientID: cfg.ClientID}

	var v *oidc.IDTokenVerifier
	if cfg.JWKSURL != "" {
		keys := oidc.NewRemoteKeySet(context.WithoutCancel(ctx), cfg.JWKSURL)
		v = oidc.NewVerifier(cfg.IssuerURL, keys, oc)
	} else {
		provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery %s: %w", cfg.IssuerURL, err)
		}
		v = provider.Verifier(oc)
	}
	return NewIdentityVerifierFrom(v, baseLog), nil
}

// NewIdentityVerifierFrom wraps an existing go-oidc verifier.
func NewIdentityVerifierFrom(v *oidc.IDTokenVerifier, baseLog *logger.Logger) IdentityVerifier {
	return &oidcIdentityVerifier{verifier: v, log: baseLog.With("service", "IdentityVerifier")}
}

func (v *oidcIdentityVerifier) VerifyIDToken(ctx context.Context, rawIDToken string) (*Identity, error) {
	rawIDToken = strings.TrimSpace(rawIDToken)
	if rawIDToken == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidIDToken)
	}
	tok, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIDToken, err)
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := tok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %w", ErrInvalidIDToken, err)
	}
	if strings.TrimSpace(tok.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidIDToken)
	}
	return &Identity{
		UID:           tok.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}
