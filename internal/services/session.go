package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// DefaultSessionTTL matches the cookie lifetime: five days.
const DefaultSessionTTL = 5 * 24 * time.Hour

const sessionIssuer = "roadmap-backend"

// ErrSessionNotConfigured means the server lacks the identity verifier or
// the signing secret. It matches ErrNotConfigured.
var ErrSessionNotConfigured = fmt.Errorf("session bridge: %w", ErrNotConfigured)

// Caller is the resolved identity of a request. Actions take it explicitly;
// nil means a guest.
type Caller struct {
	UserID    string    `json:"uid"`
	Email     string    `json:"email,omitempty"`
	SessionID string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Session is a freshly minted cookie value.
type Session struct {
	Token     string
	Caller    *Caller
	ExpiresAt time.Time
}

type SessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type SessionService interface {
	// Establish verifies an ID token and mints a session. Errors match
	// ErrSessionNotConfigured or ErrInvalidIDToken, else they are
	// infrastructure failures.
	Establish(ctx context.Context, idToken string) (*Session, error)
	// Resolve returns nil for absent, invalid, expired or revoked cookies.
	// An error means the session store could not be consulted.
	Resolve(ctx context.Context, token string) (*Caller, error)
	// Clear revokes the session behind token, if any.
	Clear(ctx context.Context, token string) error
	TTL() time.Duration
}

type sessionService struct {
	log      *logger.Logger
	verifier IdentityVerifier
	store    repos.SessionStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService accepts a nil verifier or store. Without a verifier or
// secret Establish reports ErrSessionNotConfigured; without a store
// sessions cannot be revoked before they expire.
func NewSessionService(baseLog *logger.Logger, verifier IdentityVerifier, store repos.SessionStore, cfg SessionConfig) SessionService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionService{
		log:      baseLog.With("service", "SessionService"),
		verifier: verifier,
		store:    store,
		secret:   []byte(strings.TrimSpace(cfg.Secret)),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *sessionService) TTL() time.Duration { return s.ttl }

func (s *sessionService) Establish(ctx context.Context, idToken string) (*Session, error) {
	if s.verifier == nil || len(s.secret) == 0 {
		return nil, ErrSessionNotConfigured
	}
	ident, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		if !errors.Is(err, ErrInvalidIDToken) {
			err = fmt.Errorf("%w: %w", ErrInvalidIDToken, err)
		}
		s.log.Info("id token rejected", "error", err)
		return nil, err
	}

	now := s.now().UTC()
	exp := now.Add(s.ttl)
	sess := &types.UserSession{
		ID:        uuid.New(),
		UserID:    ident.UID,
		Email:     ident.Email,
		ExpiresAt: exp,
	}
	if s.store != nil {
		if err := s.store.Put(ctx, sess); err != nil {
			return nil, fmt.Errorf("record session: %w", err)
		}
	}

	claims := SessionClaims{
		Email: ident.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   ident.UID,
			ID:        sess.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	s.log.Info("session established", "user_id", ident.UID, "session_id", sess.ID)
	return &Session{
		Token:     signed,
		ExpiresAt: exp,
		Caller:    &Caller{UserID: ident.UID, Email: ident.Email, SessionID: sess.ID.String(), ExpiresAt: exp},
	}, nil
}

func (s *sessionService) parse(token string, opts ...jwt.ParserOption) (*SessionClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(sessionIssuer))
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("session without subject")
	}
	return claims, nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (*Caller, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(s.secret) == 0 {
		return nil, nil
	}
	claims, err := s.parse(token, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		s.log.Debug("ignoring invalid session cookie", "error", err)
		return nil, nil
	}
	if s.store != nil {
		id, err := uuid.Parse(claims.ID)
		if err != nil {
			return nil, nil
		}
		active, err := s.store.IsActive(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check session: %w", err)
		}
		if !active {
			return nil, nil
		}
	}
	c := &Caller{UserID: claims.Subject, Email: claims.Email, SessionID: claims.ID}
	if claims.ExpiresAt != nil {
		c.ExpiresAt = claims.ExpiresAt.Time
	}
	return c, nil
}

func (s *sessionService) Clear(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" || len(s.secret) == 0 || s.store == nil {
		return nil
	}
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil
	}
	if err := s.store.Revoke(ctx, id); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.log.Info("session cleared", "user_id", claims.Subject, "session_id", claims.ID)
	return nil
}
