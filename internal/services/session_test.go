package services

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type fakeVerifier struct {
	tokens map[string]*Identity
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, raw string) (*Identity, error) {
	if id, ok := f.tokens[raw]; ok {
		return id, nil
	}
	return nil, errors.New("token expired")
}

func newSessionFixture(t *testing.T) (SessionService, repos.UserSessionRepo) {
	t.Helper()
	db := testutil.DB(t)
	store := repos.NewUserSessionRepo(db, testutil.Logger(t))
	verifier := &fakeVerifier{tokens: map[string]*Identity{
		"good-token": {UID: "firebase-uid", Email: "ada@example.com"},
	}}
	svc := NewSessionService(testutil.Logger(t), verifier, store, SessionConfig{Secret: "test-secret"})
	return svc, store
}

func TestSessionEstablishResolveClear(t *testing.T) {
	svc, _ := newSessionFixture(t)
	ctx := context.Background()

	sess, err := svc.Establish(ctx, "good-token")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionTTL), sess.ExpiresAt, time.Minute)
	assert.Equal(t, DefaultSessionTTL, svc.TTL())

	caller, err := svc.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, caller)
	assert.Equal(t, "firebase-uid", caller.UserID)
	assert.Equal(t, "ada@example.com", caller.Email)
	assert.Equal(t, sess.Caller.SessionID, caller.SessionID)

	require.NoError(t, svc.Clear(ctx, sess.Token))
	caller, err = svc.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, caller, "revoked sessions resolve to nobody")

	require.NoError(t, svc.Clear(ctx, sess.Token), "clear is idempotent")
	require.NoError(t, svc.Clear(ctx, ""))
	require.NoError(t, svc.Clear(ctx, "garbage"))
}

func TestSessionInvalidTokenThenResolveIsNil(t *testing.T) {
	svc, _ := newSessionFixture(t)
	ctx := context.Background()

	sess, err := svc.Establish(ctx, "expired-token")
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, ErrInvalidIDToken)
	assert.NotErrorIs(t, err, ErrNotConfigured)

	caller, err := svc.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, caller)
}

func TestSessionNotConfigured(t *testing.T) {
	noVerifier := NewSessionService(logger.Nop(), nil, nil, SessionConfig{Secret: "s"})
	_, err := noVerifier.Establish(context.Background(), "good-token")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NotErrorIs(t, err, ErrInvalidIDToken)

	noSecret := NewSessionService(logger.Nop(), &fakeVerifier{}, nil, SessionConfig{})
	_, err = noSecret.Establish(context.Background(), "good-token")
	assert.ErrorIs(t, err, ErrSessionNotConfigured)

	caller, err := noSecret.Resolve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, caller)
}

func TestSessionResolveRejectsForgedAndExpired(t *testing.T) {
	svc, _ := newSessionFixture(t)
	ctx := context.Background()

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   "attacker",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	caller, err := svc.Resolve(ctx, forged)
	require.NoError(t, err)
	assert.Nil(t, caller)

	short := NewSessionService(logger.Nop(), &fakeVerifier{tokens: map[string]*Identity{"t": {UID: "u"}}}, nil,
		SessionConfig{Secret: "test-secret", TTL: time.Minute})
	sess, err := short.Establish(ctx, "t")
	require.NoError(t, err)
	short.(*sessionService).now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	caller, err = short.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, caller, "expired cookies resolve to nobody")
}

type unreachableStore struct{ repos.SessionStore }

func (unreachableStore) Put(context.Context, *types.UserSession) error { return nil }

func (unreachableStore) IsActive(context.Context, uuid.UUID) (bool, error) {
	return false, errors.New("connection refused")
}

func TestSessionResolveSurfacesStoreFailure(t *testing.T) {
	svc := NewSessionService(logger.Nop(), &fakeVerifier{tokens: map[string]*Identity{"t": {UID: "u"}}},
		unreachableStore{}, SessionConfig{Secret: "test-secret"})
	sess, err := svc.Establish(context.Background(), "t")
	require.NoError(t, err)

	caller, err := svc.Resolve(context.Background(), sess.Token)
	assert.Error(t, err)
	assert.Nil(t, caller)
}

func TestOIDCIdentityVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	const issuer = "https://securetoken.google.com/demo-project"
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}}
	v := NewIdentityVerifierFrom(oidc.NewVerifier(issuer, keys, &oidc.Config{ClientID: "demo-project"}), logger.Nop())

	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	now := time.Now()

	good := sign(jwt.MapClaims{
		"iss": issuer, "aud": "demo-project", "sub": "uid-42",
		"email": "grace@example.com", "email_verified": true,
		"iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
	})
	ident, err := v.VerifyIDToken(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, "uid-42", ident.UID)
	assert.Equal(t, "grace@example.com", ident.Email)
	assert.True(t, ident.EmailVerified)

	wrongAud := sign(jwt.MapClaims{
		"iss": issuer, "aud": "other-project", "sub": "uid-42",
		"iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
	})
	_, err = v.VerifyIDToken(context.Background(), wrongAud)
	assert.ErrorIs(t, err, ErrInvalidIDToken)

	expired := sign(jwt.MapClaims{
		"iss": issuer, "aud": "demo-project", "sub": "uid-42",
		"iat": now.Add(-2 * time.Hour).Unix(), "exp": now.Add(-time.Hour).Unix(),
	})
	_, err = v.VerifyIDToken(context.Background(), expired)
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestIdentityConfigFirebaseDefaults(t *testing.T) {
	cfg := IdentityConfig{FirebaseProjectID: "demo"}.resolved()
	assert.Equal(t, "https://securetoken.google.com/demo", cfg.IssuerURL)
	assert.Equal(t, "demo", cfg.ClientID)
	assert.Equal(t, FirebaseJWKSURL, cfg.JWKSURL)
	assert.False(t, IdentityConfig{}.Configured())

	_, err := NewIdentityVerifier(context.Background(), IdentityConfig{}, logger.Nop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
