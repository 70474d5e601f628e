package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// activationCodeModulus bounds the 4-digit numeric verification code.
var activationCodeModulus = big.NewInt(10000)

// TokenCodecImpl implements the TokenCodec interface
type TokenCodecImpl struct {
	activationSecret []byte
	accessSecret     []byte
	refreshSecret    []byte
	activationTTL    time.Duration
	accessTTL        time.Duration
	refreshTTL       time.Duration
	issuer           string
	audience         jwt.ClaimStrings
	logger           Logger
	now              func() time.Time
}

// TokenCodecOption customizes codec construction.
type TokenCodecOption func(*TokenCodecImpl)

// WithCodecLogger overrides the codec logger.
func WithCodecLogger(logger Logger) TokenCodecOption {
	return func(tc *TokenCodecImpl) {
		if logger != nil {
			tc.logger = logger
		}
	}
}

// WithCodecClock injects a custom clock (useful for tests).
func WithCodecClock(clock func() time.Time) TokenCodecOption {
	return func(tc *TokenCodecImpl) {
		if clock != nil {
			tc.now = clock
		}
	}
}

// NewTokenCodec creates a new TokenCodec instance from the given config.
func NewTokenCodec(cfg *Config, opts ...TokenCodecOption) (*TokenCodecImpl, error) {
	if cfg == nil {
		return nil, goerrors.New("config is required", goerrors.CategoryBadInput)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tc := &TokenCodecImpl{
		activationSecret: []byte(cfg.ActivationSecret),
		accessSecret:     []byte(cfg.AccessSecret),
		refreshSecret:    []byte(cfg.RefreshSecret),
		activationTTL:    cfg.ActivationTTL,
		accessTTL:        cfg.AccessTTL,
		refreshTTL:       cfg.RefreshTTL,
		issuer:           cfg.Issuer,
		audience:         jwt.ClaimStrings(cfg.Audience),
		logger:           defLogger{},
		now:              time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(tc)
		}
	}

	return tc, nil
}

var _ TokenCodec = (*TokenCodecImpl)(nil)

// IssueActivationToken signs the pending registration together with a fresh
// 4-digit code. The code is returned separately so the caller can dispatch it
// out-of-band; redemption requires both the token and the code.
func (tc *TokenCodecImpl) IssueActivationToken(pending PendingRegistration) (string, string, error) {
	code, err := generateActivationCode()
	if err != nil {
		return "", "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate activation code")
	}

	now := tc.now()
	claims := &ActivationClaims{
		RegisteredClaims: tc.registeredClaims(pending.Email, now, tc.activationTTL),
		Pending:          pending,
		Code:             code,
	}

	token, err := tc.sign(claims, tc.activationSecret)
	if err != nil {
		return "", "", err
	}

	return token, code, nil
}

// VerifyActivationToken returns the pending registration and embedded code,
// or ErrTokenInvalid/ErrTokenExpired.
func (tc *TokenCodecImpl) VerifyActivationToken(token string) (*PendingRegistration, string, error) {
	claims := &ActivationClaims{}
	if err := tc.verify(token, claims, tc.activationSecret); err != nil {
		return nil, "", err
	}

	if claims.Pending.Email == "" || claims.Code == "" {
		return nil, "", ErrTokenInvalid
	}

	return &claims.Pending, claims.Code, nil
}

// IssueAccessToken signs a short-lived access token bound to the identity.
func (tc *TokenCodecImpl) IssueAccessToken(identity Identity) (string, error) {
	return tc.issueSessionToken(identity, TokenKindAccess, tc.accessSecret, tc.accessTTL)
}

// IssueRefreshToken signs a longer-lived refresh token bound to the identity.
func (tc *TokenCodecImpl) IssueRefreshToken(identity Identity) (string, error) {
	return tc.issueSessionToken(identity, TokenKindRefresh, tc.refreshSecret, tc.refreshTTL)
}

// VerifyAccessToken parses and validates an access token.
func (tc *TokenCodecImpl) VerifyAccessToken(token string) (*SessionClaims, error) {
	return tc.verifySessionToken(token, tc.accessSecret)
}

// VerifyRefreshToken parses and validates a refresh token.
func (tc *TokenCodecImpl) VerifyRefreshToken(token string) (*SessionClaims, error) {
	return tc.verifySessionToken(token, tc.refreshSecret)
}

// AccessTTL exposes the configured access-token lifetime for cookie expiry.
func (tc *TokenCodecImpl) AccessTTL() time.Duration { return tc.accessTTL }

// RefreshTTL exposes the configured refresh-token lifetime for cookie expiry.
func (tc *TokenCodecImpl) RefreshTTL() time.Duration { return tc.refreshTTL }

func (tc *TokenCodecImpl) issueSessionToken(identity Identity, kind TokenKind, secret []byte, ttl time.Duration) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity is required", goerrors.CategoryBadInput)
	}

	now := tc.now()
	claims := &SessionClaims{
		RegisteredClaims: tc.registeredClaims(identity.ID(), now, ttl),
		UID:              identity.ID(),
		UserRole:         identity.Role(),
		Kind:             kind,
	}

	return tc.sign(claims, secret)
}

func (tc *TokenCodecImpl) verifySessionToken(token string, secret []byte) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := tc.verify(token, claims, secret); err != nil {
		return nil, err
	}

	if claims.UserID() == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (tc *TokenCodecImpl) registeredClaims(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	var aud jwt.ClaimStrings
	if len(tc.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(tc.audience))
		copy(aud, tc.audience)
	}

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tc.issuer,
		Subject:   subject,
		Audience:  aud,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return claims
}

func (tc *TokenCodecImpl) sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(secret)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

func (tc *TokenCodecImpl) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(tc.now),
	}
	if tc.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(tc.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("TokenCodec verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return goerrors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode).
			WithCode(ErrTokenInvalid.Code)
	}

	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}

// generateActivationCode draws a uniform 4-digit numeric string from
// crypto/rand, independent of the token signature.
func generateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, activationCodeModulus)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
