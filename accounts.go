package auth

import (
	"context"
	"crypto/subtle"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/nyaruka/phonenumbers"
)

// Accounts orchestrates the registration, activation, and session lifecycle:
// Unregistered -> PendingActivation -> Active per registration attempt, and
// Anonymous -> Authenticated -> Anonymous per session. It is stateless across
// requests; the only shared state lives in the credential store and the
// session cache.
type Accounts struct {
	store         UserStore
	codec         TokenCodec
	cache         SessionCache
	mailer        Mailer
	states        *AccountStateMachine
	logger        Logger
	issuer        string
	accessTTL     time.Duration
	activationTTL time.Duration
	now           func() time.Time
}

// AccountsOption customizes the Accounts service.
type AccountsOption func(*Accounts)

// WithAccountsLogger overrides the logger.
func WithAccountsLogger(logger Logger) AccountsOption {
	return func(a *Accounts) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSessionCache sets the server-side session cache. Defaults to an
// in-process cache.
func WithSessionCache(cache SessionCache) AccountsOption {
	return func(a *Accounts) {
		if cache != nil {
			a.cache = cache
		}
	}
}

// WithMailer sets the notification gateway used to dispatch activation codes.
func WithMailer(mailer Mailer) AccountsOption {
	return func(a *Accounts) {
		if mailer != nil {
			a.mailer = mailer
		}
	}
}

// WithAccountsClock injects a custom clock (useful for tests).
func WithAccountsClock(clock func() time.Time) AccountsOption {
	return func(a *Accounts) {
		if clock != nil {
			a.now = clock
		}
	}
}

// NewAccounts builds the account lifecycle service.
func NewAccounts(store UserStore, codec TokenCodec, cfg *Config, opts ...AccountsOption) *Accounts {
	a := &Accounts{
		store:  store,
		codec:  codec,
		cache:  NewMemorySessionCache(),
		mailer: noopMailer{},
		states: NewAccountStateMachine(),
		logger: defLogger{},
		now:    time.Now,
	}

	if cfg != nil {
		a.issuer = cfg.Issuer
		a.accessTTL = cfg.AccessTTL
		a.activationTTL = cfg.ActivationTTL
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// RegisterPayload is the input for a registration attempt.
type RegisterPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
	Password  string `json:"password"`
}

// LoginResult carries the issued token pair plus the public user projection.
type LoginResult struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *PublicUser `json:"user"`
}

// Register starts a registration attempt. It issues an activation token
// embedding the pending payload and a 4-digit code, dispatches the code to
// the email address, and returns the token. Nothing is persisted: the signed
// token is the sole carrier of pending state until activation.
//
// Delivery failure fails the whole request and the token is not returned;
// the caller simply registers again.
func (a *Accounts) Register(ctx context.Context, payload RegisterPayload) (string, error) {
	email := NormalizeEmail(payload.Email)

	phone, err := normalizePhone(payload.Phone)
	if err != nil {
		return "", err
	}

	// Advisory early check. The store's unique constraint is the
	// authoritative guard at activation time.
	if existing, err := a.store.GetByEmail(ctx, email); err != nil {
		if !repository.IsRecordNotFound(err) {
			return "", normalizeStoreError(err)
		}
	} else if existing != nil {
		return "", ErrDuplicateEmail.WithMetadata(map[string]any{"email": email})
	}

	pending := PendingRegistration{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     email,
		Phone:     phone,
		Password:  payload.Password,
	}

	token, code, err := a.codec.IssueActivationToken(pending)
	if err != nil {
		return "", err
	}

	msg := Message{
		To:       email,
		Template: TemplateActivationCode,
		Data: map[string]any{
			"first_name": payload.FirstName,
			"code":       code,
			"ttl":        a.activationTTL.String(),
		},
	}

	if err := a.mailer.Send(ctx, msg); err != nil {
		a.logger.Error("activation code dispatch failed", "email", email, "error", err)
		return "", err
	}

	a.logger.Info("registration pending activation", "email", email)
	return token, nil
}

// Activate redeems an activation token plus the out-of-band code and creates
// the durable user record. This is the only path that creates a user.
func (a *Accounts) Activate(ctx context.Context, token, submittedCode string) (*User, error) {
	pending, embeddedCode, err := a.codec.VerifyActivationToken(token)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(submittedCode), []byte(embeddedCode)) != 1 {
		return nil, ErrCodeMismatch
	}

	// Idempotence guard: another registration for the same email may have
	// completed between issuance and redemption.
	if existing, err := a.store.GetByEmail(ctx, pending.Email); err != nil {
		if !repository.IsRecordNotFound(err) {
			return nil, normalizeStoreError(err)
		}
	} else if existing != nil {
		return nil, ErrDuplicateEmail.WithMetadata(map[string]any{"email": pending.Email})
	}

	hash, err := HashPassword(pending.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		FirstName:     pending.FirstName,
		LastName:      pending.LastName,
		Email:         pending.Email,
		Phone:         pending.Phone,
		PasswordHash:  hash,
		EmailVerified: true,
		Role:          RoleUser,
		Status:        UserStatusPending,
	}

	if err := a.states.Transition(user, UserStatusActive); err != nil {
		return nil, err
	}

	created, err := a.store.Register(ctx, user)
	if err != nil {
		return nil, err
	}

	a.logger.Info("account activated", "email", created.Email, "user_id", created.ID)
	return created, nil
}

// Login verifies credentials and issues an access/refresh token pair. The
// session snapshot is mirrored into the cache keyed by user id, overwriting
// any prior snapshot (single session shadow per user, last-write-wins).
//
// Unknown email and wrong password fail with the identical error so callers
// cannot enumerate accounts.
func (a *Accounts) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := a.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, normalizeStoreError(err)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.EnsureStatus()
	if err := statusAuthError(user.Status); err != nil {
		return nil, err
	}

	identity := NewIdentityFromUser(user)

	accessToken, err := a.codec.IssueAccessToken(identity)
	if err != nil {
		return nil, err
	}

	refreshToken, err := a.codec.IssueRefreshToken(identity)
	if err != nil {
		return nil, err
	}

	a.cacheSession(ctx, user)

	a.logger.Info("login", "user_id", user.ID)

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Public(),
	}, nil
}

// Refresh mints a new access token from a valid refresh token, re-checking
// the account's status against the store.
func (a *Accounts) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := a.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	if claims.Kind != "" && claims.Kind != TokenKindRefresh {
		return "", ErrTokenInvalid
	}

	user, err := a.store.FindByID(ctx, claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrTokenInvalid
		}
		return "", normalizeStoreError(err)
	}

	user.EnsureStatus()
	if err := statusAuthError(user.Status); err != nil {
		return "", err
	}

	accessToken, err := a.codec.IssueAccessToken(NewIdentityFromUser(user))
	if err != nil {
		return "", err
	}

	a.cacheSession(ctx, user)

	return accessToken, nil
}

// Logout is stateless: the HTTP layer instructs the client to discard its
// cookies. Issued tokens stay valid until their own TTL elapses and the
// session snapshot is not removed.
func (a *Accounts) Logout(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// cacheSession writes the session shadow. Cache faults are logged, never
// fatal: each overwrite is independently valid and the next login rewrites it.
func (a *Accounts) cacheSession(ctx context.Context, user *User) {
	now := a.now()
	session := sessionFromUser(user, a.issuer, now, now.Add(a.accessTTL))

	if err := a.cache.Set(ctx, user.ID.String(), session); err != nil {
		a.logger.Warn("session cache write failed", "user_id", user.ID, "error", err)
	}
}

// normalizePhone formats an optional E.164 phone number. Empty input is
// allowed; anything else must parse.
func normalizePhone(phone string) (string, error) {
	if phone == "" {
		return "", nil
	}

	parsed, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number").
			WithCode(goerrors.CodeBadRequest)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", goerrors.New("invalid phone number", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
