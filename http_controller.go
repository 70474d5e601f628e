package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// AccountService is the lifecycle surface the controller drives.
type AccountService interface {
	Register(ctx context.Context, payload RegisterPayload) (string, error)
	Activate(ctx context.Context, token, code string) (*User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context) error
}

var _ AccountService = (*Accounts)(nil)

// AccountsControllerRoutes are the JSON endpoint paths.
type AccountsControllerRoutes struct {
	Registration string
	Activation   string
	Login        string
	Logout       string
	Refresh      string
	Me           string
}

// AccountsController exposes the account lifecycle as a Fiber JSON API.
type AccountsController struct {
	Debug    bool
	Logger   Logger
	Accounts AccountService
	Codec    TokenCodec
	Routes   *AccountsControllerRoutes
	cfg      *Config
}

// AccountsControllerOption customizes the controller.
type AccountsControllerOption func(*AccountsController) *AccountsController

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerAccounts sets the account service.
func WithControllerAccounts(accounts AccountService) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Accounts = accounts
		return c
	}
}

// WithControllerCodec sets the token codec used by the session middleware.
func WithControllerCodec(codec TokenCodec) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Codec = codec
		return c
	}
}

// WithControllerConfig sets the shared config.
func WithControllerConfig(cfg *Config) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.cfg = cfg
		return c
	}
}

// WithControllerDebug enables request payload debug logging.
func WithControllerDebug(debug bool) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Debug = debug
		return c
	}
}

// NewAccountsController builds the controller with default routes.
func NewAccountsController(opts ...AccountsControllerOption) *AccountsController {
	c := &AccountsController{
		Logger: defLogger{},
		Routes: &AccountsControllerRoutes{
			Registration: "/registration",
			Activation:   "/activation",
			Login:        "/login",
			Logout:       "/logout",
			Refresh:      "/refresh",
			Me:           "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing AccountService in accounts controller...")
	}

	if c.Codec == nil {
		panic("Missing TokenCodec in accounts controller...")
	}

	if c.cfg == nil {
		panic("Missing Config in accounts controller...")
	}

	return c
}

// RegisterAccountRoutes mounts the JSON endpoints on the given router.
func RegisterAccountRoutes(app fiber.Router, opts ...AccountsControllerOption) *AccountsController {
	controller := NewAccountsController(opts...)

	app.Post(controller.Routes.Registration, controller.RegistrationPost)
	app.Post(controller.Routes.Activation, controller.ActivationPost)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.Refresh, controller.RefreshPost)
	app.Get(controller.Routes.Logout, controller.LogOut)
	app.Get(controller.Routes.Me,
		RequireSession(controller.Codec, controller.cfg),
		controller.MeGet,
	)

	return controller
}

// RegistrationRequest is the registration payload.
type RegistrationRequest struct {
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	Email     string `json:"email" form:"email"`
	Phone     string `json:"phone_number" form:"phone_number"`
	Password  string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r RegistrationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// ActivationRequest is the token+code redemption payload.
type ActivationRequest struct {
	ActivationToken string `json:"activation_token" form:"activation_token"`
	ActivationCode  string `json:"activation_code" form:"activation_code"`
}

// Validate will run validation rules
func (r ActivationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ActivationToken, validation.Required),
		validation.Field(&r.ActivationCode, validation.Required, validation.Length(4, 4), is.Digit),
	)
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshRequest carries the refresh token when it is not in the cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

// RegistrationPost handles POST /registration. Success returns 200 with the
// activation token; the code travels out-of-band only.
func (a *AccountsController) RegistrationPost(c *fiber.Ctx) error {
	payload := new(RegistrationRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("registration parse payload", "error", err)
		return a.validationError(c, "unable to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err.Error())
	}

	if a.Debug {
		a.Logger.Debug("registration payload %s", print.MaybePrettyJSON(payload))
	}

	token, err := a.Accounts.Register(c.Context(), RegisterPayload{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
	})
	if err != nil {
		a.Logger.Error("registration failed", "error", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"activation_token": token,
	})
}

// ActivationPost handles POST /activation.
func (a *AccountsController) ActivationPost(c *fiber.Ctx) error {
	payload := new(ActivationRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("activation parse payload", "error", err)
		return a.validationError(c, "unable to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err.Error())
	}

	user, err := a.Accounts.Activate(c.Context(), payload.ActivationToken, payload.ActivationCode)
	if err != nil {
		a.Logger.Error("activation failed", "error", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Public(),
	})
}

// LoginPost handles POST /login. Success sets the access and refresh cookies
// and returns the access token plus the public user projection.
func (a *AccountsController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.validationError(c, "unable to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err.Error())
	}

	result, err := a.Accounts.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("login failed", "error", err)
		return respondError(c, err)
	}

	setTokenCookie(c, a.cfg.GetContextKey(), result.AccessToken, a.cfg.AccessTTL)
	setTokenCookie(c, a.cfg.GetRefreshCookieName(), result.RefreshToken, a.cfg.RefreshTTL)

	return c.JSON(fiber.Map{
		"success":      true,
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// RefreshPost handles POST /refresh: a new access token from a valid refresh
// token, taken from the body or the refresh cookie.
func (a *AccountsController) RefreshPost(c *fiber.Ctx) error {
	payload := new(RefreshRequest)

	if err := c.BodyParser(payload); err != nil && len(c.Body()) > 0 {
		a.Logger.Error("refresh parse payload", "error", err)
		return a.validationError(c, "unable to parse request body")
	}

	token := payload.RefreshToken
	if token == "" {
		token = c.Cookies(a.cfg.GetRefreshCookieName())
	}

	if token == "" {
		return a.validationError(c, "refresh_token is required")
	}

	accessToken, err := a.Accounts.Refresh(c.Context(), token)
	if err != nil {
		a.Logger.Error("refresh failed", "error", err)
		return respondError(c, err)
	}

	setTokenCookie(c, a.cfg.GetContextKey(), accessToken, a.cfg.AccessTTL)

	return c.JSON(fiber.Map{
		"success":      true,
		"access_token": accessToken,
	})
}

// LogOut handles GET /logout: both session cookies are replaced with expired
// ones. No server-side revocation happens; tokens remain valid until their
// own TTL elapses.
func (a *AccountsController) LogOut(c *fiber.Ctx) error {
	if err := a.Accounts.Logout(c.Context()); err != nil {
		return respondError(c, err)
	}

	clearTokenCookie(c, a.cfg.GetContextKey())
	clearTokenCookie(c, a.cfg.GetRefreshCookieName())

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// MeGet returns the verified session for the current request. Mounted behind
// RequireSession.
func (a *AccountsController) MeGet(c *fiber.Ctx) error {
	session, err := GetSession(c, a.cfg.GetContextKey())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

func (a *AccountsController) validationError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
