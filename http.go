package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// setTokenCookie writes an HTTP-only session cookie.
func setTokenCookie(c *fiber.Ctx, name, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// clearTokenCookie instructs the client to discard the cookie by replacing it
// with one that expired long ago.
func clearTokenCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// tokenFromRequest looks the access token up in the Authorization header
// first, then in the session cookie.
func tokenFromRequest(c *fiber.Ctx, cookieName string) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return c.Cookies(cookieName)
}

// GetSession returns the verified session the middleware stashed in locals.
func GetSession(c *fiber.Ctx, key string) (*SessionObject, error) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	session, ok := raw.(*SessionObject)
	if session == nil || !ok {
		return nil, ErrUnableToFindSession
	}

	return session, nil
}

// RequireSession verifies the request's access token and stashes the session
// in locals under cfg.GetContextKey() and in the request context. Requests
// without a valid token receive the JSON error envelope.
func RequireSession(codec TokenCodec, cfg *Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c, cfg.GetContextKey())
		if token == "" {
			return respondError(c, ErrUnableToFindSession)
		}

		claims, err := codec.VerifyAccessToken(token)
		if err != nil {
			return respondError(c, err)
		}

		session, err := sessionFromClaims(claims)
		if err != nil {
			return respondError(c, err)
		}

		c.Locals(cfg.GetContextKey(), session)
		c.SetUserContext(WithSessionContext(c.UserContext(), session))

		return c.Next()
	}
}

// RequireRole guards a route behind a minimum role. Must run after
// RequireSession.
func RequireRole(cfg *Config, minRole UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := GetSession(c, cfg.GetContextKey())
		if err != nil {
			return respondError(c, err)
		}

		if !session.IsAtLeast(minRole) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "insufficient role",
			})
		}

		return c.Next()
	}
}

// respondError renders the uniform failure envelope, mapping the error
// taxonomy onto status codes. Expired and malformed tokens both surface the
// codes the caller needs to distinguish re-registration from retry.
func respondError(c *fiber.Ctx, err error) error {
	return c.Status(ErrorStatusCode(err)).JSON(fiber.Map{
		"success": false,
		"message": ErrorMessage(err),
	})
}
