package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/account-service/internal/core/domain"
	"github.com/jobportal/account-service/internal/core/ports"
)

const (
	// SessionCookie carries the session token issued at login.
	SessionCookie = "token"

	ContextAccountID = "account_id"
	ContextRole      = "role"
)

// Session resolves the session token into an account id and role and injects
// both into the context. The cookie wins over an Authorization: Bearer header.
func Session(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c)
			if token == "" {
				return domain.ErrUnauthenticated
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				return domain.ErrUnauthenticated
			}

			c.Set(ContextAccountID, claims.AccountID)
			c.Set(ContextRole, claims.Role)

			return next(c)
		}
	}
}

func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	scheme, token, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
