package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/jobportal/account-service/internal/api/middleware"
	"github.com/jobportal/account-service/internal/core/domain"
)

// ctxSession extracts the identity injected by the Session middleware. An
// empty account id means the route was mounted without the middleware.
func ctxSession(c echo.Context) (accountID, role string, err error) {
	accountID, _ = c.Get(middleware.ContextAccountID).(string)
	if accountID == "" {
		return "", "", domain.ErrUnauthenticated
	}
	role, _ = c.Get(middleware.ContextRole).(string)
	return accountID, role, nil
}
