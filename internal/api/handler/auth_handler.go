package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/account-service/internal/api/metrics"
	"github.com/jobportal/account-service/internal/api/middleware"
	"github.com/jobportal/account-service/internal/core/domain"
	"github.com/jobportal/account-service/internal/core/ports"
)

// CookieConfig controls how the session cookie is written.
type CookieConfig struct {
	// Secure forces the Secure attribute. Requests arriving over TLS get it
	// regardless.
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.TTL <= 0 {
		cookie.TTL = 24 * time.Hour
	}
	return &AuthHandler{authService: authService, cookie: cookie}
}

type registerRequest struct {
	FullName    string `json:"fullname"    form:"fullname"`
	Email       string `json:"email"       form:"email"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Password    string `json:"password"    form:"password"`
	Role        string `json:"role"        form:"role"`
}

type loginRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role"     form:"role"     validate:"required"`
}

// Register creates a new account. It does not log the caller in.
//
// @Summary      Register a new account
// @Tags         user
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullname     formData  string  true   "Full name"
// @Param        email        formData  string  true   "Email"
// @Param        phoneNumber  formData  string  true   "Numeric phone number"
// @Param        password     formData  string  true   "Password (min 6)"
// @Param        role         formData  string  true   "jobseeker or recruiter"
// @Param        file         formData  file    false  "Profile photo (jpeg, png, webp)"
// @Success      201  {object}  messageResponse
// @Failure      400  {object}  messageResponse
// @Failure      502  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/v1/user/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	photo, err := formFile(c, "file")
	if err != nil {
		return err
	}

	_, err = h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        req.Role,
		Photo:       photo,
	})

	role := req.Role
	if !domain.ValidRole(role) {
		role = "invalid"
	}
	metrics.RegistrationsTotal.WithLabelValues(role, outcome(err, "created")).Inc()

	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Success: true, Message: "Account created successfully."})
}

// Login verifies credentials and sets the session cookie.
//
// @Summary      Login
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/v1/user/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	// A missing field is reported like a wrong password so the response never
	// names the check that failed.
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return domain.ErrInvalidCredentials
	}

	session, account, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	metrics.LoginsTotal.WithLabelValues(outcome(err, "success")).Inc()
	if err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie(c, session.Token, int(h.cookie.TTL/time.Second), session.ExpiresAt))
	return c.JSON(http.StatusOK, accountResponse{
		Success: true,
		Message: "Welcome back " + account.FullName,
		User:    account,
	})
}

// Logout clears the session cookie. It always succeeds.
//
// @Summary      Logout
// @Tags         user
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/v1/user/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie(c, "", -1, time.Unix(0, 0)))
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully."})
}

func (h *AuthHandler) sessionCookie(c echo.Context, value string, maxAge int, expires time.Time) *http.Cookie {
	secure := h.cookie.Secure || c.Scheme() == "https"
	sameSite := http.SameSiteLaxMode
	if secure {
		// cross-site requests from the web client only carry the cookie with None
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires.UTC(),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}
