package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/account-service/internal/api/metrics"
	"github.com/jobportal/account-service/internal/core/ports"
)

type ProfileHandler struct {
	profileService ports.ProfileService
}

func NewProfileHandler(profileService ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type updateProfileRequest struct {
	FullName    string `json:"fullname"    form:"fullname"`
	Email       string `json:"email"       form:"email"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Bio         string `json:"bio"         form:"bio"`
	Skills      string `json:"skills"      form:"skills"`
}

// UpdateProfile applies a partial update to the session's account. Empty
// fields keep their stored values.
//
// @Summary      Update profile
// @Tags         user
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullname     formData  string  false  "Full name"
// @Param        email        formData  string  false  "Email"
// @Param        phoneNumber  formData  string  false  "Numeric phone number"
// @Param        bio          formData  string  false  "Bio"
// @Param        skills       formData  string  false  "Comma-separated skills"
// @Param        file         formData  file    false  "Resume"
// @Success      200  {object}  accountResponse
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      502  {object}  messageResponse
// @Security     BearerAuth
// @Router       /api/v1/user/profile/update [post]
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	accountID, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	resume, err := formFile(c, "file")
	if err != nil {
		return err
	}

	account, err := h.profileService.UpdateProfile(c.Request().Context(), ports.UpdateProfileInput{
		AccountID:   accountID,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		Skills:      req.Skills,
		Resume:      resume,
	})
	metrics.ProfileUpdatesTotal.WithLabelValues(outcome(err, "updated")).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, accountResponse{
		Success: true,
		Message: "Profile updated successfully.",
		User:    account,
	})
}

// Me returns the account bound to the current session.
//
// @Summary      Current account
// @Tags         user
// @Produce      json
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Security     BearerAuth
// @Router       /api/v1/user/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	accountID, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	account, err := h.profileService.GetAccount(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Success: true, User: account})
}

// RecruiterSession confirms the session belongs to a recruiter.
//
// @Summary      Recruiter session check
// @Tags         user
// @Produce      json
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Security     BearerAuth
// @Router       /api/v1/user/recruiter/session [get]
func (h *ProfileHandler) RecruiterSession(c echo.Context) error {
	return h.Me(c)
}
