package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/account-service/internal/core/domain"
	"github.com/jobportal/account-service/internal/core/ports"
)

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type accountResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	User    *domain.Account `json:"user"`
}

// formFile reads the optional multipart file under field. A missing file
// yields nil without error.
func formFile(c echo.Context, field string) (*ports.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}
	data, err := readFile(fh)
	if err != nil {
		return nil, err
	}
	return &ports.Upload{Filename: fh.Filename, Data: data}, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// outcome buckets an error into a metric label.
func outcome(err error, ok string) string {
	switch {
	case err == nil:
		return ok
	case errors.Is(err, domain.ErrAccountExists):
		return "conflict"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
