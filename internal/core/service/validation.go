package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/jobportal/account-service/internal/core/domain"
)

var allowedPhotoTypes = []string{"image/jpeg", "image/png", "image/webp"}

// registrationForm is validated field by field in declaration order; the
// first failing field is reported to the caller.
type registrationForm struct {
	FullName    string `json:"fullname"    validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phonenumber"`
	Password    string `json:"password"    validate:"required,min=6"`
	Role        string `json:"role"        validate:"required,oneof=jobseeker recruiter"`
}

type profileForm struct {
	Email       string `json:"email"       validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,phonenumber"`
}

var fieldLabels = map[string]string{
	"fullname":    "Full name",
	"email":       "Email",
	"phoneNumber": "Phone number",
	"password":    "Password",
	"role":        "Role",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("phonenumber", func(fl validator.FieldLevel) bool {
		_, err := domain.ParsePhoneNumber(fl.Field().String())
		return err == nil
	})
	return v
}

// validateForm runs struct validation and converts the first failure into a
// *domain.ValidationError.
func validateForm(v *validator.Validate, form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	return &domain.ValidationError{Field: fe.Field(), Message: fieldMessage(fe)}
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "phonenumber":
		return label + " must be numeric"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func checkPhoto(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return &domain.ValidationError{Field: "file", Message: "Profile photo is empty"}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return &domain.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("Profile photo must be at most %s", humanBytes(maxBytes)),
		}
	}
	if mt := mimetype.Detect(data); !mimetype.EqualsAny(mt.String(), allowedPhotoTypes...) {
		return &domain.ValidationError{Field: "file", Message: "Only JPEG, PNG and WEBP images are allowed"}
	}
	return nil
}

func checkResume(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return &domain.ValidationError{Field: "file", Message: "Resume file is empty"}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return &domain.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("Resume must be at most %s", humanBytes(maxBytes)),
		}
	}
	return nil
}

func humanBytes(n int64) string {
	const mib = 1 << 20
	if n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}

// upstream guarantees asset store failures surface as domain.ErrUpstream.
func upstream(op string, err error) error {
	if errors.Is(err, domain.ErrUpstream) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUpstream, err)
}
