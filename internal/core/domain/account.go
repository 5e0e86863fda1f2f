package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	RoleJobSeeker = "jobseeker"
	RoleRecruiter = "recruiter"
)

// ValidRole reports whether role is one of the closed set of account roles.
func ValidRole(role string) bool {
	return role == RoleJobSeeker || role == RoleRecruiter
}

// Profile is the mutable part of an account.
type Profile struct {
	ProfilePhoto       string   `json:"profilePhoto,omitempty"`
	Bio                string   `json:"bio,omitempty"`
	Skills             []string `json:"skills"`
	Resume             string   `json:"resume,omitempty"`
	ResumeOriginalName string   `json:"resumeOriginalName,omitempty"`
}

// Account is a registered job seeker or recruiter.
type Account struct {
	ID           string    `json:"_id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	PhoneNumber  int64     `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfilePatch lists the fields a profile update writes. Nil pointers and nil
// slices are left untouched by the store.
type ProfilePatch struct {
	FullName           *string
	Email              *string
	PhoneNumber        *int64
	Bio                *string
	Skills             []string
	Resume             *string
	ResumeOriginalName *string
}

// Empty reports whether the patch writes nothing.
func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.Email == nil && p.PhoneNumber == nil &&
		p.Bio == nil && p.Skills == nil && p.Resume == nil && p.ResumeOriginalName == nil
}

// NormalizeEmail lowercases and trims an email address. Every comparison and
// every stored email goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParsePhoneNumber parses a phone number given as base-10 digits.
func ParsePhoneNumber(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, &ValidationError{Field: "phoneNumber", Message: "Phone number must be numeric"}
	}
	return n, nil
}

// ParseSkills splits a comma-separated list, trims every entry and drops the
// empty ones. Order follows the input.
func ParseSkills(s string) []string {
	parts := strings.Split(s, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}
