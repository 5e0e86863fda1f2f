package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jobportal/account-service/internal/core/domain"
	"github.com/jobportal/account-service/internal/core/ports"
)

const defaultMaxResumeBytes = 5 << 20

// ProfileService applies partial updates to an account's profile.
//
// Empty or absent bio and skills keep the stored values; there is no way to
// clear them through an update.
type ProfileService struct {
	repo           ports.AccountRepository
	assets         ports.AssetStore
	cleanup        ports.AssetCleanup
	validate       *validator.Validate
	maxResumeBytes int64
	log            zerolog.Logger
}

func NewProfileService(
	repo ports.AccountRepository,
	assets ports.AssetStore,
	cleanup ports.AssetCleanup,
	maxResumeBytes int64,
	log zerolog.Logger,
) *ProfileService {
	if maxResumeBytes <= 0 {
		maxResumeBytes = defaultMaxResumeBytes
	}
	return &ProfileService{
		repo:           repo,
		assets:         assets,
		cleanup:        cleanup,
		validate:       newValidator(),
		maxResumeBytes: maxResumeBytes,
		log:            log,
	}
}

// GetAccount returns the account bound to the current session.
func (s *ProfileService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

// UpdateProfile validates every supplied field, re-checks email uniqueness,
// uploads the optional resume and only then persists the patch.
func (s *ProfileService) UpdateProfile(ctx context.Context, in ports.UpdateProfileInput) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}

	patch, err := s.buildPatch(ctx, account, in)
	if err != nil {
		return nil, err
	}

	var resumeURL string
	if in.Resume != nil {
		resumeURL, err = s.assets.Upload(ctx, ports.NamespaceResumes, in.Resume.Filename, in.Resume.Data)
		if err != nil {
			return nil, upstream("update profile: upload resume", err)
		}
		name := filepath.Base(in.Resume.Filename)
		patch.Resume = &resumeURL
		patch.ResumeOriginalName = &name
	}

	if patch.Empty() {
		return account, nil
	}

	updated, err := s.repo.ApplyProfilePatch(ctx, account.ID, patch)
	if err != nil {
		s.discard(account.ID, resumeURL)
		if errors.Is(err, domain.ErrAccountExists) || errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if resumeURL != "" && account.Profile.Resume != resumeURL {
		s.discard(account.ID, account.Profile.Resume)
	}

	s.log.Info().Str("account_id", account.ID).Msg("profile updated")
	return updated, nil
}

// discard queues a resume nobody references anymore. cleanup may be nil, in
// which case the object is left in the store.
func (s *ProfileService) discard(accountID, url string) {
	if url == "" || s.cleanup == nil {
		return
	}
	s.cleanup.Enqueue(accountID, url)
}

func (s *ProfileService) buildPatch(ctx context.Context, account *domain.Account, in ports.UpdateProfileInput) (domain.ProfilePatch, error) {
	var patch domain.ProfilePatch

	form := profileForm{
		Email:       domain.NormalizeEmail(in.Email),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	}
	if err := validateForm(s.validate, form); err != nil {
		return patch, err
	}

	if name := strings.TrimSpace(in.FullName); name != "" {
		patch.FullName = &name
	}

	if form.PhoneNumber != "" {
		phone, err := domain.ParsePhoneNumber(form.PhoneNumber)
		if err != nil {
			return patch, err
		}
		patch.PhoneNumber = &phone
	}

	if bio := strings.TrimSpace(in.Bio); bio != "" {
		patch.Bio = &bio
	}

	if skills := domain.ParseSkills(in.Skills); len(skills) > 0 {
		patch.Skills = skills
	}

	if in.Resume != nil {
		if err := checkResume(in.Resume.Data, s.maxResumeBytes); err != nil {
			return patch, err
		}
	}

	if form.Email != "" && form.Email != account.Email {
		other, err := s.repo.FindByEmail(ctx, form.Email)
		switch {
		case err == nil && other.ID != account.ID:
			return patch, domain.ErrAccountExists
		case err != nil && !errors.Is(err, domain.ErrAccountNotFound):
			return patch, fmt.Errorf("update profile: lookup email: %w", err)
		}
		patch.Email = &form.Email
	}

	return patch, nil
}
