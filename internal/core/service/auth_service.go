package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobportal/account-service/internal/core/domain"
	"github.com/jobportal/account-service/internal/core/ports"
)

const (
	minBcryptCost        = 10
	defaultMaxPhotoBytes = 1 << 20
)

// AuthConfig tunes the credential workflow.
type AuthConfig struct {
	BcryptCost    int
	MaxPhotoBytes int64
}

// AuthService implements registration and login.
type AuthService struct {
	repo     ports.AccountRepository
	assets   ports.AssetStore
	cleanup  ports.AssetCleanup
	guard    ports.RegistrationGuard
	tokens   *TokenManager
	validate *validator.Validate
	cfg      AuthConfig
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService wires the credential workflow. guard may be nil, in which
// case concurrent registrations rely on the store's unique index alone.
func NewAuthService(
	repo ports.AccountRepository,
	assets ports.AssetStore,
	cleanup ports.AssetCleanup,
	guard ports.RegistrationGuard,
	tokens *TokenManager,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.BcryptCost < minBcryptCost {
		cfg.BcryptCost = minBcryptCost
	}
	if cfg.MaxPhotoBytes <= 0 {
		cfg.MaxPhotoBytes = defaultMaxPhotoBytes
	}
	return &AuthService{
		repo:     repo,
		assets:   assets,
		cleanup:  cleanup,
		guard:    guard,
		tokens:   tokens,
		validate: newValidator(),
		cfg:      cfg,
		log:      log,
	}
}

// Register validates the form, rejects known emails, uploads the optional
// photo and persists a new account. It never issues a session.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	form := registrationForm{
		FullName:    strings.TrimSpace(in.FullName),
		Email:       domain.NormalizeEmail(in.Email),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Password:    in.Password,
		Role:        strings.TrimSpace(in.Role),
	}
	if err := validateForm(s.validate, form); err != nil {
		return nil, err
	}
	phone, err := domain.ParsePhoneNumber(form.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if in.Photo != nil {
		if err := checkPhoto(in.Photo.Data, s.cfg.MaxPhotoBytes); err != nil {
			return nil, err
		}
	}

	if err := s.ensureEmailFree(ctx, form.Email); err != nil {
		return nil, err
	}

	release, err := s.hold(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	defer release()

	var photoURL string
	if in.Photo != nil {
		photoURL, err = s.assets.Upload(ctx, ports.NamespaceProfilePhotos, in.Photo.Filename, in.Photo.Data)
		if err != nil {
			return nil, upstream("register: upload photo", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cfg.BcryptCost)
	if err != nil {
		s.discard(form.Email, photoURL)
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		FullName:     form.FullName,
		Email:        form.Email,
		PhoneNumber:  phone,
		PasswordHash: string(hash),
		Role:         form.Role,
		Profile:      domain.Profile{ProfilePhoto: photoURL},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.discard(form.Email, photoURL)
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("account_id", created.ID).Str("role", created.Role).Msg("account registered")
	return created, nil
}

// Login verifies credentials and role and issues a session token. Every
// rejection is the same domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.Session, *domain.Account, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" || in.Role == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// keep timing in line with the known-email path
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(in.Password))
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if account.Role != in.Role {
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.tokens.Issue(account)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("login succeeded")
	return session, account, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrAccountExists
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	default:
		return fmt.Errorf("register: lookup email: %w", err)
	}
}

// hold takes the registration guard for email. A guard outage is logged and
// ignored; the unique index still rejects duplicates.
func (s *AuthService) hold(ctx context.Context, email string) (func(), error) {
	noop := func() {}
	if s.guard == nil {
		return noop, nil
	}

	token, ok, err := s.guard.Acquire(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("registration guard unavailable, continuing without it")
		return noop, nil
	}
	if !ok {
		return nil, domain.ErrAccountExists
	}

	return func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), email, token); err != nil {
			s.log.Warn().Err(err).Msg("failed to release registration guard")
		}
	}, nil
}

// discard queues an uploaded photo for deletion when its account was never
// persisted.
func (s *AuthService) discard(email, url string) {
	if url == "" || s.cleanup == nil {
		return
	}
	s.cleanup.Enqueue(email, url)
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), s.cfg.BcryptCost)
	})
	return s.dummyHash
}
