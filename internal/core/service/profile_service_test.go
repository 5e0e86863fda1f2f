package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jobportal/account-service/internal/core/domain"
	"github.com/jobportal/account-service/internal/core/ports"
)

type profileFixture struct {
	repo    *stubAccountRepo
	assets  *stubAssetStore
	cleanup *stubCleanup
	svc     *ProfileService
	account *domain.Account
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	f := &profileFixture{
		repo:    newStubAccountRepo(),
		assets:  &stubAssetStore{},
		cleanup: &stubCleanup{},
	}
	f.svc = NewProfileService(f.repo, f.assets, f.cleanup, 0, discardLogger)

	now := time.Now().UTC()
	created, err := f.repo.Create(context.Background(), &domain.Account{
		FullName:    "Alice Doe",
		Email:       "alice@example.com",
		PhoneNumber: 9876543210,
		Role:        domain.RoleJobSeeker,
		Profile: domain.Profile{
			Bio:    "Backend engineer",
			Skills: []string{"go", "sql"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	f.account = created
	return f
}

func (f *profileFixture) stored(t *testing.T) *domain.Account {
	t.Helper()
	a, err := f.repo.FindByID(context.Background(), f.account.ID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	return a
}

func TestProfileService_GetAccount(t *testing.T) {
	f := newProfileFixture(t)

	got, err := f.svc.GetAccount(context.Background(), f.account.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Fatalf("unexpected email %q", got.Email)
	}

	if _, err := f.svc.GetAccount(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestProfileService_UpdateBioOnly(t *testing.T) {
	f := newProfileFixture(t)

	got, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Bio:       "  Loves distributed systems  ",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if got.Profile.Bio != "Loves distributed systems" {
		t.Fatalf("expected trimmed bio, got %q", got.Profile.Bio)
	}
	if got.FullName != f.account.FullName || got.Email != f.account.Email || got.PhoneNumber != f.account.PhoneNumber {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if !reflect.DeepEqual(got.Profile.Skills, []string{"go", "sql"}) {
		t.Fatalf("skills changed: %v", got.Profile.Skills)
	}
	if f.assets.count() != 0 {
		t.Fatalf("no upload expected without a resume")
	}
}

func TestProfileService_SkillsNormalization(t *testing.T) {
	f := newProfileFixture(t)

	got, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Skills:    " go, , rust ,  ",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if !reflect.DeepEqual(got.Profile.Skills, []string{"go", "rust"}) {
		t.Fatalf("unexpected skills %v", got.Profile.Skills)
	}
}

func TestProfileService_EmptyBioAndSkillsRetained(t *testing.T) {
	f := newProfileFixture(t)

	got, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Bio:       "   ",
		Skills:    " , ,",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Profile.Bio != "Backend engineer" {
		t.Fatalf("bio should be kept, got %q", got.Profile.Bio)
	}
	if !reflect.DeepEqual(got.Profile.Skills, []string{"go", "sql"}) {
		t.Fatalf("skills should be kept, got %v", got.Profile.Skills)
	}
}

func TestProfileService_NoFieldsReturnsCurrent(t *testing.T) {
	f := newProfileFixture(t)
	f.repo.patchErr = errBoom

	got, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{AccountID: f.account.ID})
	if err != nil {
		t.Fatalf("empty update should not write: %v", err)
	}
	if got.ID != f.account.ID {
		t.Fatalf("unexpected account %+v", got)
	}
}

func TestProfileService_RejectsNonNumericPhone(t *testing.T) {
	f := newProfileFixture(t)

	_, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		AccountID:   f.account.ID,
		PhoneNumber: "abc",
		Bio:         "should not be applied",
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "phoneNumber" {
		t.Fatalf("expected phoneNumber ValidationError, got %v", err)
	}
	if bio := f.stored(t).Profile.Bio; bio != "Backend engineer" {
		t.Fatalf("rejected update was partially applied: bio %q", bio)
	}
}

func TestProfileService_RejectsInvalidEmail(t *testing.T) {
	f := newProfileFixture(t)

	_, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Email:     "nope",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProfileService_EmailChange(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	if _, err := f.repo.Create(ctx, &domain.Account{FullName: "Bob", Email: "bob@example.com", Role: domain.RoleRecruiter}); err != nil {
		t.Fatalf("seed second account: %v", err)
	}

	_, err := f.svc.UpdateProfile(ctx, ports.UpdateProfileInput{AccountID: f.account.ID, Email: "BOB@example.com"})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	got, err := f.svc.UpdateProfile(ctx, ports.UpdateProfileInput{AccountID: f.account.ID, Email: "Alice.New@Example.com"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Email != "alice.new@example.com" {
		t.Fatalf("expected normalized email, got %q", got.Email)
	}

	// Re-submitting the current email is not a conflict with itself.
	if _, err := f.svc.UpdateProfile(ctx, ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Email:     "alice.new@example.com",
		FullName:  "Alice N.",
	}); err != nil {
		t.Fatalf("resubmitting own email: %v", err)
	}
}

func TestProfileService_ResumeReplacesPrevious(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	first, err := f.svc.UpdateProfile(ctx, ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Resume:    &ports.Upload{Filename: "/tmp/uploads/cv.pdf", Data: []byte("%PDF-1.4 first")},
	})
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if first.Profile.Resume == "" || first.Profile.ResumeOriginalName != "cv.pdf" {
		t.Fatalf("unexpected resume fields %+v", first.Profile)
	}
	if q := f.cleanup.queued(); len(q) != 0 {
		t.Fatalf("nothing to clean up on the first resume, got %v", q)
	}

	second, err := f.svc.UpdateProfile(ctx, ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Resume:    &ports.Upload{Filename: "cv-2025.pdf", Data: []byte("%PDF-1.4 second")},
	})
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if second.Profile.Resume == first.Profile.Resume || second.Profile.ResumeOriginalName != "cv-2025.pdf" {
		t.Fatalf("resume not replaced: %+v", second.Profile)
	}
	if q := f.cleanup.queued(); !reflect.DeepEqual(q, []string{first.Profile.Resume}) {
		t.Fatalf("expected previous resume queued for deletion, got %v", q)
	}
}

func TestProfileService_ResumeTooLarge(t *testing.T) {
	f := newProfileFixture(t)
	f.svc = NewProfileService(f.repo, f.assets, f.cleanup, 8, discardLogger)

	_, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Resume:    &ports.Upload{Filename: "cv.pdf", Data: []byte("0123456789")},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if f.assets.count() != 0 {
		t.Fatalf("oversized resume must not be uploaded")
	}
}

func TestProfileService_UploadFailureLeavesAccountUntouched(t *testing.T) {
	f := newProfileFixture(t)
	f.assets.uploadErr = errBoom

	_, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Bio:       "changed",
		Resume:    &ports.Upload{Filename: "cv.pdf", Data: []byte("%PDF")},
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if bio := f.stored(t).Profile.Bio; bio != "Backend engineer" {
		t.Fatalf("account changed after failed upload: bio %q", bio)
	}
}

func TestProfileService_PersistFailureDiscardsResume(t *testing.T) {
	f := newProfileFixture(t)
	f.repo.patchErr = errBoom

	_, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Resume:    &ports.Upload{Filename: "cv.pdf", Data: []byte("%PDF")},
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if q := f.cleanup.queued(); len(q) != 1 {
		t.Fatalf("expected orphaned resume queued, got %v", q)
	}
}

func TestProfileService_WithoutCleanupDispatcher(t *testing.T) {
	f := newProfileFixture(t)
	f.svc = NewProfileService(f.repo, f.assets, nil, 0, discardLogger)
	ctx := context.Background()

	for _, name := range []string{"cv.pdf", "cv-2.pdf"} {
		if _, err := f.svc.UpdateProfile(ctx, ports.UpdateProfileInput{
			AccountID: f.account.ID,
			Resume:    &ports.Upload{Filename: name, Data: []byte("%PDF")},
		}); err != nil {
			t.Fatalf("upload %s: %v", name, err)
		}
	}

	f.repo.patchErr = errBoom
	_, err := f.svc.UpdateProfile(ctx, ports.UpdateProfileInput{
		AccountID: f.account.ID,
		Resume:    &ports.Upload{Filename: "cv-3.pdf", Data: []byte("%PDF")},
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestProfileService_UnknownAccount(t *testing.T) {
	f := newProfileFixture(t)

	_, err := f.svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		AccountID: "acc-999",
		Bio:       "x",
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestProfileService_ConcurrentDisjointUpdates(t *testing.T) {
	f := newProfileFixture(t)

	inputs := []ports.UpdateProfileInput{
		{AccountID: f.account.ID, Bio: "new bio"},
		{AccountID: f.account.ID, Skills: "kafka"},
	}
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in ports.UpdateProfileInput) {
			defer wg.Done()
			_, errs[i] = f.svc.UpdateProfile(context.Background(), in)
		}(i, in)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	stored := f.stored(t)
	if stored.Profile.Bio != "new bio" || !reflect.DeepEqual(stored.Profile.Skills, []string{"kafka"}) {
		t.Fatalf("concurrent updates lost a field: %+v", stored.Profile)
	}
}
