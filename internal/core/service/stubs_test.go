package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jobportal/account-service/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory account repository
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Account
	nextID   int
	createFn func(*domain.Account) error // optional hook, runs before insert
	patchErr error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	c.Profile.Skills = append([]string(nil), a.Profile.Skills...)
	return &c
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	if r.createFn != nil {
		if err := r.createFn(a); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.nextID++
	c := cloneAccount(a)
	c.ID = fmt.Sprintf("acc-%d", r.nextID)
	r.byID[c.ID] = c
	return cloneAccount(c), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

// ApplyProfilePatch mirrors the $set semantics of the Mongo repository.
func (r *stubAccountRepo) ApplyProfilePatch(_ context.Context, id string, p domain.ProfilePatch) (*domain.Account, error) {
	if r.patchErr != nil {
		return nil, r.patchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if p.Email != nil {
		for otherID, other := range r.byID {
			if otherID != id && other.Email == *p.Email {
				return nil, domain.ErrAccountExists
			}
		}
		a.Email = *p.Email
	}
	if p.FullName != nil {
		a.FullName = *p.FullName
	}
	if p.PhoneNumber != nil {
		a.PhoneNumber = *p.PhoneNumber
	}
	if p.Bio != nil {
		a.Profile.Bio = *p.Bio
	}
	if p.Skills != nil {
		a.Profile.Skills = append([]string(nil), p.Skills...)
	}
	if p.Resume != nil {
		a.Profile.Resume = *p.Resume
	}
	if p.ResumeOriginalName != nil {
		a.Profile.ResumeOriginalName = *p.ResumeOriginalName
	}
	return cloneAccount(a), nil
}

// ---------------------------------------------------------------------------
// Asset store, cleanup queue and registration guard
// ---------------------------------------------------------------------------

type upload struct {
	namespace string
	filename  string
	size      int
}

type stubAssetStore struct {
	mu        sync.Mutex
	uploads   []upload
	uploadErr error
}

func (s *stubAssetStore) Upload(_ context.Context, namespace, filename string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, upload{namespace: namespace, filename: filename, size: len(data)})
	return fmt.Sprintf("https://cdn.example.com/%s/%d-%s", namespace, len(s.uploads), filename), nil
}

func (s *stubAssetStore) Delete(context.Context, string) error { return nil }

func (s *stubAssetStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

type stubCleanup struct {
	mu   sync.Mutex
	urls []string
}

func (c *stubCleanup) Enqueue(_ string, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, url)
}

func (c *stubCleanup) queued() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.urls...)
}

type stubGuard struct {
	held       map[string]string
	acquireErr error
	seq        int
	released   []string
}

func newStubGuard() *stubGuard { return &stubGuard{held: make(map[string]string)} }

func (g *stubGuard) Acquire(_ context.Context, email string) (string, bool, error) {
	if g.acquireErr != nil {
		return "", false, g.acquireErr
	}
	if _, ok := g.held[email]; ok {
		return "", false, nil
	}
	g.seq++
	token := fmt.Sprintf("holder-%d", g.seq)
	g.held[email] = token
	return token, true, nil
}

func (g *stubGuard) Release(_ context.Context, email, token string) error {
	if g.held[email] == token {
		delete(g.held, email)
	}
	g.released = append(g.released, email)
	return nil
}

var errBoom = errors.New("boom")

// jpegBytes is enough of a JPEG header for content sniffing.
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}
