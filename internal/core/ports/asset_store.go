package ports

import "context"

// Asset namespaces keep profile photos and documents apart in the bucket.
const (
	NamespaceProfilePhotos = "profile-photos"
	NamespaceResumes       = "resumes"
)

// AssetStore uploads bytes and hands back a durable public URL.
type AssetStore interface {
	Upload(ctx context.Context, namespace, filename string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// AssetCleanup schedules deletion of an asset that is no longer referenced.
// Key groups related deletions (usually an account id or email).
type AssetCleanup interface {
	Enqueue(key, url string)
}

// RegistrationGuard serializes registrations of the same email.
type RegistrationGuard interface {
	// Acquire returns false when another registration holds the email. On
	// success the returned token identifies this holder.
	Acquire(ctx context.Context, email string) (token string, ok bool, err error)
	// Release frees email only while token still holds it.
	Release(ctx context.Context, email, token string) error
}
