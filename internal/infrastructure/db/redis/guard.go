package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultGuardTTL = 30 * time.Second

// releaseScript deletes the guard only while it still carries the caller's
// token, so a request that outlived its TTL cannot free a later holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RegistrationGuard serialises in-flight registrations per email.
// Key format: register:<email>, value: per-acquire token.
type RegistrationGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRegistrationGuard wraps client. The ttl bounds how long a crashed
// request can hold an email; defaultGuardTTL is used when ttl <= 0.
func NewRegistrationGuard(client *redis.Client, ttl time.Duration) *RegistrationGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &RegistrationGuard{client: client, ttl: ttl}
}

// Acquire reports whether the caller now owns the registration slot for email
// and returns the token needed to release it.
func (g *RegistrationGuard) Acquire(ctx context.Context, email string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, guardKey(email), token, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("registration guard acquire: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees email if token still holds it. A guard that expired or was
// taken over is left alone.
func (g *RegistrationGuard) Release(ctx context.Context, email, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{guardKey(email)}, token).Err(); err != nil {
		return fmt.Errorf("registration guard release: %w", err)
	}
	return nil
}

func guardKey(email string) string {
	return "register:" + email
}
