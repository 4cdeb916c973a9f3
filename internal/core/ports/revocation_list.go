package ports

import (
	"context"
	"time"
)

// RevocationList remembers revoked session tokens until they would have expired.
type RevocationList interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}
