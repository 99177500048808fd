package ports

import "context"

// TokenVerifier validates a bearer token and extracts the subject user ID.
// Implementations return domain.ErrInvalidToken for anything that does not
// verify.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}
