package subscription

import (
	"context"

	"github.com/ignite/newsletter/internal/domain"
)

// Repository defines the data access contract for subscribers and their
// confirmation tokens. Implementations must be safe for concurrent use.
type Repository interface {
	// Create inserts a subscriber together with its confirmation token as
	// one atomic unit. Returns ErrDuplicateEmail if the email already
	// exists and ErrTokenCollision if the token does; on a collision the
	// caller retries with a freshly issued token.
	Create(ctx context.Context, s *domain.Subscriber, token string) error

	// FindSubscriberByToken resolves a token to a subscriber id.
	// Returns ErrUnknownToken if the token does not exist. The token is
	// read, not consumed: resolving it twice yields the same subscriber.
	FindSubscriberByToken(ctx context.Context, token string) (string, error)

	// MarkConfirmed transitions a subscriber to confirmed. Idempotent:
	// confirming an already-confirmed subscriber is a no-op success.
	MarkConfirmed(ctx context.Context, subscriberID string) error

	// ListConfirmed returns a snapshot of all confirmed subscribers at
	// query time, each at most once. Ordering is unspecified.
	ListConfirmed(ctx context.Context) ([]domain.Recipient, error)
}
