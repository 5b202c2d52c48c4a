package ports

import "context"

// LoginAttempts tracks failed logins per normalized username so repeated
// failures can be throttled. Keys are tracked whether or not the username
// exists, so throttling reveals nothing about registered accounts.
type LoginAttempts interface {
	// TooMany reports whether the key is currently locked out.
	TooMany(ctx context.Context, key string) (bool, error)

	// RecordFailure counts one failed attempt against the key.
	RecordFailure(ctx context.Context, key string) error

	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, key string) error
}
