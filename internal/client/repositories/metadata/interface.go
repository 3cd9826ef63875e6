package metadata

import (
	"context"
)

// Repository is a string key/value store for client state such as the
// session token.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
