package service

import (
	"context"
)

// UserLocker serializes mutations of one user's documents. fn runs while
// the lock for userKey is held; the lock is released when fn returns.
type UserLocker interface {
	WithLock(ctx context.Context, userKey string, fn func(ctx context.Context) error) error
}
