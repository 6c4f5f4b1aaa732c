package lock

import (
	"context"
	"sync"
	"time"

	"github.com/khoahotran/skillora/pkg/apperror"
)

type keyLock struct {
	slot chan struct{}
	refs int
}

// MemoryLocker serializes per-user work inside one process.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
	wait  time.Duration
}

// NewMemoryLocker returns a locker that gives up after wait; zero waits
// until the caller's context ends.
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyLock), wait: wait}
}

func (l *MemoryLocker) ref(userKey string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[userKey]
	if !ok {
		kl = &keyLock{slot: make(chan struct{}, 1)}
		l.locks[userKey] = kl
	}
	kl.refs++
	return kl
}

func (l *MemoryLocker) unref(userKey string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, userKey)
	}
}

func (l *MemoryLocker) WithLock(ctx context.Context, userKey string, fn func(ctx context.Context) error) error {
	kl := l.ref(userKey)
	defer l.unref(userKey, kl)

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case kl.slot <- struct{}{}:
	case <-waitCtx.Done():
		return apperror.NewConflict("user", "key", userKey)
	}
	defer func() { <-kl.slot }()

	return fn(ctx)
}
