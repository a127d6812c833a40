package lock

import (
	"context"
	"sync"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
)

// MemoryLocker implements shared.Locker inside one process. Used with the
// in-memory task queue and in tests.
type MemoryLocker struct {
	mu     sync.Mutex
	held   map[string]memoryEntry
	now    func() time.Time
	serial uint64
}

type memoryEntry struct {
	serial    uint64
	expiresAt time.Time
}

var _ shared.Locker = (*MemoryLocker)(nil)

// NewMemoryLocker creates an empty in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

// TryAcquire takes key unless a live holder owns it
func (l *MemoryLocker) TryAcquire(_ context.Context, key string, ttl time.Duration) (shared.Lock, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.held[key]; ok && now.Before(entry.expiresAt) {
		return nil, false, nil
	}

	l.serial++
	l.held[key] = memoryEntry{serial: l.serial, expiresAt: now.Add(ttl)}
	return &memoryLock{locker: l, key: key, serial: l.serial}, true, nil
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	serial uint64
}

// Release frees key if this holder still owns it
func (m *memoryLock) Release(_ context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()

	entry, ok := m.locker.held[m.key]
	if !ok || entry.serial != m.serial {
		return ErrLockLost
	}
	delete(m.locker.held, m.key)
	return nil
}
