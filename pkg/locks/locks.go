package locks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// acquireRetryInterval is how long Acquire waits between attempts on a
// contended lock.
const acquireRetryInterval = 50 * time.Millisecond

// taskLockKeyTemplate names locks that stop background tasks from
// overlapping with themselves.
const taskLockKeyTemplate = "locks:non-overlapping:%s"

// releaseScript deletes the lock key only while it still holds our token,
// so an expired lock reacquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// TaskLockKey returns the lock name for a non-overlapping background task.
func TaskLockKey(base string) string {
	return fmt.Sprintf(taskLockKeyTemplate, base)
}

// Manager acquires and releases named locks on a Redis server. All keys are
// namespaced with a global prefix so multiple applications can share the
// server.
type Manager struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
	log     *zap.SugaredLogger
}

// New creates a lock Manager. keyPrefix is a short string unique to the
// application (e.g. "MYAPP"). lockTimeout is how long a held lock survives
// before Redis expires it; this stops locks from being held indefinitely
// when a holder dies, but must exceed the longest critical section.
func New(client redis.UniversalClient, keyPrefix string, lockTimeout time.Duration, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Minute
	}
	return &Manager{
		client:  client,
		prefix:  keyPrefix,
		timeout: lockTimeout,
		log:     logger.Named("locks"),
	}
}

func (m *Manager) formatKey(name string) string {
	return fmt.Sprintf("~~%s~~:%s", m.prefix, name)
}

// Lock is a held named lock. Release it when the critical section ends.
type Lock struct {
	manager *Manager
	key     string
	token   string
}

// Key returns the fully prefixed Redis key of the lock.
func (l *Lock) Key() string { return l.key }

// Acquire blocks until the named lock is held or ctx is done.
func (m *Manager) Acquire(ctx context.Context, name string) (*Lock, error) {
	key := m.formatKey(name)
	token := uuid.NewString()

	m.log.Debugw("Acquiring lock", "key", key)
	for {
		ok, err := m.client.SetNX(ctx, key, token, m.timeout).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
		}
		if ok {
			return &Lock{manager: m, key: key, token: token}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquiring lock %s: %w", key, ctx.Err())
		case <-time.After(acquireRetryInterval):
		}
	}
}

// TryAcquire attempts to take the named lock without blocking. The second
// return value reports whether the lock was obtained.
func (m *Manager) TryAcquire(ctx context.Context, name string) (*Lock, bool, error) {
	key := m.formatKey(name)
	token := uuid.NewString()

	ok, err := m.client.SetNX(ctx, key, token, m.timeout).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Lock{manager: m, key: key, token: token}, true, nil
}

// AcquireMulti acquires several named locks. Names are sorted before
// acquisition so concurrent callers locking overlapping sets cannot
// deadlock; duplicates are rejected. On failure, already-held locks are
// released in reverse order.
func (m *Manager) AcquireMulti(ctx context.Context, names []string) ([]*Lock, error) {
	sorted, err := sortedUniqueNames(names)
	if err != nil {
		return nil, err
	}

	locks := make([]*Lock, 0, len(sorted))
	for _, name := range sorted {
		lock, err := m.Acquire(ctx, name)
		if err != nil {
			ReleaseAll(ctx, locks)
			return nil, err
		}
		locks = append(locks, lock)
	}
	m.log.Debugw("All locks acquired", "count", len(locks))
	return locks, nil
}

// ReleaseAll releases locks in reverse acquisition order.
func ReleaseAll(ctx context.Context, locks []*Lock) {
	for i := len(locks) - 1; i >= 0; i-- {
		if err := locks[i].Release(ctx); err != nil {
			locks[i].manager.log.Warnw("Failed to release lock",
				"key", locks[i].key,
				"error", err)
		}
	}
}

// Release releases the lock. A lock whose timeout already expired (and may
// have been taken over by another holder) is left alone and reported via a
// warning.
func (l *Lock) Release(ctx context.Context) error {
	l.manager.log.Debugw("Releasing lock", "key", l.key)

	deleted, err := releaseScript.Run(ctx, l.manager.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("releasing lock %s: %w", l.key, err)
	}
	if deleted == 0 {
		l.manager.log.Warnw("Lock expired before release; not deleting", "key", l.key)
	}
	return nil
}

// sortedUniqueNames validates and orders a lock name set.
func sortedUniqueNames(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("locks: no lock names given")
	}

	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("locks: duplicate lock name %q", n)
		}
		seen[n] = struct{}{}
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return sorted, nil
}
