// Package redis rations sandbox workers across replicas with Redis leases.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/quiver/pkg/ports"
)

var (
	// ErrSlotAcquire is returned when Redis fails while leasing a slot.
	ErrSlotAcquire = errors.New("failed to acquire worker slot")
)

const (
	// DefaultTTL bounds how long a crashed holder can keep a slot leased.
	DefaultTTL = 30 * time.Second
	// DefaultPollInterval is the wait between full scans of the slot keys.
	DefaultPollInterval = 100 * time.Millisecond
)

// releaseScript deletes the slot only if the lease is still ours.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Limiter implements ports.Limiter using N leased keys (SET NX PX).
type Limiter struct {
	client *backend.Client
	prefix string
	slots  int
	ttl    time.Duration
	poll   time.Duration
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithTTL sets the lease lifetime. It must exceed the compile timeout.
func WithTTL(ttl time.Duration) Option {
	return func(l *Limiter) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithPollInterval sets the retry interval while all slots are leased.
func WithPollInterval(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.poll = d
		}
	}
}

// NewLimiter creates a limiter with the given number of slots (at least one).
func NewLimiter(client *backend.Client, prefix string, slots int, opts ...Option) *Limiter {
	if slots < 1 {
		slots = 1
	}
	l := &Limiter{
		client: client,
		prefix: prefix,
		slots:  slots,
		ttl:    DefaultTTL,
		poll:   DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) key(i int) string {
	return l.prefix + "slot:" + strconv.Itoa(i)
}

// Acquire leases the first free slot, polling until one frees up.
func (l *Limiter) Acquire(ctx context.Context) (ports.ReleaseFunc, error) {
	token := uuid.NewString()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := 0; i < l.slots; i++ {
			key := l.key(i)
			ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, fmt.Errorf("%w: %w", ErrSlotAcquire, err)
			}
			if ok {
				return l.releaser(key, token), nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Limiter) releaser(key, token string) ports.ReleaseFunc {
	var once sync.Once
	var err error
	return func(ctx context.Context) error {
		once.Do(func() {
			err = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		})
		return err
	}
}

var _ ports.Limiter = (*Limiter)(nil)
