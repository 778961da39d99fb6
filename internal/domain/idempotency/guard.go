// Package idempotency deduplicates mutating requests by client-supplied key,
// guaranteeing at-most-once pipeline execution under retries.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrConflict is returned when an idempotency key is reused for a materially
// different request body.
var ErrConflict = errors.New("idempotency key reused with a different request fingerprint")

// Record is a stored idempotency entry. It is written by the persistence
// coordinator inside the same transaction as the pipeline's artifacts, so a
// record exists only for fully committed requests.
type Record struct {
	Key         string
	UserID      string
	Endpoint    string
	Fingerprint string
	Response    json.RawMessage
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired reports whether the record's TTL has lapsed.
func (r *Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Repository reads stored idempotency records. Find returns (nil, nil) when
// no live record exists for the scoped key.
type Repository interface {
	Find(ctx context.Context, userID, endpoint, key string) (*Record, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// Scope identifies a key's namespace: keys are scoped per (user, endpoint)
// to prevent cross-endpoint collisions.
type Scope struct {
	UserID   string
	Endpoint string
	Key      string
}

func (s Scope) lockKey() string {
	return s.UserID + "|" + s.Endpoint + "|" + s.Key
}

// Fingerprint hashes a normalized request body for key-reuse detection.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(strings.TrimSpace(p)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Work executes the guarded request and returns the serialized response
// payload to store. The work is responsible for persisting the record
// transactionally; the guard only decides whether work runs at all.
type Work func(ctx context.Context, record *Record) (json.RawMessage, error)

// Guard serializes requests per key and short-circuits replays.
type Guard struct {
	repo Repository
	ttl  time.Duration

	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewGuard builds a guard over the record store with the given record TTL.
func NewGuard(repo Repository, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Guard{
		repo:  repo,
		ttl:   ttl,
		locks: make(map[string]*lockEntry),
	}
}

// ExecuteOnce runs work at most once for the scoped key. A replay with a
// matching fingerprint returns the stored response without invoking work; a
// replay with a differing fingerprint returns ErrConflict. An empty key
// disables deduplication and runs work directly with no record.
//
// Concurrent requests with the same key block on a per-key lock. The lock is
// released on every path, including panics in work.
func (g *Guard) ExecuteOnce(ctx context.Context, scope Scope, fingerprint string, work Work) (json.RawMessage, bool, error) {
	if scope.Key == "" {
		payload, err := work(ctx, nil)
		return payload, false, err
	}

	unlock := g.acquire(scope.lockKey())
	defer unlock()

	existing, err := g.repo.Find(ctx, scope.UserID, scope.Endpoint, scope.Key)
	if err != nil {
		return nil, false, err
	}
	if existing != nil && !existing.Expired(time.Now().UTC()) {
		if existing.Fingerprint != fingerprint {
			return nil, false, ErrConflict
		}
		return existing.Response, true, nil
	}

	record := &Record{
		Key:         scope.Key,
		UserID:      scope.UserID,
		Endpoint:    scope.Endpoint,
		Fingerprint: fingerprint,
		ExpiresAt:   time.Now().UTC().Add(g.ttl),
		CreatedAt:   time.Now().UTC(),
	}

	payload, err := work(ctx, record)
	if err != nil {
		return nil, false, err
	}
	return payload, false, nil
}

// acquire takes the per-key lock, creating it on first use and dropping it
// from the registry once the last holder releases.
func (g *Guard) acquire(key string) func() {
	g.mu.Lock()
	entry, ok := g.locks[key]
	if !ok {
		entry = &lockEntry{}
		g.locks[key] = entry
	}
	entry.refs++
	g.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			g.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(g.locks, key)
			}
			g.mu.Unlock()
		})
	}
}
