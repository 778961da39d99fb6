package idempotency_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vcalderon2009/note-taker/internal/domain/idempotency"
)

// memoryRepository is a map-backed Repository for guard tests. Records are
// written by the test's work func, mirroring how the transactional store
// persists them in production.
type memoryRepository struct {
	mu      sync.Mutex
	records map[string]*idempotency.Record
	findErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[string]*idempotency.Record)}
}

func (r *memoryRepository) Find(ctx context.Context, userID, endpoint, key string) (*idempotency.Record, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID+"|"+endpoint+"|"+key]
	if !ok || rec.Expired(time.Now().UTC()) {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *memoryRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	now := time.Now().UTC()
	for k, rec := range r.records {
		if rec.Expired(now) {
			delete(r.records, k)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryRepository) save(rec *idempotency.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.UserID+"|"+rec.Endpoint+"|"+rec.Key] = rec
}

func testScope(key string) idempotency.Scope {
	return idempotency.Scope{UserID: "user_demo", Endpoint: "POST /v1/messages", Key: key}
}

func TestExecuteOnce_EmptyKeyBypassesGuard(t *testing.T) {
	repo := newMemoryRepository()
	repo.findErr = errors.New("must not be consulted")
	guard := idempotency.NewGuard(repo, time.Hour)

	var gotRecord *idempotency.Record = &idempotency.Record{}
	payload, replayed, err := guard.ExecuteOnce(context.Background(), testScope(""), "fp", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		gotRecord = record
		return json.RawMessage(`{"ok":true}`), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Error("replayed = true, want false")
	}
	if gotRecord != nil {
		t.Error("work received a record, want nil for unkeyed requests")
	}
	if string(payload) != `{"ok":true}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestExecuteOnce_FirstRunPopulatesRecord(t *testing.T) {
	repo := newMemoryRepository()
	guard := idempotency.NewGuard(repo, time.Hour)
	scope := testScope("abc-123")

	before := time.Now().UTC()
	var captured *idempotency.Record
	_, replayed, err := guard.ExecuteOnce(context.Background(), scope, "fp-1", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		captured = record
		return json.RawMessage(`{}`), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Error("first execution reported as replay")
	}
	if captured == nil {
		t.Fatal("work received nil record")
	}
	if captured.Key != "abc-123" || captured.UserID != scope.UserID || captured.Endpoint != scope.Endpoint {
		t.Errorf("record scope = %+v, want %+v", captured, scope)
	}
	if captured.Fingerprint != "fp-1" {
		t.Errorf("fingerprint = %s, want fp-1", captured.Fingerprint)
	}
	wantExpiry := before.Add(time.Hour)
	if captured.ExpiresAt.Before(wantExpiry) || captured.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expires_at = %v, want ~%v", captured.ExpiresAt, wantExpiry)
	}
}

func TestExecuteOnce_ReplayReturnsStoredBytes(t *testing.T) {
	repo := newMemoryRepository()
	guard := idempotency.NewGuard(repo, time.Hour)
	scope := testScope("abc-123")
	stored := json.RawMessage(`{"reply":"Created task: Call the dentist","trace":[]}`)

	_, _, err := guard.ExecuteOnce(context.Background(), scope, "fp-1", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		record.Response = stored
		repo.save(record)
		return stored, nil
	})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	payload, replayed, err := guard.ExecuteOnce(context.Background(), scope, "fp-1", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		t.Fatal("work must not run on replay")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !replayed {
		t.Error("replayed = false, want true")
	}
	if !bytes.Equal(payload, stored) {
		t.Errorf("replay payload = %s, want byte-identical stored response", payload)
	}
}

func TestExecuteOnce_FingerprintMismatchConflicts(t *testing.T) {
	repo := newMemoryRepository()
	guard := idempotency.NewGuard(repo, time.Hour)
	scope := testScope("abc-123")

	_, _, err := guard.ExecuteOnce(context.Background(), scope, "fp-1", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		record.Response = json.RawMessage(`{}`)
		repo.save(record)
		return record.Response, nil
	})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	_, _, err = guard.ExecuteOnce(context.Background(), scope, "fp-2", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		t.Fatal("work must not run on conflicting reuse")
		return nil, nil
	})
	if !errors.Is(err, idempotency.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestExecuteOnce_ExpiredRecordRunsAgain(t *testing.T) {
	repo := newMemoryRepository()
	guard := idempotency.NewGuard(repo, time.Hour)
	scope := testScope("abc-123")

	repo.save(&idempotency.Record{
		Key:         scope.Key,
		UserID:      scope.UserID,
		Endpoint:    scope.Endpoint,
		Fingerprint: "fp-1",
		Response:    json.RawMessage(`{"stale":true}`),
		ExpiresAt:   time.Now().UTC().Add(-time.Minute),
	})

	ran := false
	payload, replayed, err := guard.ExecuteOnce(context.Background(), scope, "fp-1", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		ran = true
		return json.RawMessage(`{"fresh":true}`), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatal("work did not run for an expired record")
	}
	if replayed {
		t.Error("expired record reported as replay")
	}
	if string(payload) != `{"fresh":true}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestExecuteOnce_WorkErrorLeavesNoRecord(t *testing.T) {
	repo := newMemoryRepository()
	guard := idempotency.NewGuard(repo, time.Hour)
	scope := testScope("abc-123")
	workErr := errors.New("persistence failure")

	_, _, err := guard.ExecuteOnce(context.Background(), scope, "fp-1", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		return nil, workErr
	})
	if !errors.Is(err, workErr) {
		t.Fatalf("error = %v, want the work error", err)
	}

	// The failed attempt stored nothing, so a retry executes the work again.
	ran := false
	_, replayed, err := guard.ExecuteOnce(context.Background(), scope, "fp-1", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
		ran = true
		return json.RawMessage(`{}`), nil
	})
	if err != nil || !ran || replayed {
		t.Fatalf("retry after failure: ran=%v replayed=%v err=%v", ran, replayed, err)
	}
}

func TestExecuteOnce_ConcurrentSameKeySerializes(t *testing.T) {
	repo := newMemoryRepository()
	guard := idempotency.NewGuard(repo, time.Hour)
	scope := testScope("abc-123")

	var (
		mu       sync.Mutex
		workRuns int
		replays  int
	)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, replayed, err := guard.ExecuteOnce(context.Background(), scope, "fp-1", func(ctx context.Context, record *idempotency.Record) (json.RawMessage, error) {
				mu.Lock()
				workRuns++
				mu.Unlock()
				record.Response = json.RawMessage(`{}`)
				repo.save(record)
				return record.Response, nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if replayed {
				mu.Lock()
				replays++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if workRuns != 1 {
		t.Errorf("work ran %d times, want exactly once", workRuns)
	}
	if replays != 7 {
		t.Errorf("replays = %d, want 7", replays)
	}
}

func TestFingerprint(t *testing.T) {
	if idempotency.Fingerprint("conv_1", "hello") != idempotency.Fingerprint("conv_1", "  hello  ") {
		t.Error("fingerprint not normalized for surrounding whitespace")
	}
	if idempotency.Fingerprint("conv_1", "hello") == idempotency.Fingerprint("conv_1", "goodbye") {
		t.Error("different bodies produced the same fingerprint")
	}
	if idempotency.Fingerprint("a", "bc") == idempotency.Fingerprint("ab", "c") {
		t.Error("part boundaries are not separated")
	}
}
