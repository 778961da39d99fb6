package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vcalderon2009/note-taker/internal/domain/retry"
)

func TestPolicy_CalculateDelay(t *testing.T) {
	tests := []struct {
		name        string
		policy      retry.Policy
		attempt     int
		expectedMin time.Duration
		expectedMax time.Duration
	}{
		{
			name: "fixed backoff - attempt 1",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffFixed,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
			},
			attempt:     1,
			expectedMin: 100 * time.Millisecond,
			expectedMax: 100 * time.Millisecond,
		},
		{
			name: "fixed backoff - attempt 5",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffFixed,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
			},
			attempt:     5,
			expectedMin: 100 * time.Millisecond,
			expectedMax: 100 * time.Millisecond,
		},
		{
			name: "linear backoff - attempt 3",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffLinear,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
			},
			attempt:     3,
			expectedMin: 300 * time.Millisecond,
			expectedMax: 300 * time.Millisecond,
		},
		{
			name: "exponential backoff - attempt 3",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffExponential,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        10 * time.Second,
			},
			attempt:     3,
			expectedMin: 400 * time.Millisecond,
			expectedMax: 400 * time.Millisecond,
		},
		{
			name: "exponential backoff capped at max delay",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffExponential,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        500 * time.Millisecond,
			},
			attempt:     10,
			expectedMin: 500 * time.Millisecond,
			expectedMax: 500 * time.Millisecond,
		},
		{
			name: "jitter stays within bounds",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffFixed,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
				JitterFactor:    0.5,
			},
			attempt:     1,
			expectedMin: 50 * time.Millisecond,
			expectedMax: 150 * time.Millisecond,
		},
		{
			name:        "attempt zero yields no delay",
			policy:      retry.ClassifierPolicy(),
			attempt:     0,
			expectedMin: 0,
			expectedMax: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay := tt.policy.CalculateDelay(tt.attempt)
			if delay < tt.expectedMin || delay > tt.expectedMax {
				t.Errorf("CalculateDelay(%d) = %v, want between %v and %v",
					tt.attempt, delay, tt.expectedMin, tt.expectedMax)
			}
		})
	}
}

func TestExecuteWithResult_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := retry.ExecuteWithResult(context.Background(), retry.NoRetryPolicy(),
		func(ctx context.Context, attempt int) (string, error) {
			calls++
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want ok", result)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestExecuteWithResult_RetriesThenSucceeds(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      2,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Millisecond,
		BackoffStrategy: retry.BackoffFixed,
	}

	calls := 0
	result, err := retry.ExecuteWithResult(context.Background(), policy,
		func(ctx context.Context, attempt int) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestExecuteWithResult_ExhaustsRetries(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      1,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Millisecond,
		BackoffStrategy: retry.BackoffFixed,
	}

	wantErr := errors.New("persistent failure")
	calls := 0
	_, err := retry.ExecuteWithResult(context.Background(), policy,
		func(ctx context.Context, attempt int) (string, error) {
			calls++
			return "", wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (initial + one retry)", calls)
	}
}

func TestExecuteWithResult_PermanentErrorStopsRetrying(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      2,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Millisecond,
		BackoffStrategy: retry.BackoffFixed,
	}

	wantErr := errors.New("request rejected")
	calls := 0
	_, err := retry.ExecuteWithResult(context.Background(), policy,
		func(ctx context.Context, attempt int) (string, error) {
			calls++
			return "", retry.Permanent(wantErr)
		})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (permanent failures are not retried)", calls)
	}
}

func TestExecuteWithResult_AttemptTimeout(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:     0,
		AttemptTimeout: 10 * time.Millisecond,
	}

	_, err := retry.ExecuteWithResult(context.Background(), policy,
		func(ctx context.Context, attempt int) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestExecuteWithResult_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := retry.ExecuteWithResult(ctx, retry.ClassifierPolicy(),
		func(ctx context.Context, attempt int) (string, error) {
			t.Fatal("fn should not run after cancellation")
			return "", nil
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
