package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if !IsRateLimited(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	inv := &ErrInvalidResponse{Err: errors.New("bad shape")}
	mock := NewMockProvider(
		MockResponse{Err: inv},
		MockResponse{Err: inv},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var got *ErrInvalidResponse
	if !errors.As(err, &got) {
		t.Fatalf("expected invalid response, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_RejectedRequestIsFinal(t *testing.T) {
	for _, status := range []int{400, 401, 403, 404} {
		mock := NewMockProvider(
			MockResponse{Err: classifyStatus(status, errors.New("invalid api key"))},
			MockResponse{Content: json.RawMessage(`{}`)},
		)
		p := WithRetry(mock, retryConfig())

		_, err := p.Generate(context.Background(), Request{})
		var rejected *ErrRequestRejected
		if !errors.As(err, &rejected) {
			t.Fatalf("status %d: expected ErrRequestRejected, got %v", status, err)
		}
		if rejected.Status != status {
			t.Fatalf("status %d: got %d", status, rejected.Status)
		}
		if mock.CallCount() != 1 {
			t.Fatalf("status %d: expected 1 call, got %d", status, mock.CallCount())
		}
	}
}

func TestRetry_ServerErrorRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: classifyStatus(503, errors.New("overloaded"))},
		MockResponse{Err: classifyStatus(429, errors.New("slow down"))},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p := WithRetry(mock, retryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_UntypedErrorIsFinal(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: errors.New("unexpected")},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRetry(mock, retryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_NotConfiguredIsFinal(t *testing.T) {
	p := WithRetry(Unconfigured{}, retryConfig())
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Second, MaxWait: time.Second, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowProvider) ModelID() string { return "slow" }

func TestTimeoutBoundsCall(t *testing.T) {
	p := WithTimeout(slowProvider{}, 20*time.Millisecond)
	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not applied")
	}
	if Outcome(err) != "timeout" {
		t.Fatalf("Outcome: got %q", Outcome(err))
	}
}
