package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"answerbot/internal/domain"
)

func testPolicy(attempts int) retryPolicy {
	return retryPolicy{
		maxAttempts: attempts,
		baseDelay:   time.Millisecond,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func getReq(url string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequest("GET", url, nil)
	}
}

func TestRetryPolicy_RecoversFromServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := testPolicy(4).do(context.Background(), srv.Client(), getReq(srv.URL))
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestRetryPolicy_ExhaustionWrapsModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testPolicy(2).do(context.Background(), srv.Client(), getReq(srv.URL))
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestRetryPolicy_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := testPolicy(4).do(context.Background(), srv.Client(), getReq(srv.URL))
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1", got)
	}
}

func TestRetryPolicy_ContextCancelStopsBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := testPolicy(4)
	p.baseDelay = time.Minute
	_, err := p.do(ctx, srv.Client(), getReq(srv.URL))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusOK, false},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		if got := retryableStatus(tt.code); got != tt.want {
			t.Errorf("retryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
