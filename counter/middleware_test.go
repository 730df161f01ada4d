package counter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func throttledRequest(h http.Handler, remoteAddr string, header map[string]string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestThrottle_RateLimitsPerClient(t *testing.T) {
	h := Throttle(context.Background(), ThrottleOptions{RPS: 1, Burst: 2})(okHandler())

	for i := 0; i < 2; i++ {
		if code := throttledRequest(h, "10.0.0.1:1234", nil); code != http.StatusOK {
			t.Fatalf("request %d within burst: expected 200, got %d", i, code)
		}
	}
	if code := throttledRequest(h, "10.0.0.1:1234", nil); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 past burst, got %d", code)
	}

	// outro cliente tem bucket próprio
	if code := throttledRequest(h, "10.0.0.2:1234", nil); code != http.StatusOK {
		t.Fatalf("expected 200 for distinct client, got %d", code)
	}
}

func TestThrottle_KeyHeaderOverridesIP(t *testing.T) {
	h := Throttle(context.Background(), ThrottleOptions{RPS: 1, Burst: 1, KeyHeader: "X-API-Key"})(okHandler())

	if code := throttledRequest(h, "10.0.0.1:1234", map[string]string{"X-API-Key": "a"}); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := throttledRequest(h, "10.0.0.1:1234", map[string]string{"X-API-Key": "a"}); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for same key, got %d", code)
	}
	// mesmo IP, chave diferente: bucket novo
	if code := throttledRequest(h, "10.0.0.1:1234", map[string]string{"X-API-Key": "b"}); code != http.StatusOK {
		t.Fatalf("expected 200 for distinct key, got %d", code)
	}
}

func TestThrottle_MaxInFlightRejectsWhenSaturated(t *testing.T) {
	entered := make(chan struct{})
	gate := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-gate
		w.WriteHeader(http.StatusOK)
	})

	h := Throttle(context.Background(), ThrottleOptions{MaxInFlight: 1})(slow)

	done := make(chan int)
	go func() {
		done <- throttledRequest(h, "10.0.0.1:1111", nil)
	}()

	<-entered
	if code := throttledRequest(h, "10.0.0.2:2222", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when saturated, got %d", code)
	}

	close(gate)
	select {
	case code := <-done:
		if code != http.StatusOK {
			t.Fatalf("expected first request to finish with 200, got %d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("first request did not finish")
	}
}

func TestThrottle_DisabledPassesThrough(t *testing.T) {
	h := Throttle(context.Background(), ThrottleOptions{})(okHandler())

	for i := 0; i < 20; i++ {
		if code := throttledRequest(h, "10.0.0.1:1234", nil); code != http.StatusOK {
			t.Fatalf("expected pass-through, got %d", code)
		}
	}
}
