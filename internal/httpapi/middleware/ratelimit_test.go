package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowsThenBlocks(t *testing.T) {
	clock := &manualClock{t: time.Unix(1700000000, 0)}
	h := rateLimit(Keys{}, 60, 2, clock.now)(okHandler())
	req := httptest.NewRequest("GET", "/api/status", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("want 200 got %d", rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 429 {
		t.Fatalf("want 429 got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "1" {
		t.Fatalf("want Retry-After 1, got %q", rr.Header().Get("Retry-After"))
	}

	clock.advance(1100 * time.Millisecond)
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req)
	if rr2.Code != 200 {
		t.Fatalf("want 200 after refill got %d", rr2.Code)
	}
}

func TestRateLimit_SeparateBucketsPerKey(t *testing.T) {
	clock := &manualClock{t: time.Unix(1700000000, 0)}
	h := rateLimit(Keys{Public: []string{"pub_a", "pub_b"}}, 60, 1, clock.now)(okHandler())

	a := httptest.NewRequest("GET", "/", nil)
	a.Header.Set("X-API-Key", "pub_a")
	b := httptest.NewRequest("GET", "/", nil)
	b.Header.Set("X-API-Key", "pub_b")

	for _, req := range []*http.Request{a, b} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("each key has its own bucket, got %d", rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, a)
	if rr.Code != 429 {
		t.Fatalf("want 429 for exhausted key, got %d", rr.Code)
	}
}

func TestRateLimit_UnknownKeysShareIPBucket(t *testing.T) {
	clock := &manualClock{t: time.Unix(1700000000, 0)}
	h := rateLimit(Keys{Public: []string{"pub_a"}}, 60, 2, clock.now)(okHandler())

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("POST", "/api/check", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		req.Header.Set("X-API-Key", "bogus-"+strconv.Itoa(i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == 200 {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("rotating unknown keys must not bypass the limit: %d/50 allowed", allowed)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(Keys{}, 0, 0)(okHandler())
	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		if rr.Code != 200 {
			t.Fatalf("disabled limiter must pass, got %d", rr.Code)
		}
	}
}

func TestLimiter_SweepsIdleBuckets(t *testing.T) {
	clock := &manualClock{t: time.Unix(1700000000, 0)}
	l := newLimiter(1, 1, time.Minute, clock.now)
	l.allow("ip:a")
	l.allow("ip:b")

	clock.advance(2 * time.Minute)
	l.allow("ip:c")
	if l.size() != 1 {
		t.Fatalf("idle buckets should be dropped, have %d", l.size())
	}
}
