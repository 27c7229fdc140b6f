package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type memStore struct {
	counters map[string]Counter
	deleted  int
	// overrideWindow, when set, is returned from Get to simulate a
	// concurrent writer rolling the window between upsert and read.
	overrideWindow *time.Time
}

func newMemStore() *memStore {
	return &memStore{counters: make(map[string]Counter)}
}

func key(device, action string) string { return device + "/" + action }

func (m *memStore) Upsert(_ context.Context, device, action string, windowStart time.Time) error {
	k := key(device, action)
	c, ok := m.counters[k]
	if ok && c.WindowStart.Equal(windowStart) {
		c.Count++
	} else {
		c = Counter{WindowStart: windowStart, Count: 1}
	}
	m.counters[k] = c
	return nil
}

func (m *memStore) Get(_ context.Context, device, action string) (Counter, error) {
	c := m.counters[key(device, action)]
	if m.overrideWindow != nil {
		c.WindowStart = *m.overrideWindow
	}
	return c, nil
}

func (m *memStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for k, c := range m.counters {
		if c.WindowStart.Before(cutoff) {
			delete(m.counters, k)
			n++
		}
	}
	m.deleted += int(n)
	return n, nil
}

func newTestLimiter(store Store, policies Policies) *Limiter {
	l := NewLimiter(store, policies, zerolog.Nop())
	l.rand = func() float64 { return 1 } // cleanup off unless a test opts in
	return l
}

func TestCheckCeiling(t *testing.T) {
	store := newMemStore()
	policies := Policies{Default: Policy{WindowSeconds: 60, Ceiling: 10}}
	l := newTestLimiter(store, policies)
	base := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	l.now = func() time.Time { return base }

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		d, err := l.Check(ctx, "device-1", "generate_comments")
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !d.OK {
			t.Fatalf("call %d rejected below ceiling", i+1)
		}
		if want := 10 - (i + 1); d.Remaining != want {
			t.Fatalf("call %d remaining = %d, want %d", i+1, d.Remaining, want)
		}
	}

	d, err := l.Check(ctx, "device-1", "generate_comments")
	if err != nil {
		t.Fatal(err)
	}
	if d.OK {
		t.Fatal("11th call in window was allowed")
	}
	if d.RetryAfter < time.Second || d.RetryAfter > 60*time.Second {
		t.Fatalf("retryAfter = %s, want within [1s, 60s]", d.RetryAfter)
	}

	// A different device is unaffected.
	d, err = l.Check(ctx, "device-2", "generate_comments")
	if err != nil || !d.OK {
		t.Fatalf("other device rejected: %v %+v", err, d)
	}

	// After the window elapses, a new call succeeds.
	l.now = func() time.Time { return base.Add(2 * time.Minute) }
	d, err = l.Check(ctx, "device-1", "generate_comments")
	if err != nil || !d.OK {
		t.Fatalf("post-window call rejected: %v %+v", err, d)
	}
}

func TestCheckRetryAfterBounds(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store, Policies{Default: Policy{WindowSeconds: 60, Ceiling: 1}})
	// One nanosecond before rollover: retryAfter still clamps up to 1s.
	edge := time.Date(2026, 3, 1, 12, 0, 59, 999999999, time.UTC)
	l.now = func() time.Time { return edge }

	ctx := context.Background()
	if d, _ := l.Check(ctx, "d", "a"); !d.OK {
		t.Fatal("first call rejected")
	}
	d, err := l.Check(ctx, "d", "a")
	if err != nil {
		t.Fatal(err)
	}
	if d.OK {
		t.Fatal("second call allowed over ceiling 1")
	}
	if d.RetryAfter != time.Second {
		t.Fatalf("retryAfter = %s, want clamped 1s", d.RetryAfter)
	}
}

func TestCheckWindowRaceIsPermissive(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store, Policies{Default: Policy{WindowSeconds: 60, Ceiling: 1}})
	base := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	l.now = func() time.Time { return base }

	ctx := context.Background()
	if d, _ := l.Check(ctx, "d", "a"); !d.OK {
		t.Fatal("first call rejected")
	}
	// Simulate a concurrent writer adopting the next window before our read.
	foreign := base.Add(time.Minute).Truncate(time.Minute)
	store.overrideWindow = &foreign
	d, err := l.Check(ctx, "d", "a")
	if err != nil {
		t.Fatal(err)
	}
	if !d.OK {
		t.Fatal("window-boundary race should be allowed, not blocked")
	}
}

func TestOpportunisticCleanup(t *testing.T) {
	store := newMemStore()
	l := newTestLimiter(store, Policies{Default: Policy{WindowSeconds: 60, Ceiling: 5}})
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.counters["old/a"] = Counter{WindowStart: base.Add(-8 * 24 * time.Hour), Count: 3}
	store.counters["fresh/a"] = Counter{WindowStart: base.Add(-time.Hour), Count: 3}
	l.now = func() time.Time { return base }
	l.rand = func() float64 { return 0 } // force the cleanup branch

	if _, err := l.Check(context.Background(), "d", "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.counters["old/a"]; ok {
		t.Fatal("stale counter survived cleanup")
	}
	if _, ok := store.counters["fresh/a"]; !ok {
		t.Fatal("fresh counter was removed")
	}
}

func TestPoliciesFor(t *testing.T) {
	p := Policies{
		Default: Policy{WindowSeconds: 60, Ceiling: 60},
		Actions: map[string]Policy{
			"generate_comments": {WindowSeconds: 60, Ceiling: 10},
			"broken":            {WindowSeconds: 0, Ceiling: -1},
		},
	}
	if got := p.For("generate_comments").Ceiling; got != 10 {
		t.Fatalf("ceiling = %d, want 10", got)
	}
	if got := p.For("unlisted"); got != p.Default {
		t.Fatalf("unlisted action = %+v, want default", got)
	}
	if got := p.For("broken"); got != p.Default {
		t.Fatalf("broken action = %+v, want repaired to default", got)
	}
}
