package hmap_test

import (
	"testing"
	"time"

	"github.com/koykov/hmap"
	"github.com/koykov/hmap/queuelong/dllist"
)

// TestExpireMaxSize: ExpireMaxSize caps the map at (approximately, per
// segment) the configured entry count.
func TestExpireMaxSize(t *testing.T) {
	conf := newTestConfig(2, 4, 2)
	conf.ExpireMaxSize = 2
	conf.ExpireCreateTTL = -1 // queued, never time-expires: only the size cap should fire
	conf.CreateQueue = make([]hmap.QueueLong, 2)
	for i := range conf.CreateQueue {
		conf.CreateQueue[i] = dllist.New()
	}
	m := mustMap(t, conf)

	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}} {
		if _, err := m.Put(kv[0], kv[1]); err != nil {
			t.Fatal(err)
		}
	}

	if err := m.ExpireEvict(); err != nil {
		t.Fatal(err)
	}

	n, err := m.Size()
	if err != nil {
		t.Fatal(err)
	}
	if n > 2 {
		t.Fatalf("want at most 2 entries after expireMaxSize=2 eviction, got %d", n)
	}
}

// TestForegroundEvictionInsidePut exercises the implicit foreground
// eviction path taken by put/get/remove/replace when no background executor
// is attached: a put that finds the segment over its cap evicts before
// inserting.
func TestForegroundEvictionInsidePut(t *testing.T) {
	conf := newTestConfig(1, 4, 2)
	conf.ExpireMaxSize = 1
	conf.ExpireCreateTTL = -1
	conf.CreateQueue = []hmap.QueueLong{dllist.New()}
	m := mustMap(t, conf)

	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
		if _, err := m.Put(kv[0], kv[1]); err != nil {
			t.Fatal(err)
		}
	}

	// Each put's own foreground eviction pass only fires once the segment is
	// already over cap, so size oscillates around cap+1 rather than cap
	// exactly; an explicit ExpireEvict converges it.
	if n, err := m.Size(); err != nil || n != 2 {
		t.Fatalf("want 2 entries after the puts (cap+1, the third put evicted the oldest), got %d (err %v)", n, err)
	}
	if err := m.ExpireEvict(); err != nil {
		t.Fatal(err)
	}
	n, err := m.Size()
	if err != nil {
		t.Fatal(err)
	}
	if n > 1 {
		t.Fatalf("want at most 1 entry under expireMaxSize=1 after ExpireEvict, got %d", n)
	}
}

// TestBackgroundEviction attaches the executor: the per-segment tickers
// must reap an expired entry without any caller-driven operation.
// Timestamps come from the jumpable test clock; only the ticker itself
// runs on real time.
func TestBackgroundEviction(t *testing.T) {
	conf := newTestConfig(1, 4, 2)
	clk := newTestClock()
	conf.Clock = clk
	conf.ExpireCreateTTL = 10
	conf.CreateQueue = []hmap.QueueLong{dllist.New()}
	conf.ExpireExecutorPeriod = 5 * time.Millisecond
	m := mustMap(t, conf)
	defer func() { _ = m.Close() }()

	if _, err := m.Put("x", "1"); err != nil {
		t.Fatal(err)
	}
	clk.Jump(20 * time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for {
		n, err := m.Size()
		if err != nil {
			t.Fatal(err)
		}
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("background eviction never reaped the expired entry, size=%d", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
