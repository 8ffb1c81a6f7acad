package hmap_test

import "testing"

// TestGetWithLoader: a miss with a loader synthesizes a value, inserts it,
// and returns it; a subsequent Get observes it without invoking the loader
// again.
func TestGetWithLoader(t *testing.T) {
	m := mustMap(t, newTestConfig(1, 4, 2))

	calls := 0
	loader := func(key interface{}) (interface{}, error) {
		calls++
		return "loaded:" + key.(string), nil
	}

	v, err := m.GetWithLoader("k", loader)
	if err != nil {
		t.Fatal(err)
	}
	if v != "loaded:k" {
		t.Fatalf("want loaded value, got %v", v)
	}
	if calls != 1 {
		t.Fatalf("want loader invoked once, got %d", calls)
	}

	v, err = m.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if v != "loaded:k" {
		t.Fatalf("want the persisted loaded value, got %v", v)
	}
	if calls != 1 {
		t.Fatalf("want loader not invoked again on a hit, got %d calls", calls)
	}
}

// TestGetWithLoaderNilValueStaysAbsent is the "still absent" branch: a
// loader returning a nil value inserts nothing and the key stays a miss.
func TestGetWithLoaderNilValueStaysAbsent(t *testing.T) {
	m := mustMap(t, newTestConfig(1, 4, 2))

	v, err := m.GetWithLoader("missing", func(interface{}) (interface{}, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("want nil, got %v", v)
	}

	if n, err := m.Size(); err != nil || n != 0 {
		t.Fatalf("want empty map, got size=%d err=%v", n, err)
	}
}

// TestConfigLoader: a loader wired into Config fires on plain Get misses.
func TestConfigLoader(t *testing.T) {
	conf := newTestConfig(1, 4, 2)
	calls := 0
	conf.Loader = func(key interface{}) (interface{}, error) {
		calls++
		return "default:" + key.(string), nil
	}
	m := mustMap(t, conf)

	v, err := m.Get("k")
	if err != nil || v != "default:k" {
		t.Fatalf("want the config loader's value, got %v (err %v)", v, err)
	}
	if calls != 1 {
		t.Fatalf("want one loader call, got %d", calls)
	}
}
