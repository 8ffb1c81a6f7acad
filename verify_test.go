package hmap_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/koykov/hmap"
	"github.com/koykov/hmap/queuelong/dllist"
)

func TestVerifyEmptyAndPopulated(t *testing.T) {
	m := mustMap(t, newTestConfig(4, 4, 2))
	if err := m.Verify(); err != nil {
		t.Fatalf("verify on empty map failed: %s", err)
	}
	for i := 0; i < 50; i++ {
		k := "k" + strconv.Itoa(i)
		if _, err := m.Put(k, "v"+strconv.Itoa(i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Verify(); err != nil {
		t.Fatalf("verify on populated map failed: %s", err)
	}
}

// TestVerifyRandomWorkload: a mixed random workload must leave the map
// internally consistent.
func TestVerifyRandomWorkload(t *testing.T) {
	conf := newTestConfig(4, 4, 2)
	conf.ExpireCreateTTL = -1
	conf.ExpireUpdateTTL = -1
	conf.ExpireGetTTL = -1
	conf.CreateQueue = make([]hmap.QueueLong, 4)
	conf.UpdateQueue = make([]hmap.QueueLong, 4)
	conf.GetQueue = make([]hmap.QueueLong, 4)
	for i := range conf.CreateQueue {
		a := dllist.NewArena() // one arena per segment: nodes move between its queues
		conf.CreateQueue[i] = dllist.NewShared(a)
		conf.UpdateQueue[i] = dllist.NewShared(a)
		conf.GetQueue[i] = dllist.NewShared(a)
	}
	m := mustMap(t, conf)

	rnd := rand.New(rand.NewSource(1))
	keys := make([]string, 32)
	for i := range keys {
		keys[i] = "key" + strconv.Itoa(i)
	}

	for i := 0; i < 1000; i++ {
		k := keys[rnd.Intn(len(keys))]
		switch rnd.Intn(5) {
		case 0, 1:
			if _, err := m.Put(k, "v"+strconv.Itoa(i)); err != nil {
				t.Fatalf("op %d put: %s", i, err)
			}
		case 2:
			if _, err := m.Get(k); err != nil {
				t.Fatalf("op %d get: %s", i, err)
			}
		case 3:
			if _, err := m.Replace(k, "v"+strconv.Itoa(i)); err != nil {
				t.Fatalf("op %d replace: %s", i, err)
			}
		case 4:
			if _, err := m.Remove(k); err != nil {
				t.Fatalf("op %d remove: %s", i, err)
			}
		}
		if i%50 == 0 {
			if err := m.ExpireEvict(); err != nil {
				t.Fatalf("op %d evict: %s", i, err)
			}
		}
	}

	if err := m.Verify(); err != nil {
		t.Fatalf("verify after mixed workload failed: %s", err)
	}
}
