package hmap_test

import (
	"testing"

	"github.com/koykov/hmap"
)

// TestClear: after Clear, IsEmpty is true, every queue is empty, and
// counters are zero, in each of the three notify modes.
func TestClear(t *testing.T) {
	for _, mode := range []int{hmap.NotifySilent, hmap.NotifyNormal, hmap.NotifyTrigger} {
		mode := mode
		t.Run(map[int]string{hmap.NotifySilent: "silent", hmap.NotifyNormal: "normal", hmap.NotifyTrigger: "trigger"}[mode], func(t *testing.T) {
			conf := newTestConfig(2, 4, 2)
			var notifications int
			var sawTriggered bool
			conf.Listeners = []hmap.ModificationListener{listenerFunc(func(key, oldValue, newValue interface{}, triggered bool) {
				notifications++
				if triggered {
					sawTriggered = true
				}
			})}
			m := mustMap(t, conf)

			for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
				if _, err := m.Put(kv[0], kv[1]); err != nil {
					t.Fatal(err)
				}
			}
			notifications = 0 // only count Clear's own notifications
			sawTriggered = false

			if err := m.Clear(mode); err != nil {
				t.Fatal(err)
			}

			empty, err := m.IsEmpty()
			if err != nil || !empty {
				t.Fatalf("want IsEmpty after Clear, got %v (err %v)", empty, err)
			}
			n, err := m.Size()
			if err != nil || n != 0 {
				t.Fatalf("want size 0 after Clear, got %d (err %v)", n, err)
			}

			switch mode {
			case hmap.NotifySilent:
				if notifications != 0 {
					t.Fatalf("silent clear must not notify, got %d notifications", notifications)
				}
			case hmap.NotifyNormal:
				if notifications != 3 || sawTriggered {
					t.Fatalf("normal clear wants 3 untriggered notifications, got %d (triggered seen=%v)", notifications, sawTriggered)
				}
			case hmap.NotifyTrigger:
				if notifications != 3 || !sawTriggered {
					t.Fatalf("as-if-expired clear wants 3 triggered notifications, got %d (triggered seen=%v)", notifications, sawTriggered)
				}
			}
		})
	}
}
