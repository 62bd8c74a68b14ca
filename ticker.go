package ember

// Updater is anything that advances with the frame clock.
type Updater interface {
	Update(dt float64)
}

// Ticker is a per-frame clock: everything registered on it advances once per
// Tick. Emitters created with autoUpdate register themselves on SharedTicker;
// [Scene.Update] ticks SharedTicker, or a headless host can tick it directly.
//
// Single-threaded, like the rest of ember. Updaters may remove themselves
// (or others) during Tick.
type Ticker struct {
	updaters []Updater
	ticking  bool
	removed  bool
}

// SharedTicker is the default frame clock. Only valid with a single Scene;
// multiple Scenes calling Update would tick it more than once per frame.
var SharedTicker = &Ticker{}

// Add registers u. Adding the same updater twice makes it advance twice per
// tick; callers keep track of their own registration.
func (t *Ticker) Add(u Updater) {
	t.updaters = append(t.updaters, u)
}

// Remove unregisters u. No-op if u is not registered.
func (t *Ticker) Remove(u Updater) {
	for i, v := range t.updaters {
		if v == u {
			if t.ticking {
				// Mid-tick: leave a hole so the iteration stays valid,
				// compact after.
				t.updaters[i] = nil
				t.removed = true
			} else {
				copy(t.updaters[i:], t.updaters[i+1:])
				t.updaters[len(t.updaters)-1] = nil
				t.updaters = t.updaters[:len(t.updaters)-1]
			}
			return
		}
	}
}

// Tick advances every registered updater by dt seconds.
func (t *Ticker) Tick(dt float64) {
	t.ticking = true
	// Index loop: updaters added during the tick run this same frame,
	// matching spawn-on-tick expectations.
	for i := 0; i < len(t.updaters); i++ {
		if u := t.updaters[i]; u != nil {
			u.Update(dt)
		}
	}
	t.ticking = false
	if t.removed {
		t.removed = false
		live := t.updaters[:0]
		for _, u := range t.updaters {
			if u != nil {
				live = append(live, u)
			}
		}
		for i := len(live); i < len(t.updaters); i++ {
			t.updaters[i] = nil
		}
		t.updaters = live
	}
}

// Len returns the number of registered updaters.
func (t *Ticker) Len() int {
	n := 0
	for _, u := range t.updaters {
		if u != nil {
			n++
		}
	}
	return n
}
