package metrics

// WindowSize is the number of one-second slots in the rolling window.
const WindowSize = 60

type windowSlot struct {
	second int64 // second since start this slot currently represents
	count  uint32
}

// Window is a fixed ring of per-second request counts.
//
// Each slot is tagged with the absolute second (relative to the start time)
// it represents. A slot whose tag differs from the second being read or
// written is stale and reads as zero, so no periodic clearing is needed.
//
// Window is not safe for concurrent use; the Aggregator is its only owner.
type Window struct {
	slots  [WindowSize]windowSlot
	newest int64
}

func slotIndex(second int64) int {
	return int(second % WindowSize)
}

// Add counts one request completed during the given second.
//
// Seconds that already fell out of the window relative to the newest
// second seen are ignored.
func (w *Window) Add(second int64) {
	if second < 0 {
		second = 0
	}
	if second > w.newest {
		w.newest = second
	}
	if second <= w.newest-WindowSize {
		return
	}

	s := &w.slots[slotIndex(second)]
	if s.second != second {
		if s.second > second {
			// slot already holds a newer second
			return
		}
		s.second = second
		s.count = 0
	}
	s.count++
}

// Count returns the number of requests recorded for the given second, or
// zero when the slot no longer represents it.
func (w *Window) Count(second int64) uint32 {
	if second < 0 {
		return 0
	}
	s := w.slots[slotIndex(second)]
	if s.second != second {
		return 0
	}
	return s.count
}

// History returns the counts for the WindowSize seconds ending at now,
// oldest first.
func (w *Window) History(now int64) [WindowSize]uint32 {
	var out [WindowSize]uint32
	for i := range out {
		out[i] = w.Count(now - WindowSize + 1 + int64(i))
	}
	return out
}
