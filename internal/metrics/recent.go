package metrics

import "sync"

// DefaultRecentEntries is the default capacity of the recent log.
const DefaultRecentEntries = 20

// RecentLog keeps the most recent request entries in a fixed ring buffer.
//
// Record overwrites the oldest entry when full. Entries returns a copy and
// may be called concurrently with Record.
type RecentLog struct {
	mu      sync.RWMutex
	entries []LogEntry
	head    int // next write position
	count   int
}

// NewRecentLog creates a recent log holding up to capacity entries.
func NewRecentLog(capacity int) *RecentLog {
	if capacity <= 0 {
		capacity = DefaultRecentEntries
	}
	return &RecentLog{entries: make([]LogEntry, capacity)}
}

// Record appends an entry.
func (l *RecentLog) Record(entry LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.head] = entry
	l.head = (l.head + 1) % len(l.entries)
	if l.count < len(l.entries) {
		l.count++
	}
}

// Entries returns the stored entries, oldest first.
func (l *RecentLog) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.count == 0 {
		return nil
	}

	out := make([]LogEntry, l.count)
	start := (l.head - l.count + len(l.entries)) % len(l.entries)
	for i := 0; i < l.count; i++ {
		out[i] = l.entries[(start+i)%len(l.entries)]
	}
	return out
}

// Len returns the number of stored entries.
func (l *RecentLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Cap returns the capacity.
func (l *RecentLog) Cap() int {
	return len(l.entries)
}
