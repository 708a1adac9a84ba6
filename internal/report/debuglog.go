package report

import (
	"sync"

	"github.com/williampepple1/trip-extractor/pkg/models"
)

// DefaultDebugLogSize is the number of debug entries kept for display
const DefaultDebugLogSize = 100

// DebugLog is a fixed-size ring of the most recent debug events
type DebugLog struct {
	mu      sync.Mutex
	entries []models.DebugEvent
	start   int
	size    int
}

// NewDebugLog creates a log holding at most size entries
func NewDebugLog(size int) *DebugLog {
	if size < 1 {
		size = DefaultDebugLogSize
	}
	return &DebugLog{entries: make([]models.DebugEvent, size)}
}

// Add appends ev, evicting the oldest entry when full
func (l *DebugLog) Add(ev models.DebugEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size < len(l.entries) {
		l.entries[(l.start+l.size)%len(l.entries)] = ev
		l.size++
		return
	}
	l.entries[l.start] = ev
	l.start = (l.start + 1) % len(l.entries)
}

// Entries returns the kept events, oldest first
func (l *DebugLog) Entries() []models.DebugEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.DebugEvent, l.size)
	for i := range l.size {
		out[i] = l.entries[(l.start+i)%len(l.entries)]
	}
	return out
}

// Len returns the number of kept events
func (l *DebugLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Clear drops every entry
func (l *DebugLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.start, l.size = 0, 0
}
