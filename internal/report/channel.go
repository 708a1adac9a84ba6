package report

import (
	"sync/atomic"

	"github.com/williampepple1/trip-extractor/pkg/models"
)

// Event is a progress or debug notification passed through a ChannelObserver
type Event struct {
	Progress *models.ProgressEvent
	Debug    *models.DebugEvent
}

// Result is the terminal outcome of a run
type Result struct {
	RunID   string
	Records []models.ReservationRecord
	Err     string
}

// ChannelObserver turns observer callbacks into channel receives. Progress and
// debug events are dropped when Events is full; the outcome is buffered.
type ChannelObserver struct {
	events  chan Event
	done    chan Result
	dropped atomic.Int64
}

// NewChannelObserver creates an observer buffering up to size events
func NewChannelObserver(size int) *ChannelObserver {
	return &ChannelObserver{
		events: make(chan Event, size),
		done:   make(chan Result, 1),
	}
}

// Events returns the progress/debug stream
func (c *ChannelObserver) Events() <-chan Event { return c.events }

// Done returns the channel that receives the run outcome
func (c *ChannelObserver) Done() <-chan Result { return c.done }

// Dropped returns how many events were discarded because Events was full
func (c *ChannelObserver) Dropped() int64 { return c.dropped.Load() }

func (c *ChannelObserver) OnProgress(ev models.ProgressEvent) {
	c.send(Event{Progress: &ev})
}

func (c *ChannelObserver) OnDebug(ev models.DebugEvent) {
	c.send(Event{Debug: &ev})
}

func (c *ChannelObserver) OnComplete(runID string, records []models.ReservationRecord) {
	c.finish(Result{RunID: runID, Records: records})
}

func (c *ChannelObserver) OnError(runID string, message string) {
	c.finish(Result{RunID: runID, Err: message})
}

func (c *ChannelObserver) send(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.dropped.Add(1)
	}
}

func (c *ChannelObserver) finish(res Result) {
	select {
	case c.done <- res:
	default:
		c.dropped.Add(1)
	}
}
