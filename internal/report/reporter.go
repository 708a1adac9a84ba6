// Package report delivers run progress, debug diagnostics and run outcomes to
// registered observers.
package report

import (
	"fmt"
	"sync"
	"time"

	"github.com/williampepple1/trip-extractor/internal/logger"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

// Observer receives the events of extraction runs. Calls are synchronous and
// made from the run's goroutine; implementations must not block for long.
type Observer interface {
	OnProgress(ev models.ProgressEvent)
	OnDebug(ev models.DebugEvent)
	OnComplete(runID string, records []models.ReservationRecord)
	OnError(runID string, message string)
}

// Reporter fans events out to observers. Progress never decreases within a run.
type Reporter struct {
	log   logger.Logger
	debug *DebugLog
	now   func() time.Time

	mu        sync.Mutex
	observers map[int]Observer
	nextID    int
	runID     string
	percent   int
}

// NewReporter creates a reporter that mirrors debug events to log
func NewReporter(log logger.Logger) *Reporter {
	return &Reporter{
		log:       log,
		debug:     NewDebugLog(DefaultDebugLogSize),
		now:       time.Now,
		observers: make(map[int]Observer),
	}
}

// Subscribe registers o and returns a function that removes it
func (r *Reporter) Subscribe(o Observer) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.observers[id] = o
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.observers, id)
			r.mu.Unlock()
		})
	}
}

// Reset starts a new run: progress goes back to zero and events carry runID
func (r *Reporter) Reset(runID string) {
	r.mu.Lock()
	r.runID = runID
	r.percent = 0
	r.mu.Unlock()
}

// RunID returns the current run identifier
func (r *Reporter) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runID
}

// DebugLog returns the bounded log of recent debug events
func (r *Reporter) DebugLog() *DebugLog {
	return r.debug
}

// Progress reports percent (clamped to 0..100 and to the highest value seen in
// this run) with a human-readable step text
func (r *Reporter) Progress(percent int, text string) {
	r.mu.Lock()
	percent = min(max(percent, 0), 100)
	if percent < r.percent {
		percent = r.percent
	}
	r.percent = percent
	ev := models.ProgressEvent{RunID: r.runID, Percent: percent, Text: text}
	observers := r.snapshot()
	r.mu.Unlock()

	for _, o := range observers {
		r.deliver(func() { o.OnProgress(ev) })
	}
}

// Debug records a diagnostic message
func (r *Reporter) Debug(level models.DebugLevel, msg string) {
	r.mu.Lock()
	ev := models.DebugEvent{RunID: r.runID, Level: level, Message: msg, Time: r.now()}
	observers := r.snapshot()
	r.mu.Unlock()

	r.debug.Add(ev)
	r.mirror(ev)

	for _, o := range observers {
		r.deliver(func() { o.OnDebug(ev) })
	}
}

// Debugf records a formatted diagnostic message
func (r *Reporter) Debugf(level models.DebugLevel, format string, args ...any) {
	r.Debug(level, fmt.Sprintf(format, args...))
}

// Complete delivers the final records of the run
func (r *Reporter) Complete(records []models.ReservationRecord) {
	r.mu.Lock()
	runID := r.runID
	observers := r.snapshot()
	r.mu.Unlock()

	r.log.Info("Extraction complete", logger.String("run_id", runID), logger.Int("records", len(records)))
	for _, o := range observers {
		r.deliver(func() { o.OnComplete(runID, records) })
	}
}

// Error delivers the fatal error of the run
func (r *Reporter) Error(message string) {
	r.mu.Lock()
	runID := r.runID
	observers := r.snapshot()
	r.mu.Unlock()

	r.log.Error("Extraction failed", logger.String("run_id", runID), logger.String("error", message))
	for _, o := range observers {
		r.deliver(func() { o.OnError(runID, message) })
	}
}

// snapshot copies the observer set; r.mu must be held
func (r *Reporter) snapshot() []Observer {
	observers := make([]Observer, 0, len(r.observers))
	for id := 0; id < r.nextID; id++ {
		if o, ok := r.observers[id]; ok {
			observers = append(observers, o)
		}
	}
	return observers
}

// deliver isolates the run from a panicking observer
func (r *Reporter) deliver(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn("Observer panicked", logger.Any("panic", p))
		}
	}()
	fn()
}

func (r *Reporter) mirror(ev models.DebugEvent) {
	fields := []logger.Field{logger.String("run_id", ev.RunID)}
	switch ev.Level {
	case models.DebugError:
		r.log.Error(ev.Message, fields...)
	case models.DebugWarning:
		r.log.Warn(ev.Message, fields...)
	case models.DebugSuccess:
		r.log.Info(ev.Message, append(fields, logger.Bool("success", true))...)
	default:
		r.log.Debug(ev.Message, fields...)
	}
}
