// Package engine runs one reservation extraction against a page: session
// check, navigation, discovery, extraction, pipeline and persistence.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/discovery"
	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/internal/extraction"
	"github.com/williampepple1/trip-extractor/internal/logger"
	"github.com/williampepple1/trip-extractor/internal/navigation"
	"github.com/williampepple1/trip-extractor/internal/pipeline"
	"github.com/williampepple1/trip-extractor/internal/report"
	"github.com/williampepple1/trip-extractor/internal/session"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

var (
	// ErrNotAuthenticated is returned when the page shows a signed-out user
	ErrNotAuthenticated = errors.New("please log in to your account first")
	// ErrBusy is returned by Run while another run is in progress
	ErrBusy = errors.New("an extraction is already in progress")
)

// StoreKey is the key the final reservation list is saved under
const StoreKey = "reservations"

// Store persists the final reservation list
type Store interface {
	Save(ctx context.Context, key string, records []models.ReservationRecord) error
}

// Ack acknowledges a start request
type Ack struct {
	Success bool `json:"success"`
	Busy    bool `json:"busy,omitempty"`
}

// Engine owns one page and runs at most one extraction at a time
type Engine struct {
	Config *config.AppConfig

	page      dom.Page
	store     Store
	log       logger.Logger
	reporter  *report.Reporter
	session   *session.Checker
	discovery *discovery.Engine
	extractor *extraction.Extractor
	pipeline  *pipeline.Pipeline
	nav       *navigation.Controller

	navigate bool
	now      func() time.Time
	newRunID func() string

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// Option configures an Engine
type Option func(*Engine)

// WithReporter shares a reporter, e.g. across the engines of a batch
func WithReporter(r *report.Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithNavigation overrides whether the run first navigates to the list URL.
// By default only interactive pages navigate.
func WithNavigation(navigate bool) Option {
	return func(e *Engine) { e.navigate = navigate }
}

// WithClock sets the clock used for timestamps and the upcoming filter
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRunID sets the run identifier generator
func WithRunID(fn func() string) Option {
	return func(e *Engine) { e.newRunID = fn }
}

// New creates an engine for page. store may be nil.
func New(cfg *config.AppConfig, page dom.Page, store Store, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		Config:   cfg,
		page:     page,
		store:    store,
		log:      log,
		navigate: page.Interactive(),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reporter == nil {
		e.reporter = report.NewReporter(log)
	}

	e.session = session.NewChecker(&cfg.Session)
	e.discovery = discovery.New(&cfg.Discovery, cfg.Extraction.Brands, e.reporter)
	e.extractor = extraction.NewExtractor(&cfg.Extraction, log).WithClock(e.now)
	e.pipeline = pipeline.New().WithClock(e.now)
	e.nav = navigation.NewController(&cfg.Navigation, page, e.reporter)
	return e
}

// Reporter returns the reporter observers subscribe to
func (e *Engine) Reporter() *report.Reporter {
	return e.reporter
}

// Subscribe registers o for the events of every run
func (e *Engine) Subscribe(o report.Observer) (unsubscribe func()) {
	return e.reporter.Subscribe(o)
}

// Running reports whether a run is in progress
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Start begins a run in the background and acknowledges immediately. While a
// run is in progress the request is dropped and Busy is reported. Results
// arrive through the reporter; cancelling ctx aborts the run.
func (e *Engine) Start(ctx context.Context) Ack {
	if !e.acquire() {
		e.log.Warn("Extraction already in progress, request dropped")
		return Ack{Success: false, Busy: true}
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.release()
		_, _ = e.run(ctx)
	}()
	return Ack{Success: true}
}

// Wait blocks until the background run started by Start has finished
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Run performs a run synchronously. It reports through the reporter like
// Start and also returns the outcome.
func (e *Engine) Run(ctx context.Context) ([]models.ReservationRecord, error) {
	if !e.acquire() {
		return nil, ErrBusy
	}
	defer e.release()
	return e.run(ctx)
}

func (e *Engine) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return false
	}
	e.running = true
	return true
}

func (e *Engine) release() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// run is the top-level run function: every failure, panics included, ends
// as a single error event
func (e *Engine) run(ctx context.Context) (records []models.ReservationRecord, err error) {
	runID := e.newRunID()
	e.reporter.Reset(runID)
	log := e.log.With(logger.String("run_id", runID))
	start := e.now()
	log.Info("Starting extraction", logger.Bool("navigate", e.navigate), logger.Bool("drill_down", e.drillDown()))

	defer func() {
		if p := recover(); p != nil {
			records, err = nil, fmt.Errorf("extraction failed unexpectedly: %v", p)
		}
		if err != nil {
			e.captureFailure(ctx, log)
			e.reporter.Debug(models.DebugError, err.Error())
			e.reporter.Error(err.Error())
			return
		}
		log.Info("Extraction finished", logger.Int("records", len(records)), logger.Duration("duration", e.now().Sub(start)))
		e.reporter.Complete(records)
	}()

	return e.extract(ctx)
}

func (e *Engine) extract(ctx context.Context) ([]models.ReservationRecord, error) {
	e.reporter.Progress(10, "Checking login status...")
	doc, err := e.page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	verdict := e.session.Check(doc)
	e.reporter.Debugf(models.DebugInfo, "Session check: %s", verdict.Reason)
	if !verdict.Authenticated {
		return nil, ErrNotAuthenticated
	}

	e.reporter.Progress(20, "Navigating to reservations...")
	if e.navigate {
		if err := e.nav.GoToList(ctx); err != nil {
			return nil, err
		}
	}

	e.reporter.Progress(40, "Scanning for upcoming reservations...")
	doc, err = e.page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	regions, err := e.discovery.FindCandidateRegions(doc)
	if err != nil {
		return nil, err
	}

	e.reporter.Progress(60, "Extracting reservation details...")
	source, err := e.page.Location(ctx)
	if err != nil {
		source = ""
	}

	records := make([]models.ReservationRecord, 0, len(regions))
	for i, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := e.extractTrip(ctx, region, source)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.reporter.Debugf(models.DebugWarning, "Skipping trip %d: %v", i+1, err)
			continue
		}
		records = append(records, rec)
		e.reporter.Debugf(models.DebugInfo, "Trip %d: %s", i+1, displayName(rec))
		e.reporter.Progress(60+25*(i+1)/len(regions), fmt.Sprintf("Extracted trip %d of %d", i+1, len(regions)))
	}

	records = e.pipeline.Process(records)
	e.reporter.Debugf(models.DebugSuccess, "Found %d upcoming reservations", len(records))

	e.reporter.Progress(90, "Saving extracted data...")
	if e.store != nil {
		if err := e.store.Save(ctx, StoreKey, records); err != nil {
			return nil, fmt.Errorf("save reservations: %w", err)
		}
	}

	e.reporter.Progress(100, "Extraction complete!")
	return records, nil
}

// extractTrip reads the list-view fields of a region and, when drilling down,
// overlays the fields of its detail page. A failed drill-down keeps the
// list-view record.
func (e *Engine) extractTrip(ctx context.Context, region discovery.Region, source string) (models.ReservationRecord, error) {
	rec, err := e.extractor.ExtractBasic(region.Selection, source)
	if err != nil {
		return rec, err
	}
	if !e.drillDown() {
		return rec, nil
	}

	expanded, ok, err := e.nav.Expand(ctx, region)
	if err != nil {
		return rec, err
	}
	if !ok {
		e.reporter.Debugf(models.DebugInfo, "Trip %d panel not expanded, looking for its detail action anyway", region.Index+1)
	}

	opened, err := e.nav.OpenDetail(ctx, expanded)
	if err != nil {
		return rec, err
	}
	if !opened {
		return rec, nil
	}

	if doc, err := e.page.Snapshot(ctx); err != nil {
		e.reporter.Debugf(models.DebugWarning, "Could not read detail page of trip %d: %v", region.Index+1, err)
	} else {
		loc, _ := e.page.Location(ctx)
		rec = extraction.Merge(e.extractor.ExtractDetailed(doc, loc), rec)
		e.reporter.Debugf(models.DebugSuccess, "Read detail page of trip %d", region.Index+1)
	}

	if err := e.nav.Return(ctx); err != nil {
		return rec, err
	}
	return rec, nil
}

func (e *Engine) drillDown() bool {
	return e.Config.Extraction.DrillDown && e.page.Interactive()
}

func displayName(rec models.ReservationRecord) string {
	if rec.CheckInDate == "" {
		return rec.HotelName
	}
	return rec.HotelName + " (" + rec.CheckInDate + ")"
}
