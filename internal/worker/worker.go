package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/internal/engine"
	"github.com/williampepple1/trip-extractor/internal/logger"
	"github.com/williampepple1/trip-extractor/internal/scraper"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

// Opener loads the page a source refers to
type Opener func(ctx context.Context, source string) (dom.Page, error)

// Pool runs independent extractions over page sources with a fixed number of
// workers sharing one rate limit
type Pool struct {
	Config    *config.AppConfig
	Open      Opener
	Jobs      chan string
	Results   chan models.PageResult
	WaitGroup *sync.WaitGroup

	log     logger.Logger
	limiter *rate.Limiter
	now     func() time.Time
}

// NewPool creates a new worker pool sized for the given sources
func NewPool(config *config.AppConfig, sources []string, log logger.Logger) *Pool {
	limit := rate.Inf
	if config.Scraper.RateLimit > 0 {
		limit = rate.Every(config.Scraper.RateLimit)
	}

	return &Pool{
		Config: config,
		Open: func(ctx context.Context, source string) (dom.Page, error) {
			return scraper.Open(ctx, config, source, log)
		},
		Jobs:      make(chan string, len(sources)),
		Results:   make(chan models.PageResult, len(sources)),
		WaitGroup: &sync.WaitGroup{},
		log:       log,
		limiter:   rate.NewLimiter(limit, 1),
		now:       time.Now,
	}
}

// WithClock sets the clock handed to every engine
func (p *Pool) WithClock(now func() time.Time) *Pool {
	p.now = now
	return p
}

// Start starts the workers. Results is closed once every job is done.
func (p *Pool) Start(ctx context.Context) {
	workers := max(p.Config.Scraper.Workers, 1)
	for w := 1; w <= workers; w++ {
		p.WaitGroup.Add(1)
		go p.worker(ctx, w)
	}

	go func() {
		p.WaitGroup.Wait()
		close(p.Results)
	}()
}

// worker processes sources from the jobs channel and sends results to the results channel
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.WaitGroup.Done()

	for source := range p.Jobs {
		if err := p.limiter.Wait(ctx); err != nil {
			p.Results <- models.PageResult{Source: source, Err: err.Error(), Timestamp: p.now()}
			continue
		}

		p.log.Debug("Worker processing source", logger.Int("worker", id), logger.String("source", source))
		p.Results <- p.process(ctx, source)
	}
}

func (p *Pool) process(ctx context.Context, source string) models.PageResult {
	start := p.now()
	result := models.PageResult{Source: source, Timestamp: start}
	log := p.log.With(logger.String("source", source))

	page, err := p.Open(ctx, source)
	if err != nil {
		log.Warn("Could not open source", logger.Error(err))
		result.Err = err.Error()
		result.Duration = p.now().Sub(start)
		return result
	}

	e := engine.New(p.Config, page, nil, log,
		engine.WithNavigation(false),
		engine.WithClock(p.now),
	)
	records, err := e.Run(ctx)
	if err != nil {
		result.Err = err.Error()
	}
	result.Records = records
	result.Duration = p.now().Sub(start)
	return result
}

// AddJobs adds sources to the jobs channel and closes it
func (p *Pool) AddJobs(sources []string) {
	for _, source := range sources {
		p.Jobs <- source
	}
	close(p.Jobs)
}

// Run processes every source and returns the results in source order
func (p *Pool) Run(ctx context.Context, sources []string) []models.PageResult {
	p.Start(ctx)
	p.AddJobs(sources)

	bySource := make(map[string]models.PageResult, len(sources))
	for result := range p.Results {
		bySource[result.Source] = result
	}

	results := make([]models.PageResult, 0, len(sources))
	for _, source := range sources {
		if r, ok := bySource[source]; ok {
			results = append(results, r)
		}
	}
	return results
}
