// Package poller periodically refreshes dashboard statistics.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/logger"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/stats"
)

// StatsProvider is the slice of the stats service the poller consumes.
type StatsProvider interface {
	Downloads(ctx context.Context) (models.DownloadStats, error)
	Evaluations(ctx context.Context) (models.EvaluationStats, error)
	Errors(ctx context.Context) (models.ErrorStats, error)
}

// EventType defines the type of poller event.
type EventType int

const (
	// EventRefreshStarted is emitted when a refresh cycle begins.
	EventRefreshStarted EventType = iota
	// EventStatsUpdated is emitted when one resource's stats were fetched.
	EventStatsUpdated
	// EventStatsError is emitted when fetching one resource failed.
	EventStatsError
)

// Event represents a poller event. Exactly one of the stat pointers is
// set for EventStatsUpdated, matching Resource.
type Event struct {
	Type        EventType
	Resource    string
	Downloads   *models.DownloadStats
	Evaluations *models.EvaluationStats
	Errors      *models.ErrorStats
	Error       error
}

// Config holds poller configuration.
type Config struct {
	PollInterval   time.Duration
	MaxConcurrent  int
	RequestTimeout time.Duration
}

// DefaultConfig returns the default poller configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:   60 * time.Second,
		MaxConcurrent:  3,
		RequestTimeout: 30 * time.Second,
	}
}

// Service refreshes the three stat resources on a schedule and caches the
// latest result of each.
type Service struct {
	provider   StatsProvider
	config     Config
	eventChan  chan Event
	refreshSem chan struct{}

	mu          sync.RWMutex
	stopChan    chan struct{}
	running     bool
	downloads   *models.DownloadStats
	evaluations *models.EvaluationStats
	errors      *models.ErrorStats
}

// New creates a poller over the given stats provider. Polling does not
// begin until Start is called; the dashboard starts it after sign-in.
func New(provider StatsProvider, config Config) *Service {
	if config.PollInterval == 0 {
		config = DefaultConfig()
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 3
	}

	return &Service{
		provider:   provider,
		config:     config,
		eventChan:  make(chan Event, 100),
		refreshSem: make(chan struct{}, config.MaxConcurrent),
	}
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Start launches the polling goroutine. Calling Start on a running
// service is a no-op. A stopped service can be started again.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	go s.poll(stop)
}

// Stop halts polling. The last fetched stats remain readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopChan)
		s.running = false
	}
}

// Running reports whether the polling goroutine is active.
func (s *Service) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Downloads returns the last fetched download stats, nil before the
// first successful refresh.
func (s *Service) Downloads() *models.DownloadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.downloads
}

// Evaluations returns the last fetched evaluation stats.
func (s *Service) Evaluations() *models.EvaluationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluations
}

// Errors returns the last fetched error stats.
func (s *Service) Errors() *models.ErrorStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors
}

// RefreshAll fetches all three resources concurrently and returns when
// every fetch has settled.
func (s *Service) RefreshAll() {
	s.sendEvent(Event{Type: EventRefreshStarted})

	var wg sync.WaitGroup
	for _, resource := range []string{stats.ResourceDownloads, stats.ResourceEvaluations, stats.ResourceErrors} {
		wg.Add(1)
		go func(resource string) {
			defer wg.Done()

			// Acquire semaphore
			s.refreshSem <- struct{}{}
			defer func() { <-s.refreshSem }()

			s.refreshResource(resource)
		}(resource)
	}
	wg.Wait()
}

func (s *Service) refreshResource(resource string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RequestTimeout)
	defer cancel()

	event := Event{Type: EventStatsUpdated, Resource: resource}

	var err error
	switch resource {
	case stats.ResourceDownloads:
		var result models.DownloadStats
		if result, err = s.provider.Downloads(ctx); err == nil {
			s.mu.Lock()
			s.downloads = &result
			s.mu.Unlock()
			event.Downloads = &result
		}

	case stats.ResourceEvaluations:
		var result models.EvaluationStats
		if result, err = s.provider.Evaluations(ctx); err == nil {
			s.mu.Lock()
			s.evaluations = &result
			s.mu.Unlock()
			event.Evaluations = &result
		}

	case stats.ResourceErrors:
		var result models.ErrorStats
		if result, err = s.provider.Errors(ctx); err == nil {
			s.mu.Lock()
			s.errors = &result
			s.mu.Unlock()
			event.Errors = &result
		}
	}

	if err != nil {
		logger.Error("failed to refresh stats", "resource", resource, "error", err)
		s.sendEvent(Event{Type: EventStatsError, Resource: resource, Error: err})
		return
	}

	s.sendEvent(event)
}

// poll runs the background polling goroutine.
func (s *Service) poll(stop <-chan struct{}) {
	// Initial refresh
	s.RefreshAll()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RefreshAll()
		case <-stop:
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the service and cleans up resources.
func (s *Service) Close() error {
	s.Stop()
	return nil
}
