package healthcheck

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/provider"
)

// Status is a snapshot of the provider's observed health.
type Status struct {
	Provider     string    `json:"provider"`
	IsHealthy    bool      `json:"is_healthy"`
	LastCheck    time.Time `json:"last_check"`
	LastSuccess  time.Time `json:"last_success,omitempty"`
	LastFailure  time.Time `json:"last_failure,omitempty"`
	FailureCount int       `json:"failure_count"`
}

type Config struct {
	Interval    time.Duration // How often to ping (default: 30s)
	Timeout     time.Duration // Ping timeout (default: 5s)
	MaxFailures int           // Failures before marking unhealthy (default: 3)
}

// Checker periodically pings the analysis provider so /health can
// report downstream status without spending a provider call per probe.
type Checker struct {
	mu          sync.RWMutex
	describer   provider.Describer
	status      Status
	interval    time.Duration
	timeout     time.Duration
	maxFailures int
	stopChan    chan struct{}
	running     bool
}

func NewChecker(d provider.Describer, cfg Config) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}

	return &Checker{
		describer: d,
		status: Status{
			Provider:  d.Name(),
			IsHealthy: true, // Assume healthy until probed
			LastCheck: time.Now(),
		},
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxFailures: cfg.MaxFailures,
		stopChan:    make(chan struct{}),
	}
}

// Begins periodic provider pings
func (c *Checker) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	log.Printf("Starting provider health checks (interval: %v)", c.interval)

	c.check()

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.check()
			case <-c.stopChan:
				return
			}
		}
	}()
}

// Stops the health checker
func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.stopChan)
		c.running = false
		log.Printf("Provider health checker stopped")
	}
}

func (c *Checker) check() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.describer.Ping(ctx); err != nil {
		c.recordFailure(err)
		return
	}

	c.recordSuccess()
}

func (c *Checker) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.LastCheck = time.Now()
	c.status.LastSuccess = time.Now()
	c.status.FailureCount = 0

	if !c.status.IsHealthy {
		log.Printf("Provider %s is healthy again", c.status.Provider)
		c.status.IsHealthy = true
	}
}

func (c *Checker) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.LastCheck = time.Now()
	c.status.LastFailure = time.Now()
	c.status.FailureCount++

	if c.status.IsHealthy && c.status.FailureCount >= c.maxFailures {
		log.Printf("Provider %s is unhealthy (failures: %d): %v", c.status.Provider, c.status.FailureCount, err)
		c.status.IsHealthy = false
	}
}

// Returns a copy of the current status
func (c *Checker) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}
