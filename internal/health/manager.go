package health

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds each check.
const DefaultTimeout = 5 * time.Second

// Outcome pairs a checker name with its result.
type Outcome struct {
	Name string
	*Result
}

// Manager runs a fixed list of checkers.
type Manager struct {
	// Timeout bounds every single check; zero means DefaultTimeout.
	Timeout  time.Duration
	checkers []Checker
}

// NewManager returns a manager for checkers, kept in the given order.
func NewManager(checkers ...Checker) *Manager {
	return &Manager{checkers: checkers}
}

// Add appends a checker.
func (m *Manager) Add(c Checker) {
	m.checkers = append(m.checkers, c)
}

// Check runs every checker concurrently and returns the outcomes in
// registration order. A checker that returns nil is reported unhealthy.
func (m *Manager) Check(ctx context.Context) []Outcome {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	outcomes := make([]Outcome, len(m.checkers))
	var wg sync.WaitGroup
	for i, c := range m.checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			res := c.Check(checkCtx)
			if res == nil {
				res = Unhealthy("check returned no result")
			}
			outcomes[i] = Outcome{Name: c.Name(), Result: res}
		}()
	}
	wg.Wait()
	return outcomes
}

// Overall is unhealthy if any outcome is, else degraded if any is, else
// healthy.
func Overall(outcomes []Outcome) Status {
	overall := StatusHealthy
	for _, o := range outcomes {
		switch o.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// Failures names the unhealthy outcomes in order.
func Failures(outcomes []Outcome) []string {
	var failed []string
	for _, o := range outcomes {
		if o.Status == StatusUnhealthy {
			failed = append(failed, o.Name)
		}
	}
	return failed
}
