// Package health checks the tools and working tree a staging run depends on.
//
// The doctor command prints every outcome; run --preflight aborts on any
// unhealthy one:
//
//	m := health.NewManager(health.NewGitChecker(runner), health.NewTarChecker(runner))
//	outcomes := m.Check(ctx)
//	if failed := health.Failures(outcomes); len(failed) > 0 {
//	    ...
//	}
package health

import "context"

// Checker probes one dependency.
type Checker interface {
	// Name is a short hyphenated identifier such as "git-binary".
	Name() string
	// Check must return before ctx expires.
	Check(ctx context.Context) *Result
}

// Status is the verdict of a check.
type Status string

const (
	StatusHealthy Status = "healthy"
	// StatusDegraded means a run can proceed, possibly with extra work such
	// as cloning a missing workspace.
	StatusDegraded Status = "degraded"
	// StatusUnhealthy means a run would fail.
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is the outcome of one check.
type Result struct {
	Status  Status
	Message string
	Details map[string]interface{}
}

func newResult(status Status, message string) *Result {
	return &Result{Status: status, Message: message, Details: map[string]interface{}{}}
}

// WithDetail sets key and returns r.
func (r *Result) WithDetail(key string, value interface{}) *Result {
	r.Details[key] = value
	return r
}

func Healthy(message string) *Result   { return newResult(StatusHealthy, message) }
func Degraded(message string) *Result  { return newResult(StatusDegraded, message) }
func Unhealthy(message string) *Result { return newResult(StatusUnhealthy, message) }
