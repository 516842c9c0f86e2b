// Package health runs the diagnostics behind `padup doctor`. Each Checker
// probes one thing padup depends on and Run gathers the results into a
// Report.
package health

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single check.
const DefaultTimeout = 5 * time.Second

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded" // padup works, with a caveat
	StatusUnhealthy Status = "unhealthy"
)

var severity = map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}

// Symbol is the marker doctor prints in front of a check.
func (s Status) Symbol() string {
	switch s {
	case StatusHealthy:
		return "✓"
	case StatusDegraded:
		return "!"
	}
	return "✗"
}

// Result is the outcome of one check. Name and Latency are filled in by Run.
type Result struct {
	Name    string            `json:"name" yaml:"name"`
	Status  Status            `json:"status" yaml:"status"`
	Message string            `json:"message" yaml:"message"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration     `json:"latency" yaml:"latency"`
}

func Pass(message string) Result { return Result{Status: StatusHealthy, Message: message} }
func Warn(message string) Result { return Result{Status: StatusDegraded, Message: message} }
func Fail(message string) Result { return Result{Status: StatusUnhealthy, Message: message} }

// With returns r with an extra detail.
func (r Result) With(key, value string) Result {
	d := make(map[string]string, len(r.Details)+1)
	for k, v := range r.Details {
		d[k] = v
	}
	d[key] = value
	r.Details = d
	return r
}

type Checker interface {
	Name() string
	// Check must give up when ctx is done.
	Check(ctx context.Context) Result
}

// Report is what doctor prints.
type Report struct {
	Status    Status    `json:"status" yaml:"status"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Checks    []Result  `json:"checks" yaml:"checks"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Run executes checkers concurrently, each under its own timeout, and
// returns their results sorted by name. The report status is the worst
// status of any check.
func Run(ctx context.Context, version string, timeout time.Duration, checkers ...Checker) *Report {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	results := make([]Result, len(checkers))
	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = run(ctx, c, timeout)
			return nil
		})
	}
	_ = g.Wait()

	slices.SortStableFunc(results, func(a, b Result) int { return strings.Compare(a.Name, b.Name) })

	overall := StatusHealthy
	for _, r := range results {
		if severity[r.Status] > severity[overall] {
			overall = r.Status
		}
	}
	return &Report{Status: overall, Version: version, Checks: results, Timestamp: time.Now().UTC()}
}

func run(ctx context.Context, c Checker, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	r := c.Check(ctx)
	if r.Status == "" {
		r = Fail("check returned no status")
	}
	r.Name = c.Name()
	if r.Latency == 0 {
		r.Latency = time.Since(start)
	}
	return r
}

// String prints one line per check, its details indented below it, and the
// overall status last.
func (r *Report) String() string {
	var b strings.Builder
	for _, c := range r.Checks {
		fmt.Fprintf(&b, "%s %-16s %s", c.Status.Symbol(), c.Name, c.Message)
		if c.Latency > 0 {
			fmt.Fprintf(&b, " (%s)", c.Latency.Round(time.Millisecond))
		}
		b.WriteByte('\n')

		keys := make([]string, 0, len(c.Details))
		for k := range c.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s: %s\n", k, c.Details[k])
		}
	}
	fmt.Fprintf(&b, "\nOverall: %s", r.Status)
	return b.String()
}
