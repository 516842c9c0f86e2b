package health

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct {
	name   string
	result Result
	delay  time.Duration
	calls  *atomic.Int32
}

func (s stub) Name() string { return s.name }

func (s stub) Check(ctx context.Context) Result {
	if s.calls != nil {
		s.calls.Add(1)
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Fail("check cancelled")
		}
	}
	return s.result
}

func TestStatusSymbol(t *testing.T) {
	assert.Equal(t, "✓", StatusHealthy.Symbol())
	assert.Equal(t, "!", StatusDegraded.Symbol())
	assert.Equal(t, "✗", StatusUnhealthy.Symbol())
}

func TestResultWith_DoesNotShareDetails(t *testing.T) {
	base := Pass("ok").With("path", "/home/ada/.padup")
	a := base.With("status", "200")
	b := base.With("status", "502")

	assert.Len(t, base.Details, 1)
	assert.Equal(t, "200", a.Details["status"])
	assert.Equal(t, "502", b.Details["status"])
}

func TestRun_SortsAndNames(t *testing.T) {
	report := Run(context.Background(), "1.2.0", time.Second,
		stub{name: "storage", result: Pass("directory writable")},
		stub{name: "api", result: Pass("API reachable")},
		stub{name: "config", result: Pass("loaded")},
	)

	var names []string
	for _, c := range report.Checks {
		names = append(names, c.Name)
		assert.Positive(t, c.Latency)
	}
	assert.Equal(t, []string{"api", "config", "storage"}, names)
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, "1.2.0", report.Version)
}

func TestRun_WorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Result
		want     Status
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []Result{Pass("a"), Pass("b")}, StatusHealthy},
		{"one degraded", []Result{Pass("a"), Warn("b")}, StatusDegraded},
		{"unhealthy beats degraded", []Result{Warn("a"), Fail("b"), Pass("c")}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var checkers []Checker
			for i, r := range tt.statuses {
				checkers = append(checkers, stub{name: string(rune('a' + i)), result: r})
			}
			assert.Equal(t, tt.want, Run(context.Background(), "", time.Second, checkers...).Status)
		})
	}
}

func TestRun_Timeout(t *testing.T) {
	report := Run(context.Background(), "", 20*time.Millisecond,
		stub{name: "api", result: Pass("late"), delay: time.Second})

	require.Len(t, report.Checks, 1)
	assert.Equal(t, StatusUnhealthy, report.Checks[0].Status)
	assert.Equal(t, "check cancelled", report.Checks[0].Message)
}

func TestRun_Concurrent(t *testing.T) {
	var calls atomic.Int32
	var checkers []Checker
	for _, n := range []string{"a", "b", "c", "d"} {
		checkers = append(checkers, stub{name: n, result: Pass("ok"), delay: 100 * time.Millisecond, calls: &calls})
	}

	start := time.Now()
	Run(context.Background(), "", time.Second, checkers...)
	assert.Less(t, time.Since(start), 350*time.Millisecond)
	assert.Equal(t, int32(4), calls.Load())
}

func TestRun_EmptyStatusFails(t *testing.T) {
	report := Run(context.Background(), "", time.Second, stub{name: "odd"})
	assert.Equal(t, StatusUnhealthy, report.Checks[0].Status)
}

func TestReport_String(t *testing.T) {
	r := &Report{
		Status: StatusDegraded,
		Checks: []Result{
			Pass("API reachable").With("url", "http://localhost:5000/api"),
			Warn("session token expired"),
		},
	}
	r.Checks[0].Name, r.Checks[1].Name = "api", "session"

	lines := strings.Split(r.String(), "\n")
	assert.Equal(t, "✓ api              API reachable", lines[0])
	assert.Equal(t, "    url: http://localhost:5000/api", lines[1])
	assert.Equal(t, "! session          session token expired", lines[2])
	assert.Equal(t, "Overall: degraded", lines[len(lines)-1])
}

func TestReport_JSON(t *testing.T) {
	report := Run(context.Background(), "dev", time.Second, stub{name: "api", result: Pass("up")})
	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "healthy", decoded["status"])
	check := decoded["checks"].([]any)[0].(map[string]any)
	assert.Equal(t, "api", check["name"])
	assert.NotContains(t, check, "details")
}
