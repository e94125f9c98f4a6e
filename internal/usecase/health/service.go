// Package health aggregates dependency probes into one gateway status.
package health

import (
	"context"
	"sync"
	"time"
)

type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker fails when a served model has no search index.
type IndexChecker interface {
	CheckIndexes(ctx context.Context) error
}

// Status is the aggregated verdict.
type Status string

const (
	Healthy   Status = "ok"
	Degraded  Status = "degraded"
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one probe.
type CheckResult string

const (
	CheckOK      CheckResult = "ok"
	CheckError   CheckResult = "error"
	CheckTimeout CheckResult = "timeout"
)

// Report holds the verdict and every probe outcome by name.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// DefaultProbeTimeout bounds each probe.
const DefaultProbeTimeout = 2 * time.Second

type probe struct {
	name string
	// a failing critical probe makes the service unhealthy, any other only degrades it
	critical bool
	run      func(ctx context.Context) error
}

// Service runs probes concurrently.
type Service struct {
	probes  []probe
	timeout time.Duration
}

// New probes the database (critical) and, when indexes is non-nil, the
// model indexes.
func New(db DBPinger, indexes IndexChecker) *Service {
	s := &Service{timeout: DefaultProbeTimeout}
	s.probes = append(s.probes, probe{name: "database", critical: true, run: db.Ping})
	if indexes != nil {
		s.probes = append(s.probes, probe{name: "indexes", run: indexes.CheckIndexes})
	}
	return s
}

// WithTimeout returns s with a different per-probe timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	cp := *s
	cp.timeout = d
	return &cp
}

func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.probes))

	var wg sync.WaitGroup
	for i, p := range s.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.run(ctx, p)
		}()
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.probes))}
	for i, p := range s.probes {
		report.Checks[p.name] = results[i]
		switch {
		case results[i] == CheckOK:
		case p.critical:
			report.Status = Unhealthy
		case report.Status == Healthy:
			report.Status = Degraded
		}
	}
	return report
}

func (s *Service) run(ctx context.Context, p probe) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := p.run(ctx)
	switch {
	case err == nil:
		return CheckOK
	case ctx.Err() != nil:
		return CheckTimeout
	}
	return CheckError
}
