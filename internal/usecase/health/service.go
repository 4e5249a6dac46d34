package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks over the search backend and the AI
// providers.
type Service struct {
	db        DBPinger
	embedding ProviderChecker
	extractor ProviderChecker
}

// New creates a Service. embedding and extractor can be nil.
func New(db DBPinger, embedding, extractor ProviderChecker) *Service {
	return &Service{db: db, embedding: embedding, extractor: extractor}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		checks["embedding"] = providerResult(ctx, s.embedding)
	}
	if s.extractor != nil {
		checks["extractor"] = providerResult(ctx, s.extractor)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func providerResult(ctx context.Context, p ProviderChecker) CheckResult {
	if err := p.HealthCheck(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
