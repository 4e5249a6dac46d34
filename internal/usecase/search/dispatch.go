package search

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/search/match"
	"github.com/kailas-cloud/aptdex/internal/logger"
	"github.com/kailas-cloud/aptdex/internal/metrics"
)

// dispatch fans every query claim out to its domain index concurrently, each
// under its own timeout. A timed-out claim yields no matches but is not a
// backend failure; a domain whose every claim query errored is degraded and
// later drops out of the containment intersection. A cancelled parent
// context returns its error, never a degradation verdict.
func (s *Service) dispatch(ctx context.Context, claims []claim.Claim) ([][]match.Match, map[claim.Domain]bool, error) {
	matchesByClaim := make([][]match.Match, len(claims))
	failed := make([]bool, len(claims))

	var wg sync.WaitGroup
	for i := range claims {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			c := &claims[i]
			cctx, cancel := context.WithTimeout(ctx, s.cfg.ClaimTimeout)
			defer cancel()

			ms, err := s.claims.Search(cctx, c, s.kFor(c.Domain))
			switch {
			case err == nil:
				matchesByClaim[i] = ms
				metrics.ClaimQueriesTotal.WithLabelValues(string(c.Domain), "ok").Inc()
			case errors.Is(err, context.Canceled):
				// The caller went away; not a backend failure.
			case errors.Is(err, context.DeadlineExceeded):
				metrics.ClaimQueriesTotal.WithLabelValues(string(c.Domain), "timeout").Inc()
				logger.FromContext(ctx).Warn("Claim query timed out",
					zap.String("domain", string(c.Domain)),
					zap.String("claim", c.Text))
			default:
				failed[i] = true
				metrics.ClaimQueriesTotal.WithLabelValues(string(c.Domain), "error").Inc()
				logger.FromContext(ctx).Warn("Claim query failed",
					zap.String("domain", string(c.Domain)),
					zap.String("claim", c.Text),
					zap.Error(err))
			}
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return matchesByClaim, degradedDomains(claims, failed), nil
}

// degradedDomains marks a domain degraded when all of its claim queries
// failed with backend errors.
func degradedDomains(claims []claim.Claim, failed []bool) map[claim.Domain]bool {
	total := make(map[claim.Domain]int)
	broken := make(map[claim.Domain]int)
	for i := range claims {
		total[claims[i].Domain]++
		if failed[i] {
			broken[claims[i].Domain]++
		}
	}

	degraded := make(map[claim.Domain]bool, len(total))
	for dom, n := range total {
		if broken[dom] == n && n > 0 {
			degraded[dom] = true
			metrics.DegradedDomainsTotal.WithLabelValues(string(dom)).Inc()
		}
	}
	return degraded
}

func (s *Service) kFor(dom claim.Domain) int {
	switch dom {
	case claim.DomainRoom:
		return s.cfg.RoomK
	case claim.DomainNeighborhood:
		return s.cfg.NeighborhoodK
	default:
		return s.cfg.ApartmentK
	}
}
