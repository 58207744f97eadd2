package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/wetland-risk-monitor/internal/domain"
	"github.com/couchcryptid/wetland-risk-monitor/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownSite is returned when a request names a site outside the catalog.
var ErrUnknownSite = errors.New("unknown site")

// warmConcurrency bounds parallel upstream requests during a warm pass.
const warmConcurrency = 4

// Startup warm backoff: start at 200ms, double each retry, cap at 5s.
const (
	initialWarmBackoff = 200 * time.Millisecond
	maxWarmBackoff     = 5 * time.Second
)

// Publisher receives every available report. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, report domain.Report) error
}

// Refresher is implemented by fetchers that can bypass their cache.
type Refresher interface {
	Refresh(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error)
}

// Request selects a site and supplies the operator's near-activity flag.
type Request struct {
	SiteID       string
	NearActivity bool
}

// Service runs evaluation cycles: fetch weather for a site, classify it, and
// hand the report to the display layer.
type Service struct {
	fetcher   domain.WeatherFetcher
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Service. A nil publisher disables publishing; a nil clock uses
// the real clock.
func New(fetcher domain.WeatherFetcher, publisher Publisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		fetcher:   fetcher,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Sites lists the monitored sites in display order.
func (s *Service) Sites() []domain.Site {
	return domain.Sites()
}

// Evaluate runs one cycle for the requested site. An empty SiteID selects the
// default site. Fetch failures never surface as errors: they produce an
// unavailable report with no readings and no ratings. The only error is
// ErrUnknownSite.
func (s *Service) Evaluate(ctx context.Context, req Request) (domain.Report, error) {
	site := domain.DefaultSite()
	if req.SiteID != "" {
		var ok bool
		site, ok = domain.LookupSite(req.SiteID)
		if !ok {
			s.metrics.Evaluations.WithLabelValues("unknown_site").Inc()
			return domain.Report{}, fmt.Errorf("%w: %q", ErrUnknownSite, req.SiteID)
		}
	}

	snap, err := s.fetcher.Fetch(ctx, site.Lat, site.Lon)
	if err != nil {
		s.logger.Warn("weather unavailable", "site_id", site.ID, "error", err)
		s.metrics.Evaluations.WithLabelValues("unavailable").Inc()
		return domain.UnavailableReport(site), nil
	}

	assessment := domain.Assess(snap, s.clock.Now(), req.NearActivity)
	report := domain.NewReport(site, snap, assessment)

	s.metrics.Evaluations.WithLabelValues("ok").Inc()
	s.recordLevels(assessment)
	s.logger.Debug("site evaluated",
		"site_id", site.ID,
		"stress", assessment.Stress.Level,
		"migration", assessment.Migration.Level,
		"poaching", assessment.Poaching.Level,
	)

	s.publish(ctx, report)
	return report, nil
}

// Warm fetches every site, bypassing the cache when the fetcher supports it,
// and marks the service ready once the pass completes. Per-site failures are
// logged; the returned error only summarizes them.
func (s *Service) Warm(ctx context.Context) error {
	sites := domain.Sites()

	var failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(warmConcurrency)

	for _, site := range sites {
		g.Go(func() error {
			if _, err := s.refresh(ctx, site); err != nil {
				failed.Add(1)
				s.logger.Warn("warm fetch failed", "site_id", site.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.metrics.WarmRuns.Inc()
	s.ready.Store(true)

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("warm: %d of %d sites failed", n, len(sites))
	}
	s.logger.Info("weather cache warmed", "sites", len(sites))
	return nil
}

// WarmWithRetry repeats Warm with exponential backoff until a pass succeeds
// for every site, attempts run out, or ctx is cancelled. The service is ready
// after the first pass regardless.
func (s *Service) WarmWithRetry(ctx context.Context, attempts int) error {
	backoff := initialWarmBackoff
	var err error
	for i := range attempts {
		if err = s.Warm(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		s.logger.Warn("warm incomplete, retrying", "attempt", i+1, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxWarmBackoff)
	}
	return err
}

// CheckReadiness returns nil once the first warm pass has completed.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("weather cache has not been warmed yet")
	}
	return nil
}

func (s *Service) refresh(ctx context.Context, site domain.Site) (domain.WeatherSnapshot, error) {
	if r, ok := s.fetcher.(Refresher); ok {
		return r.Refresh(ctx, site.Lat, site.Lon)
	}
	return s.fetcher.Fetch(ctx, site.Lat, site.Lon)
}

func (s *Service) recordLevels(a domain.Assessment) {
	s.metrics.RiskLevels.WithLabelValues("stress", a.Stress.Level.String()).Inc()
	s.metrics.RiskLevels.WithLabelValues("migration", a.Migration.Level.String()).Inc()
	s.metrics.RiskLevels.WithLabelValues("poaching", a.Poaching.Level.String()).Inc()
}

func (s *Service) publish(ctx context.Context, report domain.Report) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, report); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("publish assessment failed", "site_id", report.Site.ID, "error", err)
	}
}
