package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/wetland-risk-monitor/internal/domain"
	"github.com/couchcryptid/wetland-risk-monitor/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvaluator struct {
	unavailable bool
}

func (s stubEvaluator) Evaluate(_ context.Context, req monitor.Request) (domain.Report, error) {
	site, ok := domain.LookupSite(req.SiteID)
	if !ok {
		return domain.Report{}, fmt.Errorf("%w: %q", monitor.ErrUnknownSite, req.SiteID)
	}
	if s.unavailable {
		return domain.UnavailableReport(site), nil
	}
	snap := domain.WeatherSnapshot{CurrentTempC: 37, MaxTempC: 39, MinTempC: 24, PrecipitationMM: 9.96}
	// Tuesday.
	now := time.Date(2024, time.May, 14, 12, 0, 0, 0, time.UTC)
	return domain.NewReport(site, snap, domain.Assess(snap, now, req.NearActivity)), nil
}

func TestRun_PrintsReport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), stubEvaluator{}, monitor.Request{SiteID: "azraq", NearActivity: true}, &stdout, &stderr)

	require.Equal(t, exitOK, code)
	assert.Empty(t, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Site: Azraq Wetland (Jordan) (azraq)")
	assert.Contains(t, out, "Current temperature:  37.00 °C")
	assert.Contains(t, out, "Precipitation today:  9.96 mm")
	assert.Contains(t, out, "Environmental Stress Level: Moderate")
	assert.Contains(t, out, "Moderate stress, monitor closely")
	assert.Contains(t, out, "Animal Migration Risk: Moderate")
	assert.Contains(t, out, "Poaching Risk: Moderate")
	assert.Contains(t, out, "Recommendation: Inform nearby communities. Set up temporary check-points.")
}

func TestRun_UnknownSite(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), stubEvaluator{}, monitor.Request{SiteID: "atlantis"}, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "unknown site")
}

func TestRun_Unavailable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), stubEvaluator{unavailable: true}, monitor.Request{SiteID: "hamoun"}, &stdout, &stderr)

	assert.Equal(t, exitUnavailable, code)
	assert.Contains(t, stdout.String(), domain.UnavailableMessage)
	assert.NotContains(t, stdout.String(), "Risk")
}

func TestPrintSites(t *testing.T) {
	var buf bytes.Buffer
	printSites(&buf, domain.Sites())

	out := buf.String()
	assert.Contains(t, out, "ID")
	for _, s := range domain.Sites() {
		assert.Contains(t, out, s.ID)
	}
}
