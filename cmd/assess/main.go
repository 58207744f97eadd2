// Command assess runs a single risk evaluation for one wetland site and prints
// a text report. It skips the cache warm and the HTTP server.
//
// Usage:
//
//	go run ./cmd/assess -site azraq -near-activity=false
//	go run ./cmd/assess -list
//
// Exit codes: 0 on success, 1 for an unknown site or bad configuration, 2 when
// weather data is unavailable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/couchcryptid/wetland-risk-monitor/internal/adapter/openmeteo"
	"github.com/couchcryptid/wetland-risk-monitor/internal/config"
	"github.com/couchcryptid/wetland-risk-monitor/internal/domain"
	"github.com/couchcryptid/wetland-risk-monitor/internal/monitor"
	"github.com/couchcryptid/wetland-risk-monitor/internal/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

const (
	exitOK          = 0
	exitUsage       = 1
	exitUnavailable = 2
)

func main() {
	siteID := flag.String("site", domain.DefaultSite().ID, "site ID to assess")
	nearActivity := flag.Bool("near-activity", true, "site is near roads or human settlements")
	list := flag.Bool("list", false, "list site IDs and exit")
	flag.Parse()

	if *list {
		printSites(os.Stdout, domain.Sites())
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(exitUsage)
	}

	// Reports go to stdout; logs stay on stderr at warn and above.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetrics()
	client := openmeteo.NewClient(cfg.ForecastBaseURL, cfg.ForecastTimeout, metrics, logger)
	svc := monitor.New(client, nil, clockwork.NewRealClock(), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, svc, monitor.Request{SiteID: *siteID, NearActivity: *nearActivity}, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type evaluator interface {
	Evaluate(ctx context.Context, req monitor.Request) (domain.Report, error)
}

func run(ctx context.Context, svc evaluator, req monitor.Request, stdout, stderr io.Writer) int {
	report, err := svc.Evaluate(ctx, req)
	if errors.Is(err, monitor.ErrUnknownSite) {
		fmt.Fprintf(stderr, "%v (use -list to see site IDs)\n", err)
		return exitUsage
	}
	if err != nil {
		fmt.Fprintf(stderr, "evaluate: %v\n", err)
		return exitUsage
	}

	printReport(stdout, report)
	if !report.Available() {
		return exitUnavailable
	}
	return exitOK
}

func printSites(w io.Writer, sites []domain.Site) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLAT\tLON")
	for _, s := range sites {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\n", s.ID, s.Name, s.Lat, s.Lon)
	}
	tw.Flush()
}

func printReport(w io.Writer, r domain.Report) {
	fmt.Fprintf(w, "Site: %s (%s)\n", r.Site.Name, r.Site.ID)
	if !r.Available() {
		fmt.Fprintf(w, "\n%s\n", r.Message)
		return
	}

	snap, a := r.Snapshot, r.Assessment
	fmt.Fprintf(w, "Evaluated: %s\n\n", a.EvaluatedAt.Format("Mon 2006-01-02 15:04 MST"))
	fmt.Fprintf(w, "Current temperature:  %.2f °C\n", snap.CurrentTempC)
	fmt.Fprintf(w, "Max temp today:       %.2f °C\n", snap.MaxTempC)
	fmt.Fprintf(w, "Min temp today:       %.2f °C\n", snap.MinTempC)
	fmt.Fprintf(w, "Precipitation today:  %.2f mm\n", snap.PrecipitationMM)

	sections := []struct {
		title  string
		rating domain.RiskRating
	}{
		{"Environmental Stress Level", a.Stress},
		{"Animal Migration Risk", a.Migration},
		{"Poaching Risk", a.Poaching},
	}
	for _, s := range sections {
		fmt.Fprintf(w, "\n%s: %s\n", s.title, s.rating.Level)
		fmt.Fprintf(w, "  %s\n", s.rating.Headline)
		fmt.Fprintf(w, "  Recommendation: %s\n", s.rating.Recommendation)
	}
}
