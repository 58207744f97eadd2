package http

import (
	"bytes"
	_ "embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/couchcryptid/wetland-risk-monitor/internal/domain"
	"github.com/couchcryptid/wetland-risk-monitor/internal/monitor"
)

//go:embed dashboard.html
var dashboardHTML string

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

type dashboardView struct {
	Sites        []domain.Site
	SiteID       string
	NearActivity bool
	Report       domain.Report
	Sections     []riskSection
}

type riskSection struct {
	Title  string
	Rating domain.RiskRating
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	nearActivity, err := parseNearActivity(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.monitor.Evaluate(r.Context(), monitor.Request{
		SiteID:       q.Get("site"),
		NearActivity: nearActivity,
	})
	if errors.Is(err, monitor.ErrUnknownSite) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("evaluate site", "site_id", q.Get("site"), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	view := dashboardView{
		Sites:        s.monitor.Sites(),
		SiteID:       report.Site.ID,
		NearActivity: nearActivity,
		Report:       report,
	}
	if a := report.Assessment; report.Available() {
		view.Sections = []riskSection{
			{Title: "Environmental Stress Level", Rating: a.Stress},
			{Title: "Animal Migration Risk", Rating: a.Migration},
			{Title: "Poaching Risk", Rating: a.Poaching},
		}
	}

	// Render fully before writing so a template error never yields half a page.
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		s.logger.Error("render dashboard", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
