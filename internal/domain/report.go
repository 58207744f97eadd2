package domain

// ReportStatus tells the display layer which state to render.
type ReportStatus string

const (
	StatusOK          ReportStatus = "ok"
	StatusUnavailable ReportStatus = "unavailable"
)

// UnavailableMessage is the single user-visible text shown when weather data
// cannot be fetched.
const UnavailableMessage = "Failed to fetch weather data. Try again later."

// Report is the outcome of one evaluation cycle for a site. An unavailable
// report carries neither snapshot nor assessment.
type Report struct {
	Site       Site             `json:"site"`
	Status     ReportStatus     `json:"status"`
	Message    string           `json:"message,omitempty"`
	Snapshot   *WeatherSnapshot `json:"snapshot,omitempty"`
	Assessment *Assessment      `json:"assessment,omitempty"`
}

// NewReport builds an ok report from a snapshot and its assessment.
func NewReport(site Site, snap WeatherSnapshot, a Assessment) Report {
	return Report{
		Site:       site,
		Status:     StatusOK,
		Snapshot:   &snap,
		Assessment: &a,
	}
}

// UnavailableReport builds the degraded report shown when a fetch fails.
func UnavailableReport(site Site) Report {
	return Report{
		Site:    site,
		Status:  StatusUnavailable,
		Message: UnavailableMessage,
	}
}

// Available reports whether the report carries readings and ratings.
func (r Report) Available() bool {
	return r.Status == StatusOK && r.Snapshot != nil && r.Assessment != nil
}
