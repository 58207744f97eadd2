package domain

// Site is a protected wetland habitat monitored by the service.
type Site struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// sites is the fixed catalog. Order is the display order; the first entry is
// the default selection.
var sites = []Site{
	{ID: "khor-kalba", Name: "Khor Kalba (UAE)", Lat: 25.0200, Lon: 56.3600},
	{ID: "ras-al-khor", Name: "Ras Al Khor (UAE)", Lat: 25.1800, Lon: 55.3200},
	{ID: "gavkhouni", Name: "Gavkhouni (Iran)", Lat: 32.3833, Lon: 52.7666},
	{ID: "hamoun", Name: "Hamoun (Iran)", Lat: 31.1000, Lon: 61.5000},
	{ID: "bakhtegan", Name: "Bakhtegan (Iran)", Lat: 29.6181, Lon: 53.8244},
	{ID: "hawizeh-marshes", Name: "Hawizeh Marshes (Iraq)", Lat: 31.5000, Lon: 47.0000},
	{ID: "azraq", Name: "Azraq Wetland (Jordan)", Lat: 31.8333, Lon: 36.8166},
	{ID: "salalah", Name: "Salalah Wetlands (Oman)", Lat: 17.0500, Lon: 54.1000},
}

// Sites returns a copy of the site catalog in display order.
func Sites() []Site {
	out := make([]Site, len(sites))
	copy(out, sites)
	return out
}

// DefaultSite returns the site selected when the caller names none.
func DefaultSite() Site {
	return sites[0]
}

// LookupSite finds a site by ID.
func LookupSite(id string) (Site, bool) {
	for _, s := range sites {
		if s.ID == id {
			return s, true
		}
	}
	return Site{}, false
}
