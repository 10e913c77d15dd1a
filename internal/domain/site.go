package domain

import "strings"

// DataSource identifies the typical-meteorological-year family a site file came from.
type DataSource string

const (
	DataSourceTMY3    DataSource = "TMY3"
	DataSourceCWEC    DataSource = "CWEC"
	DataSourceIWEC    DataSource = "IWEC"
	DataSourceUnknown DataSource = "UNKNOWN"
)

// ParseDataSource classifies the format tag recorded at ingestion time.
// Both the three-letter file markers (TYA, CWE, IW2) and the canonical
// names are accepted; anything else is UNKNOWN.
func ParseDataSource(tag string) DataSource {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "TYA", "TMY3":
		return DataSourceTMY3
	case "CWE", "CWEC":
		return DataSourceCWEC
	case "IW2", "IWEC":
		return DataSourceIWEC
	default:
		return DataSourceUnknown
	}
}

// SiteLocation is the immutable per-site metadata produced by ingestion.
type SiteLocation struct {
	ID          string     `json:"site_id"`
	StationName string     `json:"station_name"`
	Country     string     `json:"country"`
	State       string     `json:"state"`
	DataSource  DataSource `json:"data_source"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	ElevationM  float64    `json:"elevation_m"`
	UTCOffset   float64    `json:"utc_offset"` // hours, + ahead of UTC
	Climate     string     `json:"climate,omitempty"`
}

// ElevationKm returns the site elevation in kilometers.
func (s SiteLocation) ElevationKm() float64 {
	return s.ElevationM / 1000
}
