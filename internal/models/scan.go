package models

// ScanRequest is the body of POST /api/scan.
type ScanRequest struct {
	Tickers    []string `json:"tickers"`
	Benchmark  string   `json:"benchmark"`
	StartYear  int      `json:"startYear"`
	StartMonth int      `json:"startMonth"`
	EndYear    int      `json:"endYear"`
	EndMonth   int      `json:"endMonth"`
}

// ScanRow is one ticker of a scan: either metrics (optionally with an
// advisory note) or an error message.
type ScanRow struct {
	Ticker string `json:"ticker"`
	Metrics
	Note  string `json:"note,omitempty"`
	Error string `json:"error,omitempty"`
}

// Failed reports whether the engine could not compute this row.
func (r ScanRow) Failed() bool {
	return r.Error != ""
}
