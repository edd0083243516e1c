package model

// Summary holds the aggregate counters of a run. It is stored next to the
// full report in the run history so listings need not decode every file.
type Summary struct {
	Files         int     `json:"files"`
	Succeeded     int     `json:"succeeded"`
	Failed        int     `json:"failed"`
	Skipped       int     `json:"skipped"`
	OriginalBytes int64   `json:"original_bytes"`
	MinifiedBytes int64   `json:"minified_bytes"`
	SavedBytes    int64   `json:"saved_bytes"`
	SavedPercent  float64 `json:"saved_percent"`
}

// NewSummary computes the summary of a run report.
func NewSummary(r *RunReport) Summary {
	return Summary{
		Files:         len(r.Files),
		Succeeded:     r.Succeeded(),
		Failed:        r.Failed(),
		Skipped:       r.Skipped(),
		OriginalBytes: r.TotalOriginal(),
		MinifiedBytes: r.TotalMinified(),
		SavedBytes:    r.Saved(),
		SavedPercent:  r.SavedPercent(),
	}
}
