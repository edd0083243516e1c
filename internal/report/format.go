package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/svgmin/internal/model"
)

// Size formats a byte count with IEC units, e.g. "12 KiB".
func Size(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// Percent formats a percentage with two decimal places.
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// StatusLabel returns the fixed-width tag of a file status.
func StatusLabel(s model.FileStatus) string {
	switch s {
	case model.StatusOptimized:
		return "[OK]  "
	case model.StatusUnchanged:
		return "[SAME]"
	case model.StatusSkipped:
		return "[SKIP]"
	default:
		return "[FAIL]"
	}
}

// FileDetail describes the outcome of one file without its status tag:
// sizes and saving for written files, the reason otherwise.
func FileDetail(r model.FileResult) string {
	switch r.Status {
	case model.StatusOptimized:
		return fmt.Sprintf("%s -> %s (%s) %s",
			Size(r.OriginalSize), Size(r.MinifiedSize), Percent(r.SavedPercent()), r.Optimizer)
	case model.StatusUnchanged:
		return fmt.Sprintf("%s (already minimal)", Size(r.OriginalSize))
	default:
		return r.Error
	}
}
