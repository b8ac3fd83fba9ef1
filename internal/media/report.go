package media

import (
	"fmt"
	"strings"
)

// Report summarises a resolution result for logs and export reports.
type Report struct {
	Total       int      `json:"total"`
	Resolved    int      `json:"resolved"`
	Failed      int      `json:"failed"`
	SuccessRate float64  `json:"success_rate"`
	MissingIDs  []string `json:"missing_ids"`
}

// Summarize derives a Report from result. SuccessRate is a percentage and is
// zero for an empty result.
func Summarize(result Result) Report {
	report := Report{
		Total:      result.Stats.Total,
		Resolved:   result.Stats.Resolved,
		Failed:     result.Stats.Failed,
		MissingIDs: make([]string, 0, len(result.Errors)),
	}
	if report.Total > 0 {
		report.SuccessRate = float64(report.Resolved) / float64(report.Total) * 100
	}
	for _, failure := range result.Errors {
		report.MissingIDs = append(report.MissingIDs, failure.MediaID)
	}
	return report
}

// String renders the report as a short human readable block.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Media resolution: %d/%d resolved (%.1f%%)", r.Resolved, r.Total, r.SuccessRate)
	if len(r.MissingIDs) > 0 {
		fmt.Fprintf(&b, "\nMissing media IDs: %s", strings.Join(r.MissingIDs, ", "))
	}
	return b.String()
}
