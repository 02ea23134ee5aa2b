package compliance

import (
	"fmt"
	"math"
	"strings"

	"ftcguard/internal/domain"
)

// GenerateReport aggregates validation results into a compliance report.
// Entries are processed in order; non-compliant entries contribute one
// formatted issue line each. The compliance rate is a percentage rounded
// to two decimal places, zero for an empty report.
func GenerateReport(entries []domain.ValidationEntry) domain.ComplianceReport {
	report := domain.ComplianceReport{}

	for _, e := range entries {
		if e.Result.IsValid {
			report.CompliantCount++
			continue
		}
		report.NonCompliantCount++
		report.Issues = append(report.Issues,
			fmt.Sprintf("%s: %s", e.ContentID, strings.Join(e.Result.Issues, ", ")))
	}

	total := report.CompliantCount + report.NonCompliantCount
	if total > 0 {
		rate := float64(report.CompliantCount) / float64(total) * 100
		report.ComplianceRate = math.Round(rate*100) / 100
	}

	return report
}
