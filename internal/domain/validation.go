package domain

// ValidationResult is the outcome of checking one piece of content for
// disclosure compliance. Constructed fresh per validation call and never
// mutated afterward.
//
// HasDisclosure and Issues are orthogonal: a detected disclosure can still
// accumulate placement or clarity issues. IsValid is true only when a
// disclosure was found and no issues remain.
type ValidationResult struct {
	IsValid        bool     `json:"is_valid"`
	HasDisclosure  bool     `json:"has_disclosure"`
	DisclosureText string   `json:"disclosure_text,omitempty"`
	Issues         []string `json:"issues,omitempty"`
}

// ComplianceReport aggregates many ValidationResults.
type ComplianceReport struct {
	CompliantCount    int      `json:"compliant_count"`
	NonCompliantCount int      `json:"non_compliant_count"`
	// ComplianceRate is a percentage in [0, 100], rounded to 2 decimal
	// places; 0 when the report is empty.
	ComplianceRate float64  `json:"compliance_rate"`
	Issues         []string `json:"issues,omitempty"`
}

// ValidationEntry pairs a caller-supplied content identifier with its
// validation result, preserving insertion order for report generation.
type ValidationEntry struct {
	ContentID string
	Result    ValidationResult
}
