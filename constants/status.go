package constants

// DocumentStatus is the lifecycle state of one document in a batch run.
type DocumentStatus string

const (
	DocumentStatusQueued     DocumentStatus = "QUEUED"
	DocumentStatusExtracted  DocumentStatus = "EXTRACTED"  // patterns applied, confidence scored
	DocumentStatusNormalized DocumentStatus = "NORMALIZED" // canonical record validated
	DocumentStatusFailed     DocumentStatus = "FAILED"     // terminal failure
)

// ConfidenceLevel buckets an overall extraction confidence.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// LevelForConfidence buckets at >=0.9 high, >=0.7 medium, else low.
func LevelForConfidence(c float64) ConfidenceLevel {
	switch {
	case c >= 0.9:
		return ConfidenceHigh
	case c >= 0.7:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
