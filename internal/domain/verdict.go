package domain

// Confidence buckets a similarity score for display.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Verdict is the outcome of comparing the first face of two images.
type Verdict struct {
	SimilarityScore float64    `json:"similarity_score"`
	IsSamePerson    bool       `json:"is_same_person"`
	Confidence      Confidence `json:"confidence"`
	Model           string     `json:"model"`
}
