package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	LabelDifferent = 0
	LabelSame      = 1
)

// Pair is two image references plus the ground-truth label.
type Pair struct {
	Image1 string `json:"img1"`
	Image2 string `json:"img2"`
	Label  int    `json:"label"`
}

// Sample is one scored pair. Score is a percentage in [0,100].
type Sample struct {
	Label int
	Score float64
}

// ThresholdMetrics holds the confusion counts and derived rates at one cut
// point. Rates are percentages.
type ThresholdMetrics struct {
	Threshold float64 `json:"threshold"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	TAR       float64 `json:"tar"`
	FAR       float64 `json:"far"`
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	TN        int     `json:"tn"`
	FN        int     `json:"fn"`
}

// EvaluationResult summarises one dataset run.
type EvaluationResult struct {
	Dataset          string           `json:"dataset"`
	TotalPairs       int              `json:"total_pairs"`
	EvaluatedPairs   int              `json:"evaluated_pairs"`
	FailedPairs      int              `json:"failed_pairs"`
	AUC              float64          `json:"auc"`
	OptimalThreshold ThresholdMetrics `json:"optimal_threshold"`
	DefaultThreshold ThresholdMetrics `json:"default_threshold"`
}

// EvaluationRun is a persisted EvaluationResult.
type EvaluationRun struct {
	ID        uuid.UUID        `json:"id"`
	Dataset   string           `json:"dataset"`
	Result    EvaluationResult `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}
