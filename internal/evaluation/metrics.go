package evaluation

import (
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/faceverify/faceverify/internal/domain"
)

// DefaultThreshold is the fixed reference cut point, in percent.
const DefaultThreshold = 65.0

// roc returns the ROC curve of the samples. thresh is descending and starts
// with +Inf, where tpr and fpr are both zero.
func roc(samples []domain.Sample) (tpr, fpr, thresh []float64) {
	y := make([]float64, len(samples))
	classes := make([]bool, len(samples))
	for i, s := range samples {
		y[i] = s.Score
		classes[i] = s.Label == domain.LabelSame
	}

	stat.SortWeightedLabeled(y, classes, nil)
	return stat.ROC(nil, y, classes, nil)
}

// hasBothClasses reports whether samples contain at least one pair of each label
func hasBothClasses(samples []domain.Sample) bool {
	var same, different bool
	for _, s := range samples {
		if s.Label == domain.LabelSame {
			same = true
		} else {
			different = true
		}
		if same && different {
			return true
		}
	}
	return false
}

// AUC is the area under the ROC curve, or 0 when it is undefined
// (no samples or a single class).
func AUC(samples []domain.Sample) float64 {
	if !hasBothClasses(samples) {
		return 0
	}
	tpr, fpr, _ := roc(samples)
	return integrate.Trapezoidal(fpr, tpr)
}

// OptimalThreshold returns the ROC cut point maximising TPR - FPR. Ties keep
// the highest threshold. Without both classes it falls back to fallback.
func OptimalThreshold(samples []domain.Sample, fallback float64) float64 {
	if !hasBothClasses(samples) {
		return fallback
	}

	_, _, thresh := roc(samples)

	best := fallback
	bestJ := math.Inf(-1)
	for _, t := range thresh {
		// +Inf predicts nothing positive; the highest finite score is used instead.
		if math.IsInf(t, 0) {
			continue
		}
		m := confusion(samples, t)
		j := rate(m.TP, m.TP+m.FN) - rate(m.FP, m.FP+m.TN)
		if j > bestJ {
			bestJ = j
			best = t
		}
	}
	return best
}

// confusion counts predictions made with score >= threshold
func confusion(samples []domain.Sample, threshold float64) domain.ThresholdMetrics {
	m := domain.ThresholdMetrics{Threshold: threshold}
	for _, s := range samples {
		predictedSame := s.Score >= threshold
		actualSame := s.Label == domain.LabelSame

		switch {
		case predictedSame && actualSame:
			m.TP++
		case predictedSame && !actualSame:
			m.FP++
		case !predictedSame && !actualSame:
			m.TN++
		default:
			m.FN++
		}
	}
	return m
}

// MetricsAt returns confusion counts and percentage rates at threshold.
// Undefined ratios are reported as 0.
func MetricsAt(samples []domain.Sample, threshold float64) domain.ThresholdMetrics {
	m := confusion(samples, threshold)

	m.Threshold = round(threshold, 2)
	m.Accuracy = percent(m.TP+m.TN, len(samples))
	m.Precision = percent(m.TP, m.TP+m.FP)
	m.Recall = percent(m.TP, m.TP+m.FN)
	m.TAR = m.Recall
	m.FAR = percent(m.FP, m.FP+m.TN)

	return m
}

func rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func percent(n, d int) float64 {
	return round(rate(n, d)*100, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
