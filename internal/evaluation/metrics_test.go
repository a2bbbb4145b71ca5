package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faceverify/faceverify/internal/domain"
)

func samplesOf(scores []float64, labels []int) []domain.Sample {
	samples := make([]domain.Sample, len(scores))
	for i := range scores {
		samples[i] = domain.Sample{Score: scores[i], Label: labels[i]}
	}
	return samples
}

func TestMetricsAt_SeparableAtDefault(t *testing.T) {
	samples := samplesOf([]float64{90, 80, 40, 20}, []int{1, 1, 0, 0})

	m := MetricsAt(samples, DefaultThreshold)

	assert.Equal(t, 65.0, m.Threshold)
	assert.Equal(t, 100.0, m.Accuracy)
	assert.Equal(t, 100.0, m.Precision)
	assert.Equal(t, 100.0, m.Recall)
	assert.Equal(t, 100.0, m.TAR)
	assert.Equal(t, 0.0, m.FAR)
	assert.Equal(t, 2, m.TP)
	assert.Equal(t, 0, m.FP)
	assert.Equal(t, 2, m.TN)
	assert.Equal(t, 0, m.FN)
}

func TestMetricsAt_Mixed(t *testing.T) {
	// scores >= 50 predicted same: 70(1) 60(0) 55(1) | 30(1) 10(0)
	samples := samplesOf([]float64{70, 60, 55, 30, 10}, []int{1, 0, 1, 1, 0})

	m := MetricsAt(samples, 50)

	assert.Equal(t, 2, m.TP)
	assert.Equal(t, 1, m.FP)
	assert.Equal(t, 1, m.TN)
	assert.Equal(t, 1, m.FN)
	assert.Equal(t, 60.0, m.Accuracy)
	assert.Equal(t, 66.67, m.Precision)
	assert.Equal(t, 66.67, m.Recall)
	assert.Equal(t, 50.0, m.FAR)
}

func TestMetricsAt_BoundaryIsInclusive(t *testing.T) {
	samples := samplesOf([]float64{65, 64.99}, []int{1, 0})

	m := MetricsAt(samples, 65)
	assert.Equal(t, 1, m.TP)
	assert.Equal(t, 1, m.TN)
}

func TestMetricsAt_ZeroDivision(t *testing.T) {
	samples := samplesOf([]float64{10, 20}, []int{0, 0})

	m := MetricsAt(samples, 65)
	assert.Equal(t, 0.0, m.Precision)
	assert.Equal(t, 0.0, m.Recall)
	assert.Equal(t, 0.0, m.FAR)
	assert.Equal(t, 100.0, m.Accuracy)
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		labels []int
		want   float64
	}{
		{name: "perfectly separable", scores: []float64{90, 80, 10, 5}, labels: []int{1, 1, 0, 0}, want: 1.0},
		{name: "inverted", scores: []float64{10, 5, 90, 80}, labels: []int{1, 1, 0, 0}, want: 0.0},
		{name: "all tied", scores: []float64{50, 50, 50, 50}, labels: []int{1, 0, 1, 0}, want: 0.5},
		{name: "one swap", scores: []float64{90, 40, 60, 10}, labels: []int{1, 1, 0, 0}, want: 0.75},
		{name: "single class", scores: []float64{90, 80}, labels: []int{1, 1}, want: 0.0},
		{name: "empty", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AUC(samplesOf(tt.scores, tt.labels)), 1e-9)
		})
	}
}

func TestOptimalThreshold(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		labels []int
		want   float64
	}{
		{name: "separable picks lowest positive", scores: []float64{90, 80, 40, 20}, labels: []int{1, 1, 0, 0}, want: 80},
		{name: "overlap", scores: []float64{90, 70, 60, 50, 30}, labels: []int{1, 1, 0, 1, 0}, want: 70},
		{name: "single class falls back", scores: []float64{90, 80}, labels: []int{0, 0}, want: 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OptimalThreshold(samplesOf(tt.scores, tt.labels), DefaultThreshold))
		})
	}
}

func TestOptimalThreshold_DoesNotMutateInput(t *testing.T) {
	samples := samplesOf([]float64{20, 90, 40, 80}, []int{0, 1, 0, 1})
	before := append([]domain.Sample(nil), samples...)

	_ = OptimalThreshold(samples, DefaultThreshold)
	_ = AUC(samples)

	assert.Equal(t, before, samples)
}
