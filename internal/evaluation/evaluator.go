// Package evaluation scores labelled image pairs against a verifier and
// computes accuracy, TAR/FAR and ROC AUC over the results.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/faceverify/faceverify/internal/domain"
	"github.com/faceverify/faceverify/internal/pairs"
)

var (
	ErrNoSamples       = errors.New("no valid pairs were scored")
	ErrScoreOutOfRange = errors.New("score outside [0, 100]")
)

// Scorer returns the similarity score, in percent, of two image files
type Scorer interface {
	Score(ctx context.Context, image1Path, image2Path string) (float64, error)
}

// ProgressFunc is called after every pair with the number processed so far
type ProgressFunc func(done, total int)

type Evaluator struct {
	scorer           Scorer
	logger           *slog.Logger
	defaultThreshold float64
	maxPairs         int
	progress         ProgressFunc
}

func NewEvaluator(scorer Scorer, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		scorer:           scorer,
		logger:           logger,
		defaultThreshold: DefaultThreshold,
	}
}

func (e *Evaluator) WithDefaultThreshold(threshold float64) *Evaluator {
	e.defaultThreshold = threshold
	return e
}

// WithMaxPairs evaluates at most n pairs, half of each label. n <= 0 means all.
func (e *Evaluator) WithMaxPairs(n int) *Evaluator {
	e.maxPairs = n
	return e
}

func (e *Evaluator) WithProgress(fn ProgressFunc) *Evaluator {
	e.progress = fn
	return e
}

// Evaluate scores every pair whose images exist under imagesDir. Missing
// images and scorer failures are counted and skipped; only ctx cancellation
// stops the run early.
func (e *Evaluator) Evaluate(ctx context.Context, dataset string, pairList []domain.Pair, imagesDir string) (*domain.EvaluationResult, error) {
	pairList = pairs.Limit(pairList, e.maxPairs)

	same, different := pairs.Count(pairList)
	e.logger.Info("evaluating dataset",
		slog.String("dataset", dataset),
		slog.Int("pairs", len(pairList)),
		slog.Int("same", same),
		slog.Int("different", different),
	)

	samples := make([]domain.Sample, 0, len(pairList))
	failed := 0

	for i, pair := range pairList {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", dataset, err)
		}

		score, err := e.scorePair(ctx, pair, imagesDir)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("evaluate %s: %w", dataset, ctx.Err())
			}
			failed++
			e.logger.Warn("pair skipped",
				slog.String("dataset", dataset),
				slog.String("img1", pair.Image1),
				slog.String("img2", pair.Image2),
				slog.Any("error", err),
			)
		} else {
			samples = append(samples, domain.Sample{Label: pair.Label, Score: score})
		}

		if e.progress != nil {
			e.progress(i+1, len(pairList))
		}
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("evaluate %s: %w (%d failed)", dataset, ErrNoSamples, failed)
	}

	optimal := OptimalThreshold(samples, e.defaultThreshold)

	return &domain.EvaluationResult{
		Dataset:          dataset,
		TotalPairs:       len(pairList),
		EvaluatedPairs:   len(samples),
		FailedPairs:      failed,
		AUC:              round(AUC(samples), 4),
		OptimalThreshold: MetricsAt(samples, optimal),
		DefaultThreshold: MetricsAt(samples, e.defaultThreshold),
	}, nil
}

func (e *Evaluator) scorePair(ctx context.Context, pair domain.Pair, imagesDir string) (float64, error) {
	path1 := filepath.Join(imagesDir, filepath.FromSlash(pair.Image1))
	path2 := filepath.Join(imagesDir, filepath.FromSlash(pair.Image2))

	for _, p := range []string{path1, path2} {
		if _, err := os.Stat(p); err != nil {
			return 0, fmt.Errorf("missing image %s: %w", p, err)
		}
	}

	score, err := e.scorer.Score(ctx, path1, path2)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(score) || score < 0 || score > 100 {
		return 0, fmt.Errorf("%w: %v", ErrScoreOutOfRange, score)
	}
	return score, nil
}
