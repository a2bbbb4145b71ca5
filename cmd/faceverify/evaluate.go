package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/faceverify/faceverify/internal/database"
	"github.com/faceverify/faceverify/internal/dataset"
	"github.com/faceverify/faceverify/internal/domain"
	"github.com/faceverify/faceverify/internal/evaluation"
	"github.com/faceverify/faceverify/internal/pairs"
	"github.com/faceverify/faceverify/internal/repository"
)

type evaluateOptions struct {
	all        bool
	pairsFile  string
	imagesDir  string
	format     string
	maxPairs   int
	threshold  float64
	noProgress bool
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate [dataset...]",
		Short: "Evaluate verification accuracy on one or more datasets",
		Example: `  faceverify evaluate calfw cplfw
  faceverify evaluate --all --max-pairs 200
  faceverify evaluate custom --pairs-file pairs.txt --images-dir ./images --format labelled`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.all && len(args) == 0 {
				return errors.New("name at least one dataset or pass --all")
			}
			if opts.pairsFile != "" && len(args) != 1 {
				return errors.New("--pairs-file needs exactly one dataset name")
			}
			return runEvaluate(cmd, root, opts, args)
		},
	}

	addEvaluateFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.all, "all", false, "Evaluate every dataset in the catalogue")
	cmd.Flags().StringVar(&opts.pairsFile, "pairs-file", "", "Pair file, overriding the catalogue")
	cmd.Flags().StringVar(&opts.imagesDir, "images-dir", "", "Images directory, overriding the catalogue")
	cmd.Flags().StringVar(&opts.format, "format", "auto", "Pair file format: auto, labelled or lfw")

	return cmd
}

// newLFWCmd is the LFW benchmark with its pairs.txt protocol
func newLFWCmd(root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{format: string(pairs.FormatLFW)}

	cmd := &cobra.Command{
		Use:   "lfw",
		Short: "Evaluate on LFW using pairs.txt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, root, opts, []string{"lfw"})
		},
	}

	addEvaluateFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.pairsFile, "pairs-file", "", "LFW pairs.txt, overriding the catalogue")
	cmd.Flags().StringVar(&opts.imagesDir, "images-dir", "", "LFW images directory, overriding the catalogue")

	return cmd
}

func addEvaluateFlags(cmd *cobra.Command, opts *evaluateOptions) {
	cmd.Flags().IntVar(&opts.maxPairs, "max-pairs", 0, "Evaluate at most N pairs, half same and half different (0 = all)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", evaluation.DefaultThreshold, "Reference threshold in percent")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Do not draw a progress bar")
}

func runEvaluate(cmd *cobra.Command, root *rootOptions, opts *evaluateOptions, names []string) error {
	ctx := cmd.Context()
	logger := root.logger(cmd)

	targets, err := resolveTargets(root, opts, names)
	if err != nil {
		return err
	}

	scorer, cleanup, err := root.scorer(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, closeRuns, err := openRunRepository(ctx, root.dbURL)
	if err != nil {
		return err
	}
	defer closeRuns()

	evaluated := 0
	for _, ds := range targets {
		if _, err := os.Stat(ds.PairsFile); err != nil {
			logger.Warn("pairs file not found, skipping dataset",
				slog.String("dataset", ds.Name),
				slog.String("pairs_file", ds.PairsFile),
			)
			continue
		}

		result, err := evaluateDataset(ctx, cmd, logger, scorer, ds, opts)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			logger.Error("evaluation failed", slog.String("dataset", ds.Name), slog.Any("error", err))
			continue
		}
		evaluated++

		if err := evaluation.WriteReport(cmd.OutOrStdout(), *result); err != nil {
			return err
		}
		if err := evaluation.MergeResult(root.resultsPath, *result); err != nil {
			return err
		}
		logger.Info("results saved", slog.String("file", root.resultsPath))

		if runs != nil {
			run := &domain.EvaluationRun{Result: *result}
			if err := runs.Create(ctx, run); err != nil {
				logger.Error("store evaluation run", slog.Any("error", err))
			} else {
				logger.Info("evaluation run stored", slog.String("id", run.ID.String()))
			}
		}
	}

	if evaluated == 0 {
		return errors.New("no dataset was evaluated")
	}
	return nil
}

func resolveTargets(root *rootOptions, opts *evaluateOptions, names []string) ([]dataset.Dataset, error) {
	format, err := pairs.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}

	if opts.pairsFile != "" {
		ds := dataset.Dataset{Name: names[0], PairsFile: opts.pairsFile, ImagesDir: opts.imagesDir, Format: format}
		if ds.ImagesDir == "" {
			catalog, err := root.catalog()
			if err != nil {
				return nil, err
			}
			known, err := catalog.Get(names[0])
			if err != nil {
				return nil, fmt.Errorf("%w; pass --images-dir", err)
			}
			ds.ImagesDir = known.ImagesDir
		}
		return []dataset.Dataset{ds}, nil
	}

	catalog, err := root.catalog()
	if err != nil {
		return nil, err
	}

	if opts.all {
		return catalog.All(), nil
	}

	targets := make([]dataset.Dataset, 0, len(names))
	for _, name := range names {
		ds, err := catalog.Get(name)
		if err != nil {
			return nil, err
		}
		if opts.imagesDir != "" {
			ds.ImagesDir = opts.imagesDir
		}
		if format != pairs.FormatAuto {
			ds.Format = format
		}
		targets = append(targets, ds)
	}
	return targets, nil
}

func evaluateDataset(
	ctx context.Context,
	cmd *cobra.Command,
	logger *slog.Logger,
	scorer evaluation.Scorer,
	ds dataset.Dataset,
	opts *evaluateOptions,
) (*domain.EvaluationResult, error) {
	pairList, format, err := pairs.ParseFile(ds.PairsFile, ds.Format)
	if err != nil {
		return nil, err
	}

	if format == pairs.FormatLabelled {
		reportAudit(logger, ds.Name, pairs.Audit(pairList))
	}

	evaluator := evaluation.NewEvaluator(scorer, logger).
		WithDefaultThreshold(opts.threshold).
		WithMaxPairs(opts.maxPairs)

	var progress io.Writer = cmd.ErrOrStderr()
	if opts.noProgress {
		progress = io.Discard
	}

	total := len(pairs.Limit(pairList, opts.maxPairs))
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(ds.Name),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer func() { _ = bar.Finish() }()

	evaluator.WithProgress(func(done, _ int) {
		_ = bar.Set(done)
	})

	return evaluator.Evaluate(ctx, ds.Name, pairList, ds.ImagesDir)
}

func reportAudit(logger *slog.Logger, name string, report pairs.AuditReport) {
	if report.Clean() {
		logger.Debug("pair labels agree with file names", slog.String("dataset", name), slog.Int("checked", report.Checked))
		return
	}

	logger.Warn("pairs whose label disagrees with their file names",
		slog.String("dataset", name),
		slog.Int("checked", report.Checked),
		slog.Int("suspect", report.Suspect),
	)
	for _, s := range report.Examples {
		logger.Warn("suspect pair",
			slog.String("img1", s.Pair.Image1),
			slog.String("img2", s.Pair.Image2),
			slog.Int("label", s.Pair.Label),
		)
	}
}

// openRunRepository connects to PostgreSQL when dbURL is set. Without one it
// returns a nil repository.
func openRunRepository(ctx context.Context, dbURL string) (*repository.EvaluationRunRepository, func(), error) {
	if dbURL == "" {
		return nil, func() {}, nil
	}

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(dbURL))
	if err != nil {
		return nil, nil, err
	}
	return repository.NewEvaluationRunRepository(pool), pool.Close, nil
}
