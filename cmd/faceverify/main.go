// Command faceverify runs benchmark evaluations against the face
// verification service and manages the datasets they need.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/faceverify/faceverify/internal/client"
	"github.com/faceverify/faceverify/internal/config"
	"github.com/faceverify/faceverify/internal/dataset"
	"github.com/faceverify/faceverify/internal/evaluation"
	"github.com/faceverify/faceverify/internal/face"
	"github.com/faceverify/faceverify/internal/service"
)

const version = "0.1.0"

// rootOptions are the persistent flags shared by all subcommands
type rootOptions struct {
	serverURL   string
	timeout     time.Duration
	local       bool
	catalogPath string
	resultsPath string
	dbURL       string
	env         string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "faceverify",
		Short:         "Face verification benchmark tooling",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.serverURL, "server", "http://localhost:8000", "Face verification API base URL")
	flags.DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "Per-request timeout against the API")
	flags.BoolVar(&opts.local, "local", false, "Score in-process with the provider from PROVIDER_TYPE instead of calling the API")
	flags.StringVar(&opts.catalogPath, "datasets", "", "Dataset catalogue file (YAML/JSON/TOML); built-in LFW/CALFW/CPLFW when empty")
	flags.StringVar(&opts.resultsPath, "results", "evaluation/results_all.json", "Results file, keyed by dataset")
	flags.StringVar(&opts.dbURL, "db", os.Getenv("DATABASE_URL"), "PostgreSQL URL for evaluation run history (optional)")
	flags.StringVar(&opts.env, "env", "cli", "Logging environment: production logs JSON, development adds source")

	cmd.AddCommand(
		newEvaluateCmd(opts),
		newLFWCmd(opts),
		newVerifyCmd(opts),
		newPairsCmd(opts),
		newDownloadCmd(opts),
		newDatasetsCmd(opts),
		newModelsCmd(opts),
		newResultsCmd(opts),
	)

	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return config.NewLoggerWithWriter(cmd.ErrOrStderr(), o.env)
}

func (o *rootOptions) catalog() (*dataset.Catalog, error) {
	return dataset.LoadCatalog(o.catalogPath)
}

// scorer returns the HTTP scorer, or an in-process one with --local. The
// returned cleanup releases the in-process model.
func (o *rootOptions) scorer(ctx context.Context) (evaluation.Scorer, func(), error) {
	if !o.local {
		return evaluation.NewHTTPScorer(client.New(o.serverURL, o.timeout)), func() {}, nil
	}

	verifier, cleanup, err := o.localVerifier(ctx)
	if err != nil {
		return nil, nil, err
	}
	return evaluation.NewLocalScorer(verifier), cleanup, nil
}

func (o *rootOptions) localVerifier(ctx context.Context) (*service.VerificationService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	p, err := face.NewEmbeddingProvider(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("load face model: %w", err)
	}

	cleanup := func() {
		if closer, ok := p.(io.Closer); ok {
			_ = closer.Close()
		}
	}

	return service.NewVerificationService(p).WithThreshold(cfg.SamePersonThreshold), cleanup, nil
}
