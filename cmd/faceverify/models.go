package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faceverify/faceverify/internal/config"
	"github.com/faceverify/faceverify/internal/dataset"
)

func newModelsCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Report whether the configured ArcFace model is on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			model, err := dataset.CheckModel(cfg.ArcFaceModelPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Provider:        %s\n", cfg.ProviderType)
			if !model.Present {
				fmt.Fprintf(out, "ArcFace model:   missing (%s)\n", model.Path)
				fmt.Fprintln(out, "Place the buffalo_l recognition model there or set ARCFACE_MODEL_PATH.")
				return nil
			}
			fmt.Fprintf(out, "ArcFace model:   %s (%.1f MB)\n", model.Path, float64(model.Size)/(1024*1024))
			return nil
		},
	}
}
