package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/faceverify/faceverify/internal/dataset"
)

func newDownloadCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "download [dataset...]",
		Short: "Download and extract datasets that have public mirrors",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := root.catalog()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"lfw"}
			}

			downloader := dataset.NewDownloader(root.logger(cmd), cmd.ErrOrStderr())
			for _, name := range args {
				ds, err := catalog.Get(name)
				if err != nil {
					return err
				}
				if err := downloader.Download(cmd.Context(), catalog, ds); err != nil {
					return fmt.Errorf("%w (download manually into %s)", err, ds.Dir)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s ready in %s\n", ds.Name, ds.Dir)
			}
			return nil
		},
	}
}

func newDatasetsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Inspect the dataset catalogue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which datasets are present on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := root.catalog()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "DATASET\tSTATUS\tFILES\tPAIRS FILE\tDIR")
			for _, ds := range catalog.All() {
				st, err := dataset.Check(ds)
				if err != nil {
					return err
				}

				status := "missing"
				if st.Present {
					status = "found"
				}
				pairsStatus := "missing"
				if st.PairsFound {
					pairsStatus = "found"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", ds.Name, status, st.Files, pairsStatus, ds.Dir)
			}
			return w.Flush()
		},
	})

	return cmd
}
