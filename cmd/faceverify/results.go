package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/faceverify/faceverify/internal/evaluation"
)

func newResultsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show saved evaluation results",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show [dataset...]",
			Short: "Print the report for datasets in the results file",
			RunE: func(cmd *cobra.Command, args []string) error {
				results, err := evaluation.LoadResults(root.resultsPath)
				if err != nil {
					return err
				}
				if len(args) == 0 {
					args = results.Datasets()
				}
				if len(args) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No results in %s\n", root.resultsPath)
					return nil
				}

				for _, name := range args {
					r, ok := results[name]
					if !ok {
						return fmt.Errorf("no results for %s in %s", name, root.resultsPath)
					}
					if err := evaluation.WriteReport(cmd.OutOrStdout(), r); err != nil {
						return err
					}
					if r.AUC > 0 && r.AUC < 0.5 {
						fmt.Fprintln(cmd.OutOrStdout(), "\nAUC below 0.5: labels are probably inverted.")
					}
				}
				return nil
			},
		},
		newResultsListCmd(root),
	)

	return cmd
}

func newResultsListCmd(root *rootOptions) *cobra.Command {
	var (
		dataset string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent evaluation runs stored in PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.dbURL == "" {
				return errors.New("--db or DATABASE_URL is required")
			}

			runs, closeRuns, err := openRunRepository(cmd.Context(), root.dbURL)
			if err != nil {
				return err
			}
			defer closeRuns()

			list, err := runs.ListRecent(cmd.Context(), dataset, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tDATASET\tPAIRS\tAUC\tACCURACY\tTHRESHOLD\tCREATED")
			for _, run := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%.2f%%\t%.2f%%\t%s\n",
					run.ID, run.Dataset, run.Result.EvaluatedPairs, run.Result.AUC,
					run.Result.OptimalThreshold.Accuracy, run.Result.OptimalThreshold.Threshold,
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "Only runs for this dataset")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs")

	return cmd
}
