package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/faceverify/faceverify/internal/pairs"
)

func newPairsCmd(_ *rootOptions) *cobra.Command {
	var (
		format  string
		asJSON  bool
		showAll bool
	)

	cmd := &cobra.Command{
		Use:   "pairs PAIRS_FILE",
		Short: "Parse a pair file and audit its labels against the file names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pairs.ParseFormat(format)
			if err != nil {
				return err
			}

			pairList, detected, err := pairs.ParseFile(args[0], f)
			if err != nil {
				return err
			}

			same, different := pairs.Count(pairList)
			report := pairs.Audit(pairList)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "    ")
				return enc.Encode(map[string]interface{}{
					"format":    detected,
					"pairs":     len(pairList),
					"same":      same,
					"different": different,
					"audit":     report,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Format:          %s\n", detected)
			fmt.Fprintf(out, "Pairs:           %d (%d same, %d different)\n", len(pairList), same, different)
			fmt.Fprintf(out, "Suspect labels:  %d of %d\n", report.Suspect, report.Checked)

			if len(report.Examples) > 0 {
				w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "\nLABEL\tIMAGE 1\tIMAGE 2")
				for _, s := range report.Examples {
					fmt.Fprintf(w, "%d\t%s\t%s\n", s.Pair.Label, s.Pair.Image1, s.Pair.Image2)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			if showAll {
				w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "\nLABEL\tIMAGE 1\tIMAGE 2")
				for _, p := range pairList {
					fmt.Fprintf(w, "%d\t%s\t%s\n", p.Label, p.Image1, p.Image2)
				}
				return w.Flush()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "Pair file format: auto, labelled or lfw")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVar(&showAll, "list", false, "Print every pair")

	return cmd
}
