package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faceverify/faceverify/internal/client"
)

func newVerifyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify IMAGE1 IMAGE2",
		Short: "Compare two images and print the verdict",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var resp *client.VerifyResponse
			if root.local {
				verifier, cleanup, err := root.localVerifier(ctx)
				if err != nil {
					return err
				}
				defer cleanup()

				image1, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				image2, err := os.ReadFile(args[1])
				if err != nil {
					return err
				}

				verdict, err := verifier.Verify(ctx, image1, image2)
				if err != nil {
					return err
				}
				resp = &client.VerifyResponse{
					SimilarityScore: verdict.SimilarityScore,
					IsSamePerson:    verdict.IsSamePerson,
					Confidence:      string(verdict.Confidence),
					Model:           verdict.Model,
				}
			} else {
				var err error
				resp, err = client.New(root.serverURL, root.timeout).Verify(ctx, args[0], args[1])
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Similarity score: %.2f%%\n", resp.SimilarityScore)
			fmt.Fprintf(out, "Same person:      %t\n", resp.IsSamePerson)
			fmt.Fprintf(out, "Confidence:       %s\n", resp.Confidence)
			if resp.Model != "" {
				fmt.Fprintf(out, "Model:            %s\n", resp.Model)
			}
			return nil
		},
	}
}
