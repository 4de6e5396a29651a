package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ferro-labs/reqllm-go"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/options"
)

func newStreamCmd() *cobra.Command {
	var model, systemPrompt, apiKey, baseURL, fixture string
	var maxTokens int

	cmd := &cobra.Command{
		Use:   "stream [prompt]",
		Short: "Stream a completion, printing text chunks as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options.Options{SystemPrompt: systemPrompt, APIKey: apiKey, BaseURL: baseURL, Fixture: fixture}
			if maxTokens > 0 {
				opts.MaxTokens = &maxTokens
			}

			resp, err := reqllm.StreamText(context.Background(), model, args[0], opts)
			if err != nil {
				return err
			}
			for c := range resp.Chunks() {
				if c.Kind == chunk.Text {
					fmt.Fprint(cmd.OutOrStdout(), c.Text)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout())
			if resp.Err() != nil {
				return resp.Err()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model spec, \"provider:id\" (required)")
	cmd.Flags().StringVar(&systemPrompt, "system", "", "system prompt")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (overrides config/env)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "override the provider's base URL")
	cmd.Flags().StringVar(&fixture, "fixture", "", "record to or replay from a named fixture")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum tokens to generate")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
