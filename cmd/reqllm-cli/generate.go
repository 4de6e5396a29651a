package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ferro-labs/reqllm-go"
	"github.com/ferro-labs/reqllm-go/options"
)

func newGenerateCmd() *cobra.Command {
	var model, systemPrompt, apiKey, baseURL, fixture string
	var maxTokens int
	var temperature float64

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate a single buffered completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options.Options{
				SystemPrompt: systemPrompt,
				APIKey:       apiKey,
				BaseURL:      baseURL,
				Fixture:      fixture,
			}
			if maxTokens > 0 {
				opts.MaxTokens = &maxTokens
			}
			if temperature > 0 {
				opts.Temperature = &temperature
			}

			resp, err := reqllm.GenerateText(context.Background(), model, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model spec, \"provider:id\" (required)")
	cmd.Flags().StringVar(&systemPrompt, "system", "", "system prompt")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (overrides config/env)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "override the provider's base URL")
	cmd.Flags().StringVar(&fixture, "fixture", "", "record to or replay from a named fixture")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
