package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ferro-labs/reqllm-go"
)

func newEmbedCmd() *cobra.Command {
	var model, apiKey, baseURL, encodingFormat string
	var dimensions int

	cmd := &cobra.Command{
		Use:   "embed [text]",
		Short: "Compute an embedding vector for text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := reqllm.EmbedOptions{APIKey: apiKey, BaseURL: baseURL, EncodingFormat: encodingFormat}
			if dimensions > 0 {
				opts.Dimensions = &dimensions
			}

			resp, err := reqllm.Embed(context.Background(), model, args[0], opts)
			if err != nil {
				return err
			}
			out, err := json.Marshal(resp.Embedding)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "embedding model spec, \"provider:id\" (required)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (overrides config/env)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "override the provider's base URL")
	cmd.Flags().StringVar(&encodingFormat, "encoding-format", "", "requested embedding encoding format")
	cmd.Flags().IntVar(&dimensions, "dimensions", 0, "requested embedding dimensionality")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
