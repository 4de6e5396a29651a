// Command reqllm-cli is a thin command-line front end over the reqllm
// client library: generate/stream text, request embeddings, and list the
// bundled model catalog. It is a convenience wrapper, not part of the
// library's public API surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ferro-labs/reqllm-go/internal/logging"
	"github.com/ferro-labs/reqllm-go/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "reqllm-cli",
		Short:         "Generate, stream, and embed against reqllm's provider catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, os.Getenv("LOG_FORMAT"))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newStreamCmd())
	root.AddCommand(newEmbedCmd())
	root.AddCommand(newModelsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the reqllm-cli version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}
