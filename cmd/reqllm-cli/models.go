package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ferro-labs/reqllm-go"
)

func newModelsCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models in the bundled catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := reqllm.Default().Catalog()
			var models []catalogEntry
			if provider != "" {
				for _, m := range cat.List(provider) {
					models = append(models, catalogEntry{m.Provider, m.ID, m.OperationKind()})
				}
			} else {
				for _, m := range cat.All() {
					models = append(models, catalogEntry{m.Provider, m.ID, m.OperationKind()})
				}
			}
			sort.Slice(models, func(i, j int) bool {
				if models[i].provider != models[j].provider {
					return models[i].provider < models[j].provider
				}
				return models[i].id < models[j].id
			})

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(tw, "PROVIDER\tMODEL\tKIND")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.provider, m.id, m.kind)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "filter to a single provider")
	return cmd
}

type catalogEntry struct {
	provider, id, kind string
}
