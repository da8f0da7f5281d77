package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List upstream models and the one that would be selected",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, sel, err := a.aiClient().Models(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDISPLAY NAME\tGENERATE\tMETHODS")
			for _, m := range list {
				marker := ""
				if m.Name == sel.Name {
					marker = " *"
				}
				generate := "yes"
				if !m.SupportsGenerate() {
					generate = "no"
				}
				fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n",
					m.Name, marker, m.DisplayName, generate, strings.Join(m.SupportedGenerationMethods, ","))
			}
			tw.Flush()

			fmt.Fprintf(cmd.OutOrStdout(), "\nSelected: %s (%s)\n", sel.Name, sel.Source)
			return nil
		},
	}
}
