package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ownbox/internal/walk"
)

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List walkthrough scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			scenarios := walk.Scenarios()

			if flags.jsonMode {
				list := make([]map[string]string, len(scenarios))
				for i, sc := range scenarios {
					list[i] = map[string]string{"name": sc.Name, "description": sc.Description}
				}
				return printJSON(out, list)
			}
			for _, sc := range scenarios {
				fmt.Fprintf(out, "%-18s %s\n", sc.Name, sc.Description)
			}
			return nil
		},
	}
}
