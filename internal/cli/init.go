package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize ownbox configuration and journal storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The root command has already created the config directory
			// and a default config.yaml.
			journal, dataDir, err := attachJournal()
			if err != nil {
				return err
			}
			defer journal.Detach()

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, map[string]string{
					"config":  current.configDir,
					"data":    dataDir,
					"journal": journal.Path(),
				})
			}
			fmt.Fprintln(out, "ownbox initialized successfully")
			fmt.Fprintln(out, "  config: ", current.configDir)
			fmt.Fprintln(out, "  data:   ", dataDir)
			fmt.Fprintln(out, "  journal:", journal.Path())
			return nil
		},
	}
}
