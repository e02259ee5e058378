package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ownbox/internal/walk"
	"github.com/mesh-intelligence/ownbox/pkg/types"
)

func newWalkCmd() *cobra.Command {
	var noJournal bool

	cmd := &cobra.Command{
		Use:       "walk [scenario...]",
		Short:     "Run the ownership walkthrough",
		Long:      "Run every walkthrough scenario, or only the named ones, and print each outcome.",
		ValidArgs: walk.Names(),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			logger := current.logger
			observers := []types.Observer{logObserver(logger)}

			if current.config.GetBool(cfgKeyJournal) && !noJournal {
				journal, _, attachErr := attachJournal()
				if attachErr != nil {
					return attachErr
				}
				defer func() {
					if observeErr := journal.Err(); observeErr != nil {
						logger.Warn("journal incomplete", "error", observeErr)
					}
					err = errors.Join(err, journal.Detach())
				}()
				observers = append(observers, journal)
			}

			results, runErr := walk.Run(args, types.Tee(observers...))
			if printErr := printResults(cmd, results); printErr != nil {
				return printErr
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "do not record transitions in the journal")
	return cmd
}

func printResults(cmd *cobra.Command, results []walk.Result) error {
	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return printJSON(out, results)
	}

	for _, r := range results {
		fmt.Fprintf(out, "%s  %s\n", nameStyle.Render(r.Name), r.Summary)

		keys := make([]string, 0, len(r.Values))
		for k := range r.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(out, valueStyle.Render(fmt.Sprintf("    %s: %v", k, r.Values[k])))
		}
	}
	return nil
}
