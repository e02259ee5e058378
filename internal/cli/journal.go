package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ownbox/pkg/types"
)

func newJournalCmd() *cobra.Command {
	var (
		binding  string
		op       string
		rejected bool
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recorded ownership transitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, _, err := attachJournal()
			if err != nil {
				return err
			}
			defer journal.Detach()

			out := cmd.OutOrStdout()
			if clearAll {
				if err := journal.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "journal cleared")
				return nil
			}

			filter := map[string]any{}
			if binding != "" {
				filter[types.FilterBinding] = binding
			}
			if op != "" {
				filter[types.FilterOp] = op
			}
			if rejected {
				filter[types.FilterRejected] = true
			}
			if limit > 0 {
				filter[types.FilterLimit] = limit
			}

			transitions, err := journal.Fetch(filter)
			if err != nil {
				return fmt.Errorf("fetch transitions: %w", err)
			}

			if flags.jsonMode {
				if transitions == nil {
					transitions = []types.Transition{}
				}
				return printJSON(out, transitions)
			}
			if len(transitions) == 0 {
				fmt.Fprintln(out, "No transitions recorded.")
				return nil
			}
			for _, t := range transitions {
				line := fmt.Sprintf("%s  %-14s %-12s %-9s -> %-9s readers=%d",
					t.At.Format("15:04:05.000"), t.Binding, t.Op, t.From, t.To, t.Readers)
				if t.Rejected() {
					line = violatedStyle.Render(line + "  refused: " + t.Violation)
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "Total: %d transition(s)\n", len(transitions))
			return nil
		},
	}

	cmd.Flags().StringVar(&binding, "binding", "", "only transitions of this binding name")
	cmd.Flags().StringVar(&op, "op", "", "only transitions with this operation")
	cmd.Flags().BoolVar(&rejected, "rejected", false, "only refused operations")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of transitions")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete every recorded transition")
	return cmd
}
