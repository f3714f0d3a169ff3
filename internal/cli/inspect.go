package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/pkg/core/fsm"
	"github.com/matzehuels/stateviz/pkg/errors"
)

// inspectCommand creates the inspect command, which prints a machine's
// states with their hop distances and link counts.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		from  string
		check bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [registry] [machine]",
		Short: "Print the states of a machine",
		Long: `Print the states of a machine with their hop distance, incoming, outgoing
and mutual link counts.

Distances are measured from the initial state unless --from names another
state. --check also verifies the link invariants: mutual links reference
each other, and every link sits in exactly one collection of each endpoint.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.loadRegistry(args[0])
			if err != nil {
				return err
			}
			machine := machineArg(reg, args, 1)
			g, err := reg.Build(machine)
			if err != nil {
				return err
			}
			if from == "" {
				from = g.InitialState
			} else if _, ok := g.Node(from); !ok {
				return errors.New(errors.ErrCodeStateNotFound, "state %s not found in %s", from, machine)
			}

			fmt.Fprintln(cmd.OutOrStdout(), StyleTitle.Render(machine))
			fmt.Fprintln(cmd.OutOrStdout(), stateTable(g, from))
			printStats(g.NodeCount(), g.LinkCount(), g.MutualPairs(), false)

			if check {
				if err := g.Validate(); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidMachine, err, "machine %s", machine)
				}
				printSuccess("Link invariants hold")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "measure distances from this state (default: initial state)")
	cmd.Flags().BoolVar(&check, "check", false, "verify the link invariants")

	return cmd
}

// stateTable renders every state of g, nearest to from first.
func stateTable(g *fsm.Graph, from string) string {
	dist := g.Distances()
	rows := [][]string{}
	for _, s := range orderStatesFrom(g, from) {
		rows = append(rows, []string{
			s.ID,
			formatHops(dist.Distance(from, s.ID)),
			fmt.Sprint(len(s.Incoming)),
			fmt.Sprint(len(s.Outgoing)),
			fmt.Sprint(len(s.Mutual)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("State", "Hops", "In", "Out", "Mutual").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(rows) && col == 0 && rows[row][0] == from {
				return listHoverStyle
			}
			return listNormalStyle
		}).
		Render()
}
