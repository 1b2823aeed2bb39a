package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/a2l-calreader/pkg/blocks"
	"github.com/tosih/a2l-calreader/pkg/calibration"
)

func newPlanCommand(env *environment) *cobra.Command {
	var in inputs
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the memory blocks an upload reads",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := in.model(cmd, env)
			if err != nil {
				return err
			}
			plan, err := calibration.Plan(model)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), plan)
			}

			data := [][]string{{"Address", "Length", "Members", "First", "Last"}}
			for _, b := range plan {
				data = append(data, []string{
					fmt.Sprintf("0x%08X", b.Address),
					fmt.Sprintf("%d", b.Length),
					fmt.Sprintf("%d", len(b.Members)),
					b.Members[0].Name,
					b.Members[len(b.Members)-1].Name,
				})
			}
			pterm.DefaultTable.WithHasHeader().WithData(data).Render()
			pterm.Info.Printf("%d blocks, %d bytes\n", len(plan), blocks.Covered(plan))
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&asJSON, JSONOptionName, false, "Print the plan as JSON")
	return cmd
}
