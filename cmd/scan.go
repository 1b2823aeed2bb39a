package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tosih/a2l-calreader/pkg/calibration"
	"github.com/tosih/a2l-calreader/pkg/scanner"
)

func newScanCommand(env *environment) *cobra.Command {
	var in inputs
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Look for table-like data in image bytes no symbol describes",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, img, err := in.load(cmd, env)
			if err != nil {
				return err
			}
			plan, err := calibration.Plan(model)
			if err != nil {
				return err
			}
			results := scanner.Scan(img, plan)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			scanner.Display(scanner.Gaps(img.Sections(), plan), results)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&asJSON, JSONOptionName, false, "Print the results as JSON")
	return cmd
}
