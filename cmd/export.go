package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tosih/a2l-calreader/pkg/export"
)

const OutputOptionName = "output"

func newExportCommand(env *environment) *cobra.Command {
	var in inputs
	var filter, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export decoded parameters to CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, img, err := in.load(cmd, env)
			if err != nil {
				return err
			}
			res, err := runPass(commandContext(cmd), env, model, img, 0)
			if err != nil {
				return err
			}
			if output == "" {
				output = env.Config.ExportDir
			}
			_, err = export.ExportStore(res.Store, output, filter)
			return err
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&filter, FilterOptionName, "", "Only export parameters whose name contains this text")
	cmd.Flags().StringVar(&output, OutputOptionName, "", "Export directory. Default from config")
	return cmd
}
