package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tosih/a2l-calreader/pkg/calibration"
)

func newEPKCommand(env *environment) *cobra.Command {
	var in inputs
	cmd := &cobra.Command{
		Use:   "epk",
		Short: "Check the EPROM identifier of a memory image",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, img, err := in.load(cmd, env)
			if err != nil {
				return err
			}
			status, err := calibration.CheckEPK(img, model)
			if err != nil {
				env.Logger.Warn("EPK not readable", zap.Error(err))
			}
			epk, _ := model.EPK()
			switch status {
			case calibration.EPKMatch:
				pterm.Success.Printf("EPK %q found at 0x%08X\n", epk.Value, epk.Address)
			case calibration.EPKMismatch:
				found, _ := img.ReadText(epk.Address, len(epk.Value))
				pterm.Warning.Printf("EPK mismatch at 0x%08X: expected %q, found %q\n", epk.Address, epk.Value, found)
			default:
				pterm.Info.Println("No EPK declared in the symbol database")
			}
			return nil
		},
	}
	in.register(cmd)
	return cmd
}
