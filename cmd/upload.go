package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/a2l-calreader/pkg/calibration"
	"github.com/tosih/a2l-calreader/pkg/command"
	"github.com/tosih/a2l-calreader/pkg/config"
	"github.com/tosih/a2l-calreader/pkg/image"
)

const (
	RemoteAddressOptionName = "remote-address"
	RemotePortOptionName    = "remote-port"
)

func newUploadCommand(env *environment) *cobra.Command {
	var in inputs
	var address string
	var port int
	var save bool
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Read the planned blocks from a served image and decode them",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := in.model(cmd, env)
			if err != nil {
				return err
			}
			if env.Config.Remote == nil {
				env.Config.Remote = &config.ServerConfig{Address: config.DefaultRemoteAddress, Port: config.DefaultRemotePort}
			}
			if address != "" {
				env.Config.Remote.Address = address
			}
			if port != 0 {
				env.Config.Remote.Port = port
			}
			client := command.NewApiClient(env.Config)

			ctx := commandContext(cmd)
			spinner, _ := pterm.DefaultSpinner.Start("Uploading from " + client.ApiPrefix)
			img, plan, err := calibration.Upload(ctx, client, model, env.Logger, image.WithEncoding(in.encoding))
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}
			spinner.Success("Upload completed")

			res, err := runPass(ctx, env, model, img, 0)
			if err != nil {
				return err
			}
			if save {
				if err := saveSnapshot(env, res, model, client.ApiPrefix, in.symbols); err != nil {
					return err
				}
			}
			pterm.Success.Printf("Pass %s read %d blocks and decoded %d parameters, EPK %s\n",
				res.ID, len(plan), res.Store.Total(), res.EPK)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.symbols, SymbolsOptionName, "", "Symbol database file. Default from config")
	cmd.Flags().StringVar(&in.encoding, EncodingOptionName, "", "ASCII encoding. Default from config")
	cmd.Flags().StringVar(&address, RemoteAddressOptionName, "", "Address of the calibration API. Default from config")
	cmd.Flags().IntVar(&port, RemotePortOptionName, 0, "Port of the calibration API. Default from config")
	cmd.Flags().BoolVar(&save, SaveOptionName, true, "Store the pass in the snapshot database")
	return cmd
}
