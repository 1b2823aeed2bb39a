package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tosih/a2l-calreader/pkg/calibration"
	"github.com/tosih/a2l-calreader/pkg/config"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/web"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
	OpenOptionName    = "open"
)

func newServeCommand(env *environment) *cobra.Command {
	var in inputs
	var address, against string
	var port int
	var open bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a decoded memory image over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, img, err := in.load(cmd, env)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			res, err := runPass(ctx, env, model, img, 0)
			if err != nil {
				return err
			}
			plan, err := calibration.Plan(model)
			if err != nil {
				return err
			}

			serverConfig := &config.ServerConfig{Address: config.DefaultServerAddress, Port: config.DefaultServerPort}
			if env.Config.Server != nil {
				*serverConfig = *env.Config.Server
			}
			if address != "" {
				serverConfig.Address = address
			}
			if port != 0 {
				serverConfig.Port = port
			}

			srv := web.NewServer(serverConfig, model, img, res, plan, env.Logger)
			if against != "" {
				other, err := image.LoadFile(against, in.base, image.WithEncoding(in.encoding))
				if err != nil {
					return err
				}
				baseline, err := runPass(ctx, env, model, other, 0)
				if err != nil {
					return err
				}
				srv.Baseline = baseline.Store
			}
			return srv.Start(open)
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&address, AddressOptionName, "", "Address to bind. Default from config")
	cmd.Flags().IntVar(&port, PortOptionName, 0, "Port to bind. Default from config")
	cmd.Flags().StringVar(&against, AgainstOptionName, "", "Baseline memory image served by the compare endpoint")
	cmd.Flags().BoolVar(&open, OpenOptionName, false, "Open the API in the default browser")
	return cmd
}
