package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/a2l-calreader/pkg/calibration"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/renderer"
	"github.com/tosih/a2l-calreader/pkg/snapshot"
	"github.com/tosih/a2l-calreader/pkg/symbols"
)

const (
	ParallelOptionName = "parallel"
	ModeOptionName     = "mode"
	SaveOptionName     = "save"
	ListOptionName     = "list"
)

func runPass(ctx context.Context, env *environment, model *symbols.Model, mem image.Memory, parallel int) (*calibration.Result, error) {
	if parallel <= 0 {
		parallel = env.Config.Parallel
	}
	pass := calibration.NewPass(model, mem,
		calibration.WithLogger(env.Logger),
		calibration.WithParallel(parallel))
	return pass.Run(ctx)
}

func saveSnapshot(env *environment, res *calibration.Result, model *symbols.Model, imageName, symbolsName string) error {
	plan, err := calibration.Plan(model)
	if err != nil {
		return err
	}
	db, err := snapshot.Open(env.Config.SnapshotDB, env.Logger)
	if err != nil {
		return fmt.Errorf("snapshot database %s: %w", env.Config.SnapshotDB, err)
	}
	defer db.Close()
	return db.SavePass(res, plan, imageName, symbolsName)
}

func newDecodeCommand(env *environment) *cobra.Command {
	var in inputs
	var parallel int
	var filter, mode string
	var asJSON, save, list bool
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode every parameter of a memory image",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, img, err := in.load(cmd, env)
			if err != nil {
				return err
			}
			res, err := runPass(commandContext(cmd), env, model, img, parallel)
			if err != nil {
				return err
			}
			if save {
				if err := saveSnapshot(env, res, model, in.image, in.symbols); err != nil {
					return err
				}
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if list {
				renderer.ListParameters(res.Store, filter)
			} else {
				renderer.DisplayStore(res.Store, filter, mode)
			}
			pterm.Success.Printf("Pass %s decoded %d parameters in %s, EPK %s\n",
				res.ID, res.Store.Total(), res.Duration, res.EPK)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().IntVar(&parallel, ParallelOptionName, 0, "Decode goroutines. Default from config")
	cmd.Flags().StringVar(&filter, FilterOptionName, "", "Only show parameters whose name contains this text")
	cmd.Flags().StringVar(&mode, ModeOptionName, renderer.ModeValues,
		fmt.Sprintf("Display mode: %s, %s or %s", renderer.ModeValues, renderer.ModeHeatmap, renderer.ModeSymbols))
	cmd.Flags().BoolVar(&asJSON, JSONOptionName, false, "Print the pass as JSON")
	cmd.Flags().BoolVar(&save, SaveOptionName, false, "Store the pass in the snapshot database")
	cmd.Flags().BoolVar(&list, ListOptionName, false, "Only list the decoded parameters")
	return cmd
}
