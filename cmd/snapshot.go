package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/renderer"
	"github.com/tosih/a2l-calreader/pkg/snapshot"
)

func newSnapshotCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Work with stored decode passes",
	}
	cmd.AddCommand(newSnapshotListCommand(env))
	cmd.AddCommand(newSnapshotShowCommand(env))
	return cmd
}

func openSnapshots(env *environment) (*snapshot.DB, error) {
	db, err := snapshot.Open(env.Config.SnapshotDB, env.Logger)
	if err != nil {
		return nil, fmt.Errorf("snapshot database %s: %w", env.Config.SnapshotDB, err)
	}
	return db, nil
}

func newSnapshotListCommand(env *environment) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openSnapshots(env)
			if err != nil {
				return err
			}
			defer db.Close()
			passes, err := db.Passes()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), passes)
			}

			data := [][]string{{"ID", "Started", "EPK", "Parameters", "Image", "Symbols"}}
			for _, p := range passes {
				total := 0
				for _, category := range models.StoreCategories {
					total += p.Counts[category]
				}
				data = append(data, []string{
					p.ID,
					p.Started.Format("2006-01-02 15:04:05"),
					p.EPK.String(),
					fmt.Sprintf("%d", total),
					p.Image,
					p.Symbols,
				})
			}
			pterm.DefaultTable.WithHasHeader().WithData(data).Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, JSONOptionName, false, "Print the passes as JSON")
	return cmd
}

func newSnapshotShowCommand(env *environment) *cobra.Command {
	var filter, mode string
	cmd := &cobra.Command{
		Use:   "show <pass id>",
		Short: "Display the parameters of a stored pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openSnapshots(env)
			if err != nil {
				return err
			}
			defer db.Close()
			s, err := db.Load(args[0])
			if err != nil {
				return err
			}
			renderer.DisplayStore(s, filter, mode)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, FilterOptionName, "", "Only show parameters whose name contains this text")
	cmd.Flags().StringVar(&mode, ModeOptionName, renderer.ModeValues, "Display mode")
	return cmd
}
