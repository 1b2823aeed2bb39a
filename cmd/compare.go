package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tosih/a2l-calreader/pkg/compare"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/snapshot"
	"github.com/tosih/a2l-calreader/pkg/store"
)

const (
	AgainstOptionName     = "against"
	SnapshotOptionName    = "snapshot"
	ChangedOnlyOptionName = "changed-only"
)

func newCompareCommand(env *environment) *cobra.Command {
	var in inputs
	var against, snapshotID, filter string
	var changedOnly, asJSON bool
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the parameters of a memory image with another image or a stored pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (against == "") == (snapshotID == "") {
				return fmt.Errorf("exactly one of --%s and --%s is required", AgainstOptionName, SnapshotOptionName)
			}
			model, img, err := in.load(cmd, env)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			res, err := runPass(ctx, env, model, img, 0)
			if err != nil {
				return err
			}

			var baseline *store.Store
			label := against
			if against != "" {
				other, err := image.LoadFile(against, in.base, image.WithEncoding(in.encoding))
				if err != nil {
					return err
				}
				otherRes, err := runPass(ctx, env, model, other, 0)
				if err != nil {
					return err
				}
				baseline = otherRes.Store
			} else {
				db, err := snapshot.Open(env.Config.SnapshotDB, env.Logger)
				if err != nil {
					return err
				}
				defer db.Close()
				if baseline, err = db.Load(snapshotID); err != nil {
					return err
				}
				label = "pass " + snapshotID
			}

			changes := compare.Stores(baseline, res.Store)
			if changedOnly {
				changes = compare.Filter(changes, filter, compare.Changed, compare.Added, compare.Removed)
			} else {
				changes = compare.Filter(changes, filter)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), changes)
			}
			compare.Display(changes, label, in.image)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&against, AgainstOptionName, "", "Baseline memory image, decoded with the same symbols")
	cmd.Flags().StringVar(&snapshotID, SnapshotOptionName, "", "Baseline pass id from the snapshot database")
	cmd.Flags().StringVar(&filter, FilterOptionName, "", "Only compare parameters whose name contains this text")
	cmd.Flags().BoolVar(&changedOnly, ChangedOnlyOptionName, false, "Hide unchanged parameters")
	cmd.Flags().BoolVar(&asJSON, JSONOptionName, false, "Print the changes as JSON")
	return cmd
}
