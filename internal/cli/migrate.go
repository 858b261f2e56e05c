package cli

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}

			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, logger, false)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := db.Close(); cerr != nil {
					err = multierror.Append(err, cerr).ErrorOrNil()
				}
			}()

			if direction == "down" {
				err = db.MigrateDown()
			} else {
				err = db.Migrate()
			}
			if err != nil {
				return err
			}

			version, dirty, ok, err := db.MigrationVersion()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migration version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
}
