package cmd

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			if err := rt.migrate(); err != nil {
				return eris.Wrap(err, "AutoMigrate failed")
			}
			rt.log.Info().Msg("AutoMigrate successful")
			return nil
		},
	}
}
