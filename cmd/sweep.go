package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/DhavalSuthar-24/padel/internal/match"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete joinable matches whose start time has passed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			sweeper := match.NewSweeper(match.NewGormMatchRepository(rt.db), rt.loc, rt.log)
			deleted, err := sweeper.Sweep(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			cmd.Printf("deleted %d expired matches\n", deleted)
			return nil
		},
	}
}
