package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completeElapsedCmd предназначена для запуска по расписанию (cron)
func completeElapsedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete-elapsed",
		Short: "Mark approved reservations whose window has ended as completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			deps := buildDeps(a, nil, nil)
			defer deps.closeCache()

			count, err := deps.reservationSvc.CompleteElapsed(cmd.Context())
			if err != nil {
				a.log.Error("complete-elapsed failed: %v", err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d reservation(s) completed\n", count)
			return nil
		},
	}
}
