package main

import (
	"github.com/spf13/cobra"

	"github.com/idjuv/agenda-service/internal/infra/storage/migrations"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			applied, err := migrations.Run(cmd.Context(), a.db, a.log)
			if err != nil {
				a.log.Error("Migration failed after %d applied: %v", applied, err)
				return err
			}

			a.log.Info("Migrations finished: %d applied", applied)
			return nil
		},
	}
}
