package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "agenda-service",
		Short: "IDJUV agenda service - reservas de espaços esportivos",
		Long:  `Serviço de agendamento dos espaços do IDJUV: solicitação, verificação de conflito e aprovação.`,
		// Без подкоманды запускаем HTTP сервер
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "Path to config.toml (CONFIG_PATH overrides)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(completeElapsedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
