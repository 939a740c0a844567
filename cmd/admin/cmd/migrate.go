package cmd

import (
	"commission-tracker/internal/app"
	postgres_repo "commission-tracker/internal/repository/commission/db/postgres"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.OpenDB(cfg)
		if err != nil {
			return err
		}
		defer db.Master.Close()

		return postgres_repo.Migrate(cmd.Context(), db, &zlog.Logger)
	},
}
