package cmd

import (
	"errors"
	"fmt"
	"os"

	"commission-tracker/internal/app"
	user_repo "commission-tracker/internal/repository/user/db/postgres"
	auth_uc "commission-tracker/internal/usecase/auth"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

var (
	username string
	password string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users who can edit commissions",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}
		if username == "" || password == "" {
			return errors.New("--username and --password (or ADMIN_PASSWORD) are required")
		}

		db, err := app.OpenDB(cfg)
		if err != nil {
			return err
		}
		defer db.Master.Close()

		users := user_repo.NewUsersRepository(db, cfg.DefaultRetryStrategy())
		auth := auth_uc.NewAuthUsecase(users, nil, cfg.Session.KeyPrefix, cfg.Session.TTL, &zlog.Logger)

		created, err := auth.CreateUser(cmd.Context(), username, password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", created.Username, created.ID)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&username, "username", "", "login name")
	userAddCmd.Flags().StringVar(&password, "password", "", "password (defaults to ADMIN_PASSWORD)")

	userCmd.AddCommand(userAddCmd)
}
