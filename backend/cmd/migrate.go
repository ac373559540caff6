package cmd

import (
	"coursehub/backend/config"
	"coursehub/backend/utils"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cmd)

		db, err := utils.InitDB(cfg)
		if err != nil {
			return err
		}
		if err := utils.Migrate(db); err != nil {
			return err
		}
		logger.Println("schema is up to date")
		return nil
	},
}
