package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/the1323/cs166-project-the033-hbai013/internal/console"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository/postgres"
	"github.com/the1323/cs166-project-the033-hbai013/migrations"
)

func migrateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			n, err := postgres.NewMigrator(a.db, migrations.FS).Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			a.log.Info("Migrations applied", "count", n)
			fmt.Fprintf(os.Stdout, "Applied %d migration(s)\n", n)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			statuses, err := postgres.NewMigrator(a.db, migrations.FS).Status(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(statuses))
			for i, s := range statuses {
				applied := "pending"
				if s.AppliedAt != nil {
					applied = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				rows[i] = []string{strconv.Itoa(s.Version), s.Name, applied}
			}
			console.PrintTable(os.Stdout, []string{"version", "name", "applied_at"}, rows)
			return nil
		}),
	})

	return cmd
}
