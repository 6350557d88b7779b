package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/AchilleasB/cuidotecas/community-service/internal/adapters/repository/migrations"
)

func main() {
	_ = godotenv.Load()

	var dsn string
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply or inspect database schema migrations",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DB_CONNECTION_STRING"), "PostgreSQL connection string")

	withDB := func(run func(db *sql.DB) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return fmt.Errorf("--dsn or DB_CONNECTION_STRING is required")
			}
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			return run(db)
		}
	}

	root.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: withDB(migrations.Up)},
		&cobra.Command{Use: "down", Short: "Roll back the latest migration", RunE: withDB(migrations.Down)},
		&cobra.Command{Use: "status", Short: "Print migration status", RunE: withDB(migrations.Status)},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
