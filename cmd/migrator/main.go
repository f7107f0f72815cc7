package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/linemk/storefront/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath         string
	migrationsPathFlag string
	steps              int
)

var rootCmd = &cobra.Command{
	Use:          "migrator",
	Short:        "Применение миграций схемы storefront",
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Применить все новые миграции",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, m, err := newMigrate()
		if err != nil {
			return err
		}
		defer m.Close()

		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("No migrations to apply")
				return nil
			}
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Println("Migrations applied successfully")

		return printTables(cfg.Database)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Откатить последние миграции (--steps, по умолчанию 1)",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, m, err := newMigrate()
		if err != nil {
			return err
		}
		defer m.Close()

		if steps <= 0 {
			return fmt.Errorf("steps must be positive, got %d", steps)
		}
		if err := m.Steps(-steps); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("No migrations to roll back")
				return nil
			}
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("Rolled back %d migration(s)", steps)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Показать текущую версию схемы",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, m, err := newMigrate()
		if err != nil {
			return err
		}
		defer m.Close()

		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read version: %w", err)
		}
		fmt.Printf("version: %d, dirty: %t\n", version, dirty)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults to CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildMigrateDSN добавляет к DSN имя таблицы с версиями миграций
func buildMigrateDSN(dbCfg config.DatabaseConfig, migrationTable string) string {
	return dbCfg.DSN() + "&x-migrations-table=" + url.QueryEscape(migrationTable)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		return nil, errors.New("config path is not set: use --config or CONFIG_PATH")
	}
	return config.MustLoadByPath(path), nil
}

func newMigrate() (*config.Config, *migrate.Migrate, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	// Создаем объект мигратора
	m, err := migrate.New("file://"+migrationsPath, buildMigrateDSN(cfg.Database, cfg.Migrations.Table))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return cfg, m, nil
}

// printTables выводит список таблиц после применения миграций
func printTables(dbCfg config.DatabaseConfig) error {
	db, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT table_name 
		FROM information_schema.tables 
		WHERE table_schema = 'public'
		ORDER BY table_name
	`)
	if err != nil {
		return fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	fmt.Println("Current tables in the database:")
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		fmt.Println(" -", tableName)
	}
	return rows.Err()
}
