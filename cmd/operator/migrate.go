package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Little-pure-light/language-Model/internal/config"
	"github.com/Little-pure-light/language-Model/internal/storage"
)

const dbTimeout = 30 * time.Second

func newMigrateCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Enable pgvector and migrate the memories and emotional state tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigForOperator()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if dryRun {
				fmt.Fprintln(out, "Dry run mode - no changes will be made")
				fmt.Fprintln(out, "  - Would enable the pgvector extension")
				fmt.Fprintf(out, "  - Would migrate %s\n", cfg.MemoriesTable)
				fmt.Fprintf(out, "  - Would migrate %s\n", cfg.EmotionalStatesTable)
				fmt.Fprintln(out, "  - Would create the table indexes")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), dbTimeout)
			defer cancel()

			store, err := storage.NewStore(ctx, cfg.DatabaseURL, storeOptions(cfg))
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer store.Close()

			fmt.Fprintln(out, "Migrating application tables...")
			if err := store.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "  ✓ Application tables migrated")
			fmt.Fprintln(out, "\nMigration completed successfully!")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be migrated without executing")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	var (
		file   string
		dir    string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Execute SQL migration files from the migrations directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			files, err := findMigrationFiles(dir, file)
			if err != nil {
				return fmt.Errorf("failed to find migration files: %w", err)
			}
			if len(files) == 0 {
				fmt.Fprintln(out, "No migration files found")
				return nil
			}

			fmt.Fprintf(out, "Found %d migration file(s):\n", len(files))
			for _, f := range files {
				fmt.Fprintf(out, "  - %s\n", filepath.Base(f))
			}
			if dryRun {
				fmt.Fprintln(out, "\nDry run mode - no SQL will be executed")
				return nil
			}

			cfg, err := loadConfigForOperator()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), dbTimeout)
			defer cancel()

			store, err := storage.NewStore(ctx, cfg.DatabaseURL, storeOptions(cfg))
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer store.Close()

			fmt.Fprintln(out, "\nExecuting migrations...")
			for _, f := range files {
				fmt.Fprintf(out, "  Running %s... ", filepath.Base(f))
				content, err := os.ReadFile(f)
				if err != nil {
					fmt.Fprintln(out, "✗")
					return fmt.Errorf("failed to read %s: %w", f, err)
				}
				if err := store.DB().WithContext(ctx).Exec(store.Options().RenderSQL(string(content))).Error; err != nil {
					fmt.Fprintln(out, "✗")
					return fmt.Errorf("failed to execute %s: %w", f, err)
				}
				fmt.Fprintln(out, "✓")
			}
			fmt.Fprintln(out, "\nSchema migration completed successfully!")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Specific migration file to execute")
	cmd.Flags().StringVar(&dir, "dir", "migrations", "Directory containing migration files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be executed without running")
	return cmd
}

// loadConfigForOperator reads the environment with relaxed validation: only
// DATABASE_URL is required.
func loadConfigForOperator() (config.Config, error) {
	cfg := config.FromEnv()
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return cfg, nil
}

func storeOptions(cfg config.Config) storage.Options {
	return storage.Options{
		MemoriesTable:        cfg.MemoriesTable,
		EmotionalStatesTable: cfg.EmotionalStatesTable,
	}
}

func findMigrationFiles(dir, specificFile string) ([]string, error) {
	if specificFile != "" {
		fullPath := filepath.Join(dir, specificFile)
		if _, err := os.Stat(fullPath); err != nil {
			return nil, fmt.Errorf("migration file not found: %s", fullPath)
		}
		return []string{fullPath}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
