// cmd/seeder/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/config"
	"github.com/unclebandit/salesmail-backend/internal/db"
	"github.com/unclebandit/salesmail-backend/internal/logger"
	"github.com/unclebandit/salesmail-backend/internal/repository"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

const (
	schemaFile = "schema.sql"
	seedFile   = "industries.sql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB
}

func newRootCommand() *cobra.Command {
	var seedDir string
	e := &env{}

	root := &cobra.Command{
		Use:          "seeder",
		Short:        "Database setup and offline customer import",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			conn, err := db.Open(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			e.cfg, e.log, e.db = cfg, log, conn
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.db != nil {
				e.db.Close()
			}
			if e.log != nil {
				e.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&seedDir, "dir", "seed", "directory holding the SQL files")

	root.AddCommand(
		&cobra.Command{
			Use:   "schema",
			Short: "Create the tables if they do not exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return execFiles(cmd.Context(), e.db, cmd.OutOrStdout(), filepath.Join(seedDir, schemaFile))
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the tables and load the reference industries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return execFiles(cmd.Context(), e.db, cmd.OutOrStdout(),
					filepath.Join(seedDir, schemaFile),
					filepath.Join(seedDir, seedFile),
				)
			},
		},
		&cobra.Command{
			Use:   "import <file.csv>",
			Short: "Import a customer CSV the same way the API does",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return importFile(cmd, e, args[0])
			},
		},
	)
	return root
}

// execFiles runs each SQL file as a single statement batch, in order.
func execFiles(ctx context.Context, conn *sql.DB, out io.Writer, files ...string) error {
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute %s: %w", file, err)
		}
		fmt.Fprintf(out, "Seeded: %s\n", file)
	}
	return nil
}

func importFile(cmd *cobra.Command, e *env, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	svc := &service.ImportService{
		CustomerRepo: &repository.CustomerRepository{DB: e.db},
		IndustryRepo: &repository.IndustryRepository{DB: e.db},
		BatchRepo:    &repository.ImportBatchRepository{DB: e.db},
		ChunkSize:    e.cfg.Import.ChunkSize,
		Logger:       e.log,
	}
	summary, err := svc.ImportFile(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
