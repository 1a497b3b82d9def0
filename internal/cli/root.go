// Package cli implements yatubectl, the administration command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yatube/yatube/internal/config"
	"github.com/yatube/yatube/internal/database"
	"github.com/yatube/yatube/internal/repository"
	"github.com/yatube/yatube/pkg/logger"
)

// Version is the CLI version, injected at build time:
//
//	go build -ldflags "-X github.com/yatube/yatube/internal/cli.Version=1.2.3"
var Version = "dev"

var (
	flagJSON bool

	cfg *config.Config
	be  *backend
)

// backend is the opened store plus what migrate needs.
type backend struct {
	store   *repository.Store
	migrate func() error
	close   func() error
}

// openBackend is replaced in tests.
var openBackend = func(cfg *config.Config) (*backend, error) {
	if cfg.DB.Driver == config.DriverMemory {
		return &backend{
			store:   repository.NewMemoryStore().Store(),
			migrate: func() error { return nil },
			close:   func() error { return nil },
		}, nil
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &backend{
		store:   repository.NewGormStore(db),
		migrate: func() error { return database.Migrate(db) },
		close:   sqlDB.Close,
	}, nil
}

var rootCmd = &cobra.Command{
	Use:   "yatubectl",
	Short: "Yatube administration: schema, groups and users",
	Long: `yatubectl manages a Yatube database directly, using the same
DB_* environment variables as the server.

  yatubectl migrate                                   Create or update the schema
  yatubectl groups create --title Books --slug books  Add a group
  yatubectl groups list                               List groups
  yatubectl users create --username leo --password …  Add a user`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		cfg = config.Load()
		var err error
		be, err = openBackend(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if be == nil {
			return nil
		}
		err := be.close()
		be = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
}

// Execute runs the root command.
func Execute() error {
	logger.Init()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
