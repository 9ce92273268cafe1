// Package cmd holds the padel command line: the API server and its
// maintenance commands.
package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/padel/config"
	"github.com/DhavalSuthar-24/padel/internal/match"
	"github.com/DhavalSuthar-24/padel/internal/message"
	"github.com/DhavalSuthar-24/padel/internal/user"
)

// runtime is what every subcommand starts from.
type runtime struct {
	cfg *config.Config
	db  *gorm.DB
	loc *time.Location
	log zerolog.Logger
}

func bootstrap() (*runtime, error) {
	// Level and format are only known after the config is read.
	boot := config.NewLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig(boot)
	if err != nil {
		return nil, err
	}
	log := config.NewLogger(cfg.App.Env, cfg.App.LogLevel)
	zlog.Logger = log

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, db: db, loc: loc, log: log}, nil
}

func (rt *runtime) migrate() error {
	return rt.db.AutoMigrate(&user.User{}, &match.Match{}, &message.Message{})
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "padel",
		Short:         "Padel match and messaging API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSweepCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logger := config.NewLogger(os.Getenv("APP_ENV"), "error")
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
