package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/the1323/cs166-project-the033-hbai013/internal/config"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository/postgres"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/metrics"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/validator"
)

const metricsNamespace = "clinicdb"

type rootFlags struct {
	configPath string
	dbName     string
	port       int
	user       string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "clinicdb",
		Short:         "Clinic scheduling over PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&flags.dbName, "dbname", "", "Database name")
	rootCmd.PersistentFlags().IntVar(&flags.port, "port", 0, "Database port")
	rootCmd.PersistentFlags().StringVar(&flags.user, "user", "", "Database user")

	rootCmd.AddCommand(
		menuCmd(flags),
		migrateCmd(flags),
		doctorCmd(flags),
		patientCmd(flags),
		appointmentCmd(flags),
		reportCmd(flags),
		queryCmd(flags),
		workerCmd(flags),
		notifyCmd(flags),
	)
	return rootCmd
}

// app holds what every command needs once the database is reachable.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	metrics   *metrics.Metrics
	db        *sqlx.DB
	store     *postgres.Store
	validator validator.Validator
}

// loadConfig reads the config file and environment, then applies the
// database flags on top.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dbName != "" {
		cfg.Database.Name = flags.dbName
	}
	if flags.port != 0 {
		cfg.Database.Port = flags.port
	}
	if flags.user != "" {
		cfg.Database.User = flags.user
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *logger.Logger {
	return logger.New(&logger.Config{
		Level: logger.ParseLevel(cfg.Level),
		JSON:  cfg.JSON,
	})
}

func newApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.Log)

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Debug("Connected to database", "target", cfg.Database.Redacted())

	m := metrics.New(metricsNamespace)
	return &app{
		cfg:       cfg,
		log:       log,
		metrics:   m,
		db:        db,
		store:     postgres.NewStore(db, m),
		validator: validator.New(),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Error(err, "Failed to close database")
	}
}

// withApp wraps a command body with connection setup and teardown.
func withApp(flags *rootFlags, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), flags)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// applyPositional accepts the legacy `<dbname> <port> <user>` arguments.
func applyPositional(flags *rootFlags, args []string) error {
	if len(args) > 0 && flags.dbName == "" {
		flags.dbName = args[0]
	}
	if len(args) > 1 && flags.port == 0 {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[1], err)
		}
		flags.port = port
	}
	if len(args) > 2 && flags.user == "" {
		flags.user = args[2]
	}
	return nil
}
