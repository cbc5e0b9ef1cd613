package main

import (
	"database/sql"
	"fmt"
	"os"

	"nexadomus/internal/config"
	"nexadomus/internal/logger"
	"nexadomus/internal/repository"
	"nexadomus/internal/repository/db"
	"nexadomus/internal/service"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:           "nexadomus",
		Short:         "Home controller command router",
		Long:          "Routes device commands to the home controller over the local network or the cloud relay, and serves the HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, status poller and sprinkler timer",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	sendCmd = &cobra.Command{
		Use:   "send <kind> <action> [key=value...]",
		Short: "Route a single device command",
		Example: "  nexadomus send garage open\n" +
			"  nexadomus send lights set brightness=170\n" +
			"  nexadomus send sprinklers on duration_seconds=300",
		Args: cobra.MinimumNArgs(2),
		RunE: runSend,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Poll the controller once and print its status",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: configs/config.yml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wired service graph shared by every subcommand.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *sql.DB
	services *service.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)

	conn, err := openDB(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init sqlite: %w", err)
	}
	probe, err := cfg.NewProber()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	services := service.NewService(service.Deps{
		Repos:     repository.NewRepository(conn),
		Probe:     probe,
		Direct:    cfg.NewDirect(),
		Relay:     cfg.NewRelay(),
		Log:       log,
		QueueSize: cfg.Router.QueueSize,
	})
	return &app{cfg: cfg, log: log, db: conn, services: services}, nil
}

func (a *app) Close() {
	a.services.Close()
	if err := a.db.Close(); err != nil {
		a.log.Errorw("sqlite_close_failed", "err", err)
	}
	_ = a.log.Sync()
}

func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Debugw("sqlite_open", "path", cfg.DB.Path)
	return db.InitDB(cfg.DB.Path)
}
