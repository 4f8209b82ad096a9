package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/config"
	"github.com/Tiliavir/daylog/internal/daylog"
	"github.com/Tiliavir/daylog/internal/identity"
	"github.com/Tiliavir/daylog/internal/logging"
	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/reconcile"
	"github.com/Tiliavir/daylog/internal/share"
	"github.com/Tiliavir/daylog/internal/storage"
	"github.com/Tiliavir/daylog/internal/storage/sqlite"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "daylog",
	Short: "daylog – one record per working day, split across projects",
	Long: `daylog keeps one record per calendar day: the projects worked on, a
description and the files touched. Months can be exported to a spreadsheet,
imported back, and shared as read-only snapshots.
Data is stored in ~/.daylog/ unless configured otherwise.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { closeEnv() },
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.daylog/config.yaml)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(shareCmd)
}

// env is everything a command needs, built once per invocation.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	store  storage.Store
	logs   *daylog.Service
	shares *share.Service
	auth   *identity.Authenticator
}

var current *env

// mustEnv loads the config and opens the store. Config problems exit with
// code 1, storage problems with code 2.
func mustEnv() *env {
	if current != nil {
		return current
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fail(err)
	}
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fail(err)
	}

	var store storage.Store
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err = sqlite.Open(cfg.Storage.SQLitePath, logger)
	default:
		store, err = storage.NewFileStore(cfg.DataDir, logger)
	}
	if err != nil {
		failStorage(err)
	}

	current = &env{
		cfg:    cfg,
		logger: logger,
		store:  store,
		logs:   daylog.NewService(store, logger),
		shares: share.NewService(store, cfg.Share.TTL, logger),
		auth:   identity.New(cfg.Identity, cfg.DataDir, os.Stderr, logger),
	}
	return current
}

func closeEnv() {
	if current == nil {
		return
	}
	if err := current.store.Close(); err != nil {
		current.logger.Warn("closing store", zap.Error(err))
	}
	_ = current.logger.Sync()
	current = nil
}

// user returns the signed-in user or exits asking to sign in.
func (e *env) user() model.User {
	u, err := e.auth.Current()
	if errors.Is(err, identity.ErrSignedOut) {
		fail(err)
	}
	if err != nil {
		failStorage(err)
	}
	return u
}

// fail reports a user or validation error and exits with code 1.
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	closeEnv()
	os.Exit(1)
}

// failStorage reports a storage or external failure and exits with code 2.
func failStorage(err error) {
	fmt.Fprintln(os.Stderr, err)
	closeEnv()
	os.Exit(2)
}

// userErrors are validation failures: they exit with code 1 and leave
// stored data unchanged.
var userErrors = []error{
	storage.ErrNotFound,
	storage.ErrDuplicateProject,
	storage.ErrInvalidKey,
	model.ErrInvalidProjectName,
	reconcile.ErrEmptyFileName,
	reconcile.ErrInvalidFileName,
	reconcile.ErrDuplicateFile,
	reconcile.ErrUnknownFile,
	daylog.ErrEmptyTarget,
	daylog.ErrSameDate,
	share.ErrNotOwner,
	share.ErrNotFound,
	share.ErrExpired,
	share.ErrDisabled,
}

// check exits on err, choosing the exit code by its kind.
func check(err error) {
	if err == nil {
		return
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			fail(err)
		}
	}
	failStorage(err)
}

// parseMonth reads a --month flag; empty means the current month.
func parseMonth(s string, now time.Time) (timecalc.Month, error) {
	if s == "" {
		return timecalc.MonthOf(now), nil
	}
	return timecalc.ParseMonth(s)
}

// parseDay reads a date argument; empty means today.
func parseDay(s string, now time.Time) (string, error) {
	if s == "" {
		return timecalc.DateKey(now), nil
	}
	t, err := timecalc.ParseDate(s)
	if err != nil {
		return "", err
	}
	return timecalc.DateKey(t), nil
}
