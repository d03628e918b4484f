// Package main implements the simpletodo server binary.
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"simpletodo/internal/model"
	"simpletodo/internal/web"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "simpletodo",
	Short: "Server-rendered todo list backed by a sqlite file",
	RunE:  runServe,
}

var (
	cfgPath string
	addr    string
	dbPath  string
)

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", model.DefaultConfigPath(), "Path to the config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Path to the sqlite database (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := web.New(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", cfg.ListenAddr).Str("db", cfg.DBPath).Msg("simpletodo listening")

	err = server.ListenAndServe(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info().Msg("shut down")
		return nil
	}
	return err
}

// newLogger builds the process logger from config. A file destination gets
// the console writer, matching how the log is usually tailed.
func newLogger(cfg *model.AppConfig) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}

	out := os.Stderr
	closeLog := func() {}
	if cfg.Log.File != "" {
		file, err := os.OpenFile(cfg.Log.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, fs.FileMode(0o666))
		if err != nil {
			return zerolog.Logger{}, nil, err
		}
		out = file
		closeLog = func() { file.Close() }
	}

	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02_15:04:05"}
	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logger, closeLog, nil
}
