package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Makepad-fr/dashboard/internal/config"
	"github.com/Makepad-fr/dashboard/internal/form"
	"github.com/Makepad-fr/dashboard/internal/logging"
	"github.com/Makepad-fr/dashboard/internal/storage"
	"github.com/Makepad-fr/dashboard/internal/store"
	"github.com/Makepad-fr/dashboard/internal/ui"
)

// app is everything a subcommand needs, wired from config and flags.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	kv    storage.Storage
	store *store.Store
	ctrl  *form.Controller
}

func openApp(opts *Options) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	opts.applyTo(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, usageError{err}
	}
	cfg.ResolveStoragePath()
	ui.SetTheme(cfg.Theme)
	if opts.NoColor {
		ui.SetColorForcing(false, true)
	}

	log, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Verbose: opts.Verbose,
	})
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	log.Debug("storage opened",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.Storage.Path),
		zap.String("key", cfg.Storage.Key))

	s := store.New(kv,
		store.WithKey(cfg.Storage.Key),
		store.WithSeed(cfg.SeedOnFirstRun),
		store.WithLogger(log),
	)
	s.Load()
	if s.FirstRun() && s.Len() > 0 {
		// Persist the seed list so ids stay stable across invocations.
		if err := s.Save(); err != nil {
			log.Warn("persist initial records", zap.Error(err))
		}
	}

	ctrl := form.New(s, form.Options{
		RequirePhone: cfg.Form.RequirePhone,
		Logger:       log,
	})
	return &app{cfg: cfg, log: log, kv: kv, store: s, ctrl: ctrl}, nil
}

func (a *app) Close() error {
	err := a.kv.Close()
	_ = a.log.Sync()
	return err
}
