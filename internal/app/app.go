package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/five82/ava/internal/cache"
	"github.com/five82/ava/internal/config"
	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/logfields"
	"github.com/five82/ava/internal/metrics"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/prefs"
	"github.com/five82/ava/internal/remote"
	"github.com/five82/ava/internal/repository"
	"github.com/five82/ava/internal/service"
	"github.com/five82/ava/internal/state"
	"github.com/five82/ava/internal/ui"
)

// Options configure the application.
type Options struct {
	ConfigPath     string
	PrefsPath      string    // empty uses default ~/.config/ava/prefs.toml
	RefreshSeconds int       // overrides refresh_seconds when positive
	LogWriter      io.Writer // nil logs to <data_dir>/ava.log
}

// App holds the wired client: store, services and their collaborators.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    *state.Store
	Engine   *service.Engine
	Client   *remote.Client
	DB       *cache.DB
	Registry *prometheus.Registry
	Recorder *metrics.PrometheusRecorder

	Auth          *service.AuthService
	Conversations *service.ConversationService
	Chats         *service.ChatService
	Journals      *service.JournalService

	closeLog func() error
}

// New loads the configuration and wires every component. Requests issued
// through the services derive from ctx.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.RefreshSeconds > 0 {
		cfg.RefreshInterval = time.Duration(opts.RefreshSeconds) * time.Second
	}

	logger, closeLog, err := openLogger(cfg.Level(), cfg.LogPath(), opts.LogWriter)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	db, err := cache.Open(cfg.CachePath(), cache.WithRecorder(recorder))
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	client, err := remote.NewClient(cfg.APIURL, remote.WithLogger(logger), remote.WithRecorder(recorder))
	if err != nil {
		_ = db.Close()
		_ = closeLog()
		return nil, fmt.Errorf("init remote client: %w", err)
	}

	store := state.NewStore(state.WithLogger(logger), state.WithRecorder(recorder))
	eng := service.NewEngine(ctx, store, logger)

	users := repository.New[model.User](string(model.KindUser), nil, nil,
		cache.NewTable[model.User](db, model.KindUser), logger)
	settings := repository.New[model.Setting](string(model.KindSetting), nil, nil,
		cache.NewTable[model.Setting](db, model.KindSetting), logger)
	conversations := repository.New[model.Conversation](string(model.KindConversation), client.Conversations(), client.Conversations(),
		cache.NewTable[model.Conversation](db, model.KindConversation), logger)
	chats := repository.New[model.Chat](string(model.KindChat), client.Chats(), nil,
		cache.NewTable[model.Chat](db, model.KindChat), logger)
	journals := repository.New[model.Journal](string(model.KindJournal), client.Journals(), client.Journals(),
		cache.NewTable[model.Journal](db, model.KindJournal), logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Engine:   eng,
		Client:   client,
		DB:       db,
		Registry: reg,
		Recorder: recorder,
		Auth: service.NewAuthService(eng, service.AuthDeps{
			Remote:   client,
			Users:    users,
			Settings: settings,
			Tokens:   client,
			HoldBack: cfg.RequestHoldBack,
		}),
		Conversations: service.NewConversationService(eng, conversations, chats, cfg.PageSize),
		Chats:         service.NewChatService(eng, chats, client.Chats()),
		Journals:      service.NewJournalService(eng, journals, client.Journals(), cfg.PageSize),
		closeLog:      closeLog,
	}, nil
}

// Start launches the metrics listener and the background refresher.
func (a *App) Start(ctx context.Context) {
	if a.Config.MetricsAddr != "" {
		metrics.Serve(ctx, a.Config.MetricsAddr, a.Registry, a.Logger)
		a.Logger.Info("metrics listening", slog.String("addr", a.Config.MetricsAddr))
	}
	StartPoller(ctx, a.Store, a.Refresh, a.Config.RefreshInterval, a.Logger, a.Recorder)
}

// RestoreSession loads the cached user, if any. It reports whether a user
// is signed in.
func (a *App) RestoreSession(ctx context.Context) (bool, error) {
	err := a.Auth.CheckLoggedStatus().Wait(ctx)
	if averrors.Is(err, averrors.CategoryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	a.Auth.LoadSetting()
	return true, nil
}

// Refresh forces the conversation and journal lists from the remote service.
// Lists that are already loading are left to finish. Nothing happens while
// signed out.
func (a *App) Refresh(ctx context.Context) error {
	if !state.Get(a.Store, state.UserPath).Ready() {
		return nil
	}
	var reqs []*service.Request
	if !a.Conversations.Slot().Value().IsLoading() {
		reqs = append(reqs, a.Conversations.LoadList(true))
	}
	if !a.Journals.Slot().Value().IsLoading() {
		reqs = append(reqs, a.Journals.LoadList(true))
	}

	var errs []error
	for _, req := range reqs {
		err := req.Wait(ctx)
		if err != nil && !averrors.Is(err, averrors.CategorySuperseded) {
			errs = append(errs, fmt.Errorf("refresh %s: %w", req.Key(), err))
		}
	}
	return errors.Join(errs...)
}

// Close cancels in-flight requests and releases the cache and log file.
func (a *App) Close() error {
	a.Engine.Close()
	var errs []error
	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil {
			errs = append(errs, fmt.Errorf("close log: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run boots the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	a, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Warn("shutdown failed", logfields.Error(err))
		}
	}()

	a.Start(ctx)
	if _, err := a.RestoreSession(ctx); err != nil {
		a.Logger.Warn("restore session failed", logfields.Error(err))
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		a.Logger.Warn("load preferences failed", logfields.Error(err))
	}

	return ui.Run(ui.Options{
		Context:       ctx,
		Store:         a.Store,
		Engine:        a.Engine,
		Auth:          a.Auth,
		Conversations: a.Conversations,
		Chats:         a.Chats,
		Journals:      a.Journals,
		ThemeName:     userPrefs.Theme,
		ViewName:      userPrefs.View,
		PrefsPath:     opts.PrefsPath,
		LogPath:       a.Config.LogPath(),
		Logger:        a.Logger,
	})
}
