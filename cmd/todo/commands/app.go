package commands

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/benvon/smart-todo-cli/internal/api"
	"github.com/benvon/smart-todo-cli/internal/chat"
	"github.com/benvon/smart-todo-cli/internal/config"
	"github.com/benvon/smart-todo-cli/internal/events"
	"github.com/benvon/smart-todo-cli/internal/logger"
	"github.com/benvon/smart-todo-cli/internal/models"
	"github.com/benvon/smart-todo-cli/internal/session"
	"github.com/benvon/smart-todo-cli/internal/store"
	"github.com/benvon/smart-todo-cli/internal/tasks"
)

// App is the composition root: it constructs and wires the API client,
// session store, controllers, and event bus, and injects them into command
// handlers. Nothing below this layer holds process-wide singletons.
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Store   store.Store
	Client  *api.Client
	Session *session.Store
	Tasks   *tasks.Controller
	Chat    *chat.Controller
	Bus     *events.Bus
}

// NewApp wires the client components and restores any persisted session.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewDevelopmentLogger(cfg.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if err := cfg.EnsureStateDir(); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	kv, err := store.OpenSQLite(cfg.StatePath())
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.APIBaseURL, log)
	bus := events.NewBus()

	sess := session.New(client, kv, log)
	sess.Restore()

	chatCtl := chat.New(client, sess, kv, bus, log)
	chatCtl.SetHistoryLimit(cfg.ChatHistoryLimit)

	return &App{
		Config:  cfg,
		Log:     log,
		Store:   kv,
		Client:  client,
		Session: sess,
		Tasks:   tasks.New(client, sess, log),
		Chat:    chatCtl,
		Bus:     bus,
	}, nil
}

// Close flushes logs and releases the state store.
func (a *App) Close() {
	_ = logger.Sync(a.Log)
	_ = a.Store.Close()
}

// RequireUser returns the logged-in user or a CLI-friendly error.
func (a *App) RequireUser() (*models.User, error) {
	if user := a.Session.User(); user != nil {
		return user, nil
	}
	return nil, errors.New("not logged in (run 'todo login' first)")
}
