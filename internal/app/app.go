// Package app wires the desk together: config, broker client, poller,
// console, submission service, stores and the HTTP surface.
package app

import (
	"context"
	"fmt"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/console"
	"orderdesk/internal/gateway/broker"
	"orderdesk/internal/logger"
	"orderdesk/internal/store"
	"orderdesk/internal/submit"
	deskhttp "orderdesk/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

// App holds the assembled desk components.
type App struct {
	cfg     *config.Config
	watcher *config.Watcher

	poller  *console.Poller
	console *console.Console
	submit  *submit.Service
	drafts  *store.DraftStore
	audit   *store.AuditLog
	server  *deskhttp.Server
}

// NewApp builds the desk from a config file path. The file keeps being
// watched: poll interval and log level changes apply without a restart.
func NewApp(cfgPath string) (*App, error) {
	watcher, err := config.NewWatcher(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg := watcher.Current()
	logger.SetLevel(cfg.App.LogLevel)

	gateway, err := broker.NewClient(cfg.Gateway)
	if err != nil {
		return nil, fmt.Errorf("initializing broker client failed: %w", err)
	}

	drafts, err := store.NewDraftStore(cfg.Store.DraftPath)
	if err != nil {
		return nil, fmt.Errorf("initializing draft store failed: %w", err)
	}
	audit, err := store.NewAuditLog(cfg.Store.AuditPath)
	if err != nil {
		drafts.Close()
		return nil, fmt.Errorf("initializing audit log failed: %w", err)
	}

	poller := console.NewPoller(gateway, time.Duration(cfg.Poll.IntervalMS)*time.Millisecond)
	poller.SetVisible(!cfg.Poll.StartHidden)
	con := console.New(poller, console.NewSelection(), gateway, audit)
	sub := submit.NewService(gateway, drafts, poller, audit)

	server, err := deskhttp.NewServer(deskhttp.ServerConfig{
		Addr:   cfg.App.HTTPAddr,
		Router: deskhttp.NewRouter(con, sub, audit),
	})
	if err != nil {
		drafts.Close()
		audit.Close()
		return nil, err
	}

	app := &App{
		cfg:     cfg,
		watcher: watcher,
		poller:  poller,
		console: con,
		submit:  sub,
		drafts:  drafts,
		audit:   audit,
		server:  server,
	}
	watcher.Subscribe(app.onConfigChange)
	return app, nil
}

// onConfigChange applies the reload-safe knobs.
func (a *App) onConfigChange(cfg *config.Config) {
	if cfg == nil {
		return
	}
	logger.SetLevel(cfg.App.LogLevel)
	a.poller.SetInterval(time.Duration(cfg.Poll.IntervalMS) * time.Millisecond)
	logger.Infof("app: applied config reload, poll interval=%dms log level=%s",
		cfg.Poll.IntervalMS, cfg.App.LogLevel)
}

// Console exposes the order console, mainly for embedding callers.
func (a *App) Console() *console.Console { return a.console }

// Run starts the polling loop and the HTTP server, blocking until ctx is
// cancelled or either fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.close()

	logger.Infof("app: desk listening on %s, router=%s, poll=%dms",
		a.server.Addr(), a.cfg.Gateway.BaseURL, a.cfg.Poll.IntervalMS)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("desk http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return a.poller.Run(ctx)
	})
	return group.Wait()
}

func (a *App) close() {
	if a.drafts != nil {
		if err := a.drafts.Close(); err != nil {
			logger.Warnf("app: closing draft store failed: %v", err)
		}
	}
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			logger.Warnf("app: closing audit log failed: %v", err)
		}
	}
}
