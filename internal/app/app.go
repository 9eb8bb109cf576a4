package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/pulp-tools/pic/internal/config"
	"github.com/pulp-tools/pic/internal/journal"
	"github.com/pulp-tools/pic/internal/logger"
	"github.com/pulp-tools/pic/pkg/notify"
	"github.com/pulp-tools/pic/pkg/pulp"
)

// App owns the runtime pieces of the CLI: the pulp session, the request
// journal and the change notifiers. Every exchange the session performs is
// recorded in the journal and, for successful changes, announced through the
// notifiers.
type App struct {
	cfg     *config.Config
	session *pulp.Session
	store   journal.Store
	fanout  *notify.Fanout
	log     logger.Logger
}

// New builds the runtime from config. Extra session options are appended
// after the observers App installs itself.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...pulp.Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := journal.NewStore(cfg.JournalType, cfg.JournalPath, journal.Options{
		EntryTTL:        cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.DebugObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"entry_ttl_seconds":        int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.NotifiersFile, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		store:  store,
		fanout: fanout,
		log:    log,
	}
	sessionOpts := append([]pulp.Option{
		pulp.WithObserver(
			pulp.ObserverFunc(a.logExchange),
			pulp.ObserverFunc(a.recordExchange),
			pulp.ObserverFunc(a.announceExchange),
		),
	}, opts...)
	a.session = pulp.NewSession(cfg.Settings(), sessionOpts...)
	return a, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*notify.Fanout, error) {
	if path == "" {
		return notify.NewFanout(nil), nil
	}
	cfgs, err := notify.LoadConfigs(path)
	if err != nil {
		return nil, fmt.Errorf("load notifiers: %w", err)
	}
	ns, err := notify.BuildAll(ctx, notify.DefaultRegistry(), cfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(cfgs))
	for _, c := range cfgs {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.DebugObj("notifiers loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})
	return notify.NewFanout(ns), nil
}

// Session returns the pulp session. It is not connected until Connect.
func (a *App) Session() *pulp.Session { return a.session }

// Journal returns the request journal.
func (a *App) Journal() journal.Store { return a.store }

// Notifiers reports how many change notifiers are active.
func (a *App) Notifiers() int { return a.fanout.Size() }

// Connect opens the session transport.
func (a *App) Connect() error {
	if err := a.session.Connect(); err != nil {
		return err
	}
	a.log.DebugObj("session connected", "server", a.session.Settings().String())
	return nil
}

// Close releases the session, notifiers and journal.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.session != nil {
		a.session.Close()
	}
	var errs []error
	if err := a.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close notifiers: %w", err))
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) logExchange(_ context.Context, ex pulp.Exchange) {
	fields := map[string]any{
		"method":      ex.Method,
		"path":        ex.Path,
		"status":      ex.Status,
		"duration_ms": ex.Duration.Milliseconds(),
	}
	if ex.Failed() {
		fields["error"] = ex.Err.Error()
		a.log.WarnObj("request failed", "exchange", fields)
		return
	}
	a.log.DebugObj("request completed", "exchange", fields)
}

func (a *App) recordExchange(_ context.Context, ex pulp.Exchange) {
	entry := journal.Entry{
		Method:     ex.Method,
		Path:       ex.Path,
		Status:     ex.Status,
		DurationMs: ex.Duration.Milliseconds(),
		At:         ex.At.UTC(),
	}
	if ex.Err != nil {
		entry.Error = ex.Err.Error()
	}
	if err := a.store.Record(entry); err != nil {
		a.log.ErrorObj("journal record failed", "error", err)
	}
}

func (a *App) announceExchange(ctx context.Context, ex pulp.Exchange) {
	if a.fanout.Size() == 0 {
		return
	}
	evt, ok := notify.NewEvent(a.session.Settings(), ex)
	if !ok {
		return
	}
	n, err := a.fanout.Notify(ctx, evt)
	if err != nil {
		a.log.ErrorObj("change notification failed", "error", err)
	}
	a.log.DebugObj("change announced", "event_meta", map[string]any{
		"id":        evt.ID,
		"action":    evt.Action,
		"delivered": n,
	})
}
