package main

import (
	"context"
	"fmt"

	"ammonit/internal/api"
	"ammonit/internal/config"
	"ammonit/internal/db"
	"ammonit/internal/live"
	"ammonit/internal/nav"
	"ammonit/internal/session"
	"ammonit/internal/telemetry"
	"ammonit/internal/ui"
)

// defaultRoute is where a fresh console opens.
const defaultRoute = "/admin"

// console bundles what the browsing commands share.
type console struct {
	cfg     config.Config
	store   db.Store
	router  *nav.Router
	client  *api.Client
	session *session.Context
}

// openConsole wires the store, router, REST client and session from the
// loaded configuration. A configured token is used to look up the signed-in
// user; failing that lookup leaves the session signed out.
func openConsole(ctx context.Context) (*console, error) {
	cfg := config.FromViper()

	store, err := db.NewStore(db.StoreConfig{Type: cfg.Store.Type, ConnectionString: cfg.Store.DSN})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	opts := []api.Option{api.WithTimeout(cfg.APITimeout), api.WithMetrics(appMetrics)}
	if cfg.APIToken != "" {
		opts = append(opts, api.WithToken(cfg.APIToken))
	}
	client, err := api.New(cfg.APIURL, opts...)
	if err != nil {
		store.Close()
		return nil, err
	}

	c := &console{
		cfg:     cfg,
		store:   store,
		router:  nav.NewRouter(store, defaultRoute),
		client:  client,
		session: session.New(),
	}

	if cfg.APIToken != "" {
		me, err := client.Me(ctx)
		if err != nil {
			telemetry.LogWarn("Could not resolve the signed-in user", "error", err)
		} else {
			c.session.Set(me)
		}
	}
	return c, nil
}

func (c *console) tabs() []ui.Tab {
	return ui.Collections(c.router, ui.FetchersFrom(c.client), ui.Options{
		PageSize: c.cfg.PageSize,
		Session:  c.session,
		Metrics:  appMetrics,
	})
}

// liveOptions turns the live.* settings into channel options.
func (c *console) liveOptions() []live.Option {
	return []live.Option{
		live.WithPolicy(live.PolicyByName(c.cfg.Live.Backoff, c.cfg.Live.ReconnectDelay, c.cfg.Live.MaxDelay)),
		live.WithHandshakeTimeout(c.cfg.Live.HandshakeTimeout),
		live.WithMetrics(appMetrics),
	}
}

func (c *console) Close() {
	c.session.Clear()
	if err := c.store.Close(); err != nil {
		telemetry.LogWarn("Closing store failed", "error", err)
	}
}
