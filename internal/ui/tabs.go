package ui

import (
	"context"
	"fmt"

	"ammonit/internal/api"
	"ammonit/internal/metrics"
	"ammonit/internal/model"
	"ammonit/internal/nav"
	"ammonit/internal/pager"
	"ammonit/internal/paging"
	"ammonit/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// CollectionView is what the app needs from a tab's paged view.
type CollectionView interface {
	tea.Model
	ID() string
	Err() error
	Render(ctx context.Context) (string, error)
}

// Tab is one browsable collection.
type Tab struct {
	Collection string
	Route      string
	Title      string
	View       CollectionView
}

// Routes maps a collection to its navigation route. Users live under
// /admin because only superusers can list them.
var Routes = map[string]string{
	"users":   "/admin",
	"clients": "/clients",
	"orders":  "/orders",
	"emails":  "/emails",
	"prompts": "/prompts",
}

// RouteFor returns the route of collection.
func RouteFor(collection string) (string, error) {
	route, ok := Routes[collection]
	if !ok {
		return "", fmt.Errorf("unknown collection %q (want one of %v)", collection, model.Collections)
	}
	return route, nil
}

// Fetchers supplies one page loader per collection.
type Fetchers struct {
	Users   pager.FetchFunc[model.User]
	Clients pager.FetchFunc[model.Client]
	Orders  pager.FetchFunc[model.Order]
	Emails  pager.FetchFunc[model.Email]
	Prompts pager.FetchFunc[model.Prompt]
}

// FetchersFrom binds every collection to the REST client.
func FetchersFrom(c *api.Client) Fetchers {
	return Fetchers{
		Users:   c.Users,
		Clients: c.Clients,
		Orders:  c.Orders,
		Emails:  c.Emails,
		Prompts: c.Prompts,
	}
}

// Options tune every tab.
type Options struct {
	PageSize int
	Session  *session.Context
	Metrics  *metrics.Metrics
}

func newTab[T any](router *nav.Router, opts Options, collection, title string, fetch pager.FetchFunc[T], cols []pager.Column[T], emptyTitle, emptyDesc string) Tab {
	route := Routes[collection]
	return Tab{
		Collection: collection,
		Route:      route,
		Title:      title,
		View: pager.New(pager.Config[T]{
			ID:               collection,
			Fetch:            fetch,
			Columns:          cols,
			PageSize:         opts.PageSize,
			EmptyTitle:       emptyTitle,
			EmptyDescription: emptyDesc,
			Nav:              router.Binding(route),
			Metrics:          opts.Metrics,
		}),
	}
}

// Collections builds the tabs in display order.
func Collections(router *nav.Router, f Fetchers, opts Options) []Tab {
	if opts.PageSize <= 0 {
		opts.PageSize = paging.DefaultPageSize
	}
	return []Tab{
		newTab(router, opts, "users", "Usuarios", f.Users, UserColumns(opts.Session),
			"No hay usuarios", "No hay usuarios registrados en el sistema"),
		newTab(router, opts, "clients", "Clientes", f.Clients, ClientColumns(),
			"No tienes ningún cliente", "Agrega un nuevo cliente para empezar"),
		newTab(router, opts, "orders", "Pedidos", f.Orders, OrderColumns(),
			"No tienes ningún pedido", "Agrega un nuevo pedido para empezar, bien por email o bien desde la web"),
		newTab(router, opts, "emails", "Emails", f.Emails, EmailColumns(),
			"No hay emails configurados", "Agrega un nuevo email para empezar a conectar con Outlook."),
		newTab(router, opts, "prompts", "Prompts", f.Prompts, PromptColumns(),
			"No hay prompts", "No hay prompts registrados en el sistema"),
	}
}

// FindTab returns the tab bound to collection.
func FindTab(tabs []Tab, collection string) (Tab, bool) {
	for _, t := range tabs {
		if t.Collection == collection {
			return t, true
		}
	}
	return Tab{}, false
}
