// Package nav keeps the console's navigable address state: one location
// (route plus query string) per route, the active route, and a back stack.
// Locations are persisted so a restarted console reopens on the same pages.
package nav

import (
	"net/url"
	"strconv"
	"strings"
	"sync"

	"ammonit/internal/paging"
	"ammonit/internal/telemetry"
)

const (
	stateKeyPrefix = "nav:"
	currentKey     = "nav:@current"
	maxHistory     = 100
)

// Persister is the subset of db.Store the router needs.
type Persister interface {
	SetState(key, value string) error
	GetState(key string) (string, error)
}

// Location is a route and its query parameters, e.g. /admin?page=2.
type Location struct {
	Route string
	Query url.Values
}

// String renders the location the way it would appear in an address bar.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Route
	}
	return l.Route + "?" + l.Query.Encode()
}

// ParseLocation parses "/route?k=v". Unparseable query strings yield an
// empty query rather than an error; the page binding then defaults to 1.
func ParseLocation(s string) Location {
	route, raw, _ := strings.Cut(s, "?")
	q, err := url.ParseQuery(raw)
	if err != nil {
		q = url.Values{}
	}
	return Location{Route: route, Query: q}
}

func (l Location) clone() Location {
	q := make(url.Values, len(l.Query))
	for k, v := range l.Query {
		q[k] = append([]string(nil), v...)
	}
	return Location{Route: l.Route, Query: q}
}

// ChangedMsg tells views bound to Route that its location changed outside
// their own write-back (back navigation, external navigation).
type ChangedMsg struct {
	Route string
}

// Router owns navigation state. It is the single writer of every location.
type Router struct {
	mu        sync.Mutex
	store     Persister
	current   string
	locations map[string]Location
	history   []Location
}

// NewRouter creates a router starting at initial, unless the store remembers
// a more recent route. store may be nil.
func NewRouter(store Persister, initial string) *Router {
	r := &Router{
		store:     store,
		current:   initial,
		locations: map[string]Location{},
	}
	if store != nil {
		if saved, err := store.GetState(currentKey); err != nil {
			telemetry.LogWarn("Failed to restore current route", "error", err)
		} else if saved != "" {
			r.current = saved
		}
	}
	return r
}

// Current returns the active location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locationLocked(r.current).clone()
}

// Location returns the last known location of route.
func (r *Router) Location(route string) Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locationLocked(route).clone()
}

// Navigate makes route the active route, pushing the previous location on
// the back stack. Navigating to the active route is a no-op.
func (r *Router) Navigate(route string) Location {
	r.mu.Lock()
	defer r.mu.Unlock()

	if route == r.current {
		return r.locationLocked(route).clone()
	}
	r.pushLocked(r.locationLocked(r.current))
	r.current = route
	r.persistCurrentLocked()
	return r.locationLocked(route).clone()
}

// SetQuery sets key=value on route's location. When route is active the
// previous location is pushed on the back stack first.
func (r *Router) SetQuery(route, key, value string) Location {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc := r.locationLocked(route)
	if loc.Query.Get(key) == value {
		return loc.clone()
	}
	if route == r.current {
		r.pushLocked(loc)
	}
	next := loc.clone()
	next.Query.Set(key, value)
	r.locations[route] = next
	r.persistLocked(next)
	return next.clone()
}

// Back restores the previous location. ok is false when history is empty.
func (r *Router) Back() (Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.history) == 0 {
		return Location{}, false
	}
	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]

	r.current = prev.Route
	r.locations[prev.Route] = prev
	r.persistLocked(prev)
	r.persistCurrentLocked()
	return prev.clone(), true
}

// CanGoBack reports whether Back would change anything.
func (r *Router) CanGoBack() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history) > 0
}

func (r *Router) locationLocked(route string) Location {
	if loc, ok := r.locations[route]; ok {
		return loc
	}
	loc := Location{Route: route, Query: url.Values{}}
	if r.store != nil {
		saved, err := r.store.GetState(stateKeyPrefix + route)
		if err != nil {
			telemetry.LogWarn("Failed to restore location", "route", route, "error", err)
		} else if saved != "" {
			if parsed := ParseLocation(saved); parsed.Route == route {
				loc = parsed
			}
		}
	}
	r.locations[route] = loc
	return loc
}

func (r *Router) pushLocked(loc Location) {
	r.history = append(r.history, loc.clone())
	if len(r.history) > maxHistory {
		r.history = r.history[len(r.history)-maxHistory:]
	}
}

func (r *Router) persistLocked(loc Location) {
	if r.store == nil {
		return
	}
	if err := r.store.SetState(stateKeyPrefix+loc.Route, loc.String()); err != nil {
		telemetry.LogWarn("Failed to persist location", "location", loc.String(), "error", err)
	}
}

func (r *Router) persistCurrentLocked() {
	if r.store == nil {
		return
	}
	if err := r.store.SetState(currentKey, r.current); err != nil {
		telemetry.LogWarn("Failed to persist current route", "route", r.current, "error", err)
	}
}

// PageBinding exposes the "page" query parameter of one route as the
// navigation contract of a paged view.
type PageBinding struct {
	router *Router
	route  string
}

// Binding returns the page binding for route.
func (r *Router) Binding(route string) *PageBinding {
	return &PageBinding{router: r, route: route}
}

// Route returns the bound route.
func (b *PageBinding) Route() string {
	return b.route
}

// Request reads and normalises the page of the bound route.
func (b *PageBinding) Request() paging.Request {
	loc := b.router.Location(b.route)
	return paging.Normalize(loc.Query["page"])
}

// SetPage writes page back into the bound route's location.
func (b *PageBinding) SetPage(page int) {
	b.router.SetQuery(b.route, "page", strconv.Itoa(page))
}
