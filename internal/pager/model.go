// Package pager renders one page of a server-backed collection and keeps
// the page number in navigation state rather than in the view.
package pager

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ammonit/internal/metrics"
	"ammonit/internal/nav"
	"ammonit/internal/paging"
	"ammonit/internal/telemetry"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultColumnWidth is used for columns that do not set Width.
const DefaultColumnWidth = 20

// Column describes how one attribute of T is shown.
type Column[T any] struct {
	Header string
	Render func(T) string
	Width  int
}

// PageState is the navigation binding a view reads its page from and
// writes it back to. Request must normalise whatever is stored.
type PageState interface {
	Request() paging.Request
	SetPage(page int)
}

// FetchFunc loads one page. It must be safe to call repeatedly with the
// same request.
type FetchFunc[T any] func(ctx context.Context, req paging.Request, pageSize int) (paging.Result[T], error)

// Config wires a view to its data and navigation state.
type Config[T any] struct {
	ID               string
	Fetch            FetchFunc[T]
	Columns          []Column[T]
	PageSize         int
	EmptyTitle       string
	EmptyDescription string
	Nav              PageState
	Metrics          *metrics.Metrics
}

// Model is a bubbletea model for a paged collection.
type Model[T any] struct {
	cfg Config[T]

	table   table.Model
	pages   paginator.Model
	spinner spinner.Model
	help    help.Model

	// seq numbers every fetch this view issues; results carrying an
	// older number are superseded.
	seq     uint64
	loading bool
	result  *paging.Result[T]
	err     error

	static bool
}

// New builds a view. The first fetch is issued by Init.
func New[T any](cfg Config[T]) Model[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = paging.DefaultPageSize
	}

	cols := make([]table.Column, len(cfg.Columns))
	for i, c := range cfg.Columns {
		cols[i] = table.Column{Title: c.Header, Width: columnWidth(c.Width)}
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(cfg.PageSize+2),
	)
	t.SetStyles(tableStyles(false))

	p := paginator.New()
	p.PerPage = cfg.PageSize

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model[T]{
		cfg:     cfg,
		table:   t,
		pages:   p,
		spinner: s,
		help:    help.New(),
		seq:     1,
		loading: true,
	}
}

func columnWidth(w int) int {
	if w <= 0 {
		return DefaultColumnWidth
	}
	return w
}

// ID identifies this view's messages.
func (m Model[T]) ID() string { return m.cfg.ID }

// Err is the error of the last fetch, nil after a success.
func (m Model[T]) Err() error { return m.err }

// Loading reports whether a fetch is outstanding.
func (m Model[T]) Loading() bool { return m.loading }

// Stale reports whether the rows on screen belong to a previous request
// while a newer one is outstanding.
func (m Model[T]) Stale() bool { return m.loading && m.result != nil }

// Result returns the last successful result, if any.
func (m Model[T]) Result() (paging.Result[T], bool) {
	if m.result == nil {
		return paging.Result[T]{}, false
	}
	return *m.result, true
}

// TotalPages is derived from the last result's count.
func (m Model[T]) TotalPages() int {
	if m.result == nil {
		return 1
	}
	return paging.TotalPages(m.result.Count, m.cfg.PageSize)
}

func (m Model[T]) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(m.cfg.Nav.Request(), m.seq), m.spinner.Tick)
}

// Load fetches the current page synchronously. It is meant for
// non-interactive callers that render a single frame.
func (m Model[T]) Load(ctx context.Context) Model[T] {
	m, _ = m.startFetch()
	req := m.cfg.Nav.Request()
	return m.apply(m.runFetch(ctx, req, m.seq))
}

// Render loads the current page and returns the frame without key help,
// together with the fetch error, if any.
func (m Model[T]) Render(ctx context.Context) (string, error) {
	m = m.Load(ctx)
	m.static = true
	return m.View(), m.err
}

// refetch re-reads navigation state and issues a fetch for it.
func (m Model[T]) refetch() (Model[T], tea.Cmd) {
	m, cmd := m.startFetch()
	if m.result != nil {
		m.table.SetStyles(tableStyles(true))
	}
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model[T]) startFetch() (Model[T], tea.Cmd) {
	m.seq++
	m.loading = true
	m.err = nil
	return m, m.fetchCmd(m.cfg.Nav.Request(), m.seq)
}

func (m Model[T]) fetchCmd(req paging.Request, seq uint64) tea.Cmd {
	return func() tea.Msg {
		return m.runFetch(context.Background(), req, seq)
	}
}

func (m Model[T]) runFetch(ctx context.Context, req paging.Request, seq uint64) tea.Msg {
	res, err := m.cfg.Fetch(ctx, req, m.cfg.PageSize)
	if err != nil {
		return PageFailedMsg{ID: m.cfg.ID, Page: req.Page, Seq: seq, Err: err}
	}
	return PageLoadedMsg[T]{ID: m.cfg.ID, Page: req.Page, Seq: seq, Result: res}
}

// superseded reports whether a result for page issued as seq no longer
// matches what the view should show.
func (m Model[T]) superseded(page int, seq uint64) bool {
	return page != m.cfg.Nav.Request().Page || seq != m.seq
}

func (m Model[T]) apply(msg tea.Msg) Model[T] {
	switch msg := msg.(type) {
	case PageLoadedMsg[T]:
		if msg.ID != m.cfg.ID {
			return m
		}
		if m.superseded(msg.Page, msg.Seq) {
			m.cfg.Metrics.Discarded(m.cfg.ID)
			telemetry.LogDebug("Discarding superseded page", "view", m.cfg.ID, "page", msg.Page, "seq", msg.Seq)
			return m
		}
		res := msg.Result
		m.result = &res
		m.loading = false
		m.err = nil
		m.syncRows()

	case PageFailedMsg:
		if msg.ID != m.cfg.ID {
			return m
		}
		if m.superseded(msg.Page, msg.Seq) {
			m.cfg.Metrics.Discarded(m.cfg.ID)
			return m
		}
		m.loading = false
		m.err = msg.Err
		m.table.SetStyles(tableStyles(false))
		telemetry.LogWarn("Page fetch failed", "view", m.cfg.ID, "page", msg.Page, "error", msg.Err)
	}
	return m
}

func (m *Model[T]) syncRows() {
	rows := make([]table.Row, len(m.result.Items))
	for i, item := range m.result.Items {
		row := make(table.Row, len(m.cfg.Columns))
		for j, c := range m.cfg.Columns {
			row[j] = c.Render(item)
		}
		rows[i] = row
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
	m.table.SetStyles(tableStyles(false))

	m.pages.TotalPages = m.TotalPages()
	m.pages.Page = paging.Clamp(m.cfg.Nav.Request().Page, m.pages.TotalPages) - 1
}

// goTo writes page k to navigation state and fetches whatever the state
// now says.
func (m Model[T]) goTo(k int) (Model[T], tea.Cmd) {
	if k < 1 || k > m.TotalPages() || k == m.cfg.Nav.Request().Page {
		return m, nil
	}
	m.cfg.Nav.SetPage(k)
	return m.refetch()
}

func (m Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PageLoadedMsg[T], PageFailedMsg:
		return m.apply(msg), nil

	case nav.ChangedMsg:
		if r, ok := m.cfg.Nav.(interface{ Route() string }); ok && r.Route() == msg.Route {
			return m.refetch()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		current := m.cfg.Nav.Request().Page
		switch {
		case key.Matches(msg, Keys.Retry):
			if m.err != nil {
				return m.refetch()
			}
			return m, nil
		case m.result == nil:
			return m, nil
		case key.Matches(msg, Keys.Next):
			return m.goTo(current + 1)
		case key.Matches(msg, Keys.Prev):
			return m.goTo(current - 1)
		case key.Matches(msg, Keys.First):
			return m.goTo(1)
		case key.Matches(msg, Keys.Last):
			return m.goTo(m.TotalPages())
		case key.Matches(msg, Keys.Jump):
			k, _ := strconv.Atoi(msg.String())
			return m.goTo(k)
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model[T]) View() string {
	var b strings.Builder

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		if !m.static {
			b.WriteString(hintStyle.Render("Pulsa r para reintentar"))
		}
		return b.String()

	case m.result == nil:
		b.WriteString(m.skeleton())
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " Cargando…")
		b.WriteString("\n")
		return b.String()

	case len(m.result.Items) == 0:
		b.WriteString(emptyTitleStyle.Render(m.cfg.EmptyTitle))
		b.WriteString("\n")
		b.WriteString(emptyDescriptionStyle.Render(m.cfg.EmptyDescription))
		b.WriteString("\n")

	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	if m.TotalPages() > 1 {
		b.WriteString(m.pagerView())
		b.WriteString("\n")
	}
	if m.loading {
		b.WriteString(m.spinner.View() + " Actualizando…")
		b.WriteString("\n")
	}
	if !m.static {
		b.WriteString(m.help.View(Keys))
	}
	return strings.TrimRight(b.String(), "\n")
}

// skeletonRows is the placeholder height for a first load.
func skeletonRows(pageSize int) int {
	return max(1, (pageSize+1)/2)
}

func (m Model[T]) skeleton() string {
	header := make([]string, len(m.cfg.Columns))
	cells := make([]string, len(m.cfg.Columns))
	for i, c := range m.cfg.Columns {
		w := columnWidth(c.Width)
		header[i] = lipgloss.NewStyle().Width(w).MaxWidth(w).Padding(0, 1).Render(c.Header)
		cells[i] = skeletonStyle.Padding(0, 1).Render(strings.Repeat("░", max(1, w-2)))
	}

	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	for i := 0; i < skeletonRows(m.cfg.PageSize); i++ {
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func (m Model[T]) pagerView() string {
	current := m.pages.Page + 1
	parts := []string{}

	if m.pages.OnFirstPage() {
		parts = append(parts, disabledPageStyle.Render("‹"))
	} else {
		parts = append(parts, pageStyle.Render("‹"))
	}
	for _, p := range paging.Window(current, m.pages.TotalPages, 1) {
		switch p {
		case paging.Ellipsis:
			parts = append(parts, pageStyle.Render("…"))
		case current:
			parts = append(parts, activePageStyle.Render(fmt.Sprintf("[%d]", p)))
		default:
			parts = append(parts, pageStyle.Render(strconv.Itoa(p)))
		}
	}
	if m.pages.OnLastPage() {
		parts = append(parts, disabledPageStyle.Render("›"))
	} else {
		parts = append(parts, pageStyle.Render("›"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
