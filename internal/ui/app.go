package ui

import (
	"fmt"
	"strings"

	"ammonit/internal/live"
	"ammonit/internal/nav"
	"ammonit/internal/session"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CounterMsg carries a live counter update into the program.
type CounterMsg live.CounterMessage

// LiveStateMsg carries a live channel state transition into the program.
type LiveStateMsg live.State

// AppModel is the console: one tab per collection, a location line, and a
// footer with the live machine counter.
type AppModel struct {
	router  *nav.Router
	session *session.Context
	tabs    []Tab
	active  int

	counter    int
	hasCounter bool
	liveState  live.State
	liveOff    bool

	help     help.Model
	showHelp bool
	width    int
	height   int
}

// NewAppModel opens on the router's current route, falling back to the
// first tab.
func NewAppModel(router *nav.Router, tabs []Tab, sess *session.Context) AppModel {
	m := AppModel{
		router:  router,
		session: sess,
		tabs:    tabs,
		help:    help.New(),
		liveOff: true,
	}
	if i := m.tabIndex(router.Current().Route); i >= 0 {
		m.active = i
	} else if len(tabs) > 0 {
		router.Navigate(tabs[0].Route)
	}
	return m
}

// WithLive shows the live counter in the footer.
func (m AppModel) WithLive() AppModel {
	m.liveOff = false
	m.liveState = live.Connecting
	return m
}

func (m AppModel) tabIndex(route string) int {
	for i, t := range m.tabs {
		if t.Route == route {
			return i
		}
	}
	return -1
}

func (m AppModel) tabByID(id string) int {
	for i, t := range m.tabs {
		if t.View.ID() == id {
			return i
		}
	}
	return -1
}

// ActiveTab returns the tab on screen.
func (m AppModel) ActiveTab() Tab {
	return m.tabs[m.active]
}

func (m AppModel) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.tabs))
	for _, t := range m.tabs {
		cmds = append(cmds, t.View.Init())
	}
	return tea.Batch(cmds...)
}

func (m *AppModel) updateTab(i int, msg tea.Msg) tea.Cmd {
	next, cmd := m.tabs[i].View.Update(msg)
	m.tabs[i].View = next.(CollectionView)
	return cmd
}

func (m AppModel) switchTo(i int) AppModel {
	n := len(m.tabs)
	if n == 0 {
		return m
	}
	m.active = ((i % n) + n) % n
	m.router.Navigate(m.tabs[m.active].Route)
	return m
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		cmds := make([]tea.Cmd, len(m.tabs))
		for i := range m.tabs {
			cmds[i] = m.updateTab(i, msg)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		switch {
		case key.Matches(msg, appKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, appKeys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, appKeys.NextTab):
			return m.switchTo(m.active + 1), nil
		case key.Matches(msg, appKeys.PrevTab):
			return m.switchTo(m.active - 1), nil
		case key.Matches(msg, appKeys.Back):
			loc, ok := m.router.Back()
			if !ok {
				return m, nil
			}
			i := m.tabIndex(loc.Route)
			if i < 0 {
				return m, nil
			}
			m.active = i
			return m, m.updateTab(i, nav.ChangedMsg{Route: loc.Route})
		}
		return m, m.updateTab(m.active, msg)

	case CounterMsg:
		m.counter = msg.Counter
		m.hasCounter = true
		return m, nil

	case LiveStateMsg:
		m.liveState = live.State(msg)
		return m, nil

	case nav.ChangedMsg:
		if i := m.tabIndex(msg.Route); i >= 0 {
			return m, m.updateTab(i, msg)
		}
		return m, nil

	case spinner.TickMsg:
		cmds := make([]tea.Cmd, len(m.tabs))
		for i := range m.tabs {
			cmds[i] = m.updateTab(i, msg)
		}
		return m, tea.Batch(cmds...)

	case interface{ PagerID() string }:
		if i := m.tabByID(msg.PagerID()); i >= 0 {
			return m, m.updateTab(i, msg)
		}
		return m, nil
	}
	return m, nil
}

func (m AppModel) tabBar() string {
	parts := make([]string, 0, len(m.tabs)+1)
	parts = append(parts, headerStyle.Render("ammonit"))
	for i, t := range m.tabs {
		if i == m.active {
			parts = append(parts, activeTabStyle.Render(t.Title))
		} else {
			parts = append(parts, tabStyle.Render(t.Title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m AppModel) footer() string {
	var parts []string
	if !m.liveOff {
		switch m.liveState {
		case live.Open:
			value := "-"
			if m.hasCounter {
				value = fmt.Sprint(m.counter)
			}
			parts = append(parts, "Máquinas: "+counterStyle.Render(value))
		case live.Connecting:
			parts = append(parts, reconnectingStyle.Render("Conectando…"))
		case live.ClosedUnexpected:
			parts = append(parts, reconnectingStyle.Render("Reconectando…"))
		case live.ClosedIntentional:
			parts = append(parts, "Desconectado")
		}
	}
	if u, ok := m.session.Current(); ok {
		parts = append(parts, u.Email)
	}
	parts = append(parts, m.help.ShortHelpView(appKeys.ShortHelp()))
	return footerStyle.Render(strings.Join(parts, "  │  "))
}

func (m AppModel) View() string {
	if len(m.tabs) == 0 {
		return "No hay colecciones configuradas\n"
	}
	if m.showHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n")
	b.WriteString(locationStyle.Render(m.router.Location(m.ActiveTab().Route).String()))
	b.WriteString("\n")
	b.WriteString(m.ActiveTab().View.View())
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

// NewProgram wraps m in a full-screen program. Callers bridge the live
// channel into it with LiveCallbacks before running it.
func NewProgram(m AppModel, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
}

// Sender is the part of *tea.Program that accepts external messages.
type Sender interface {
	Send(msg tea.Msg)
}

// LiveCallbacks returns the subscriber and state observer to pass to
// live.Dial so updates reach the program's update loop.
func LiveCallbacks(p Sender) (func(live.CounterMessage), func(live.State)) {
	onUpdate := func(msg live.CounterMessage) { p.Send(CounterMsg(msg)) }
	onState := func(s live.State) { p.Send(LiveStateMsg(s)) }
	return onUpdate, onState
}
