// Package tui renders the hearth watch screen: a terminal stand-in for
// the pocket device's display, polling the daemon over its console
// API. Three screens cycle with tab; the care keys map to the two
// hardware buttons.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lazypower/hearth/internal/client"
)

const pollEvery = 2 * time.Second

type screen int

const (
	screenSoul screen = iota
	screenStats
	screenLink
	screenCount
)

func (s screen) title() string {
	switch s {
	case screenSoul:
		return "soul"
	case screenStats:
		return "stats"
	default:
		return "link"
	}
}

type (
	tickMsg   time.Time
	statusMsg *client.StatusReport
	flashMsg  string
	errMsg    struct{ err error }
)

// Model is the watch screen state.
type Model struct {
	client *client.Client
	screen screen
	report *client.StatusReport
	err    error
	flash  string
	width  int
}

// NewModel builds a watch model around a console client.
func NewModel(c *client.Client) Model {
	return Model{client: c, width: 80}
}

// Run starts the watch screen and blocks until the user quits.
func Run(c *client.Client) error {
	_, err := tea.NewProgram(NewModel(c), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus, tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchStatus() tea.Msg {
	report, err := m.client.Status()
	if err != nil {
		return errMsg{err}
	}
	return statusMsg(report)
}

func (m Model) sendCare(kind string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.client.Care(kind)
		if err != nil {
			return errMsg{err}
		}
		return flashMsg(res.Reply)
	}
}

func (m Model) sendSync() tea.Msg {
	if _, err := m.client.Sync(); err != nil {
		return errMsg{err}
	}
	return flashMsg("synced with the village")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.screen = (m.screen + 1) % screenCount
			return m, nil
		case "a":
			return m, m.sendCare("love")
		case "b":
			return m, m.sendCare("poke")
		case "s":
			return m, m.sendSync
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchStatus, tick())

	case statusMsg:
		m.report = msg
		m.err = nil
		return m, nil

	case flashMsg:
		m.flash = string(msg)
		// A press changes the soul; show it right away.
		return m, m.fetchStatus

	case errMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(BadStyle.Render("cannot reach the hearth daemon"))
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render(m.err.Error()))
		b.WriteString("\n")
	case m.report == nil:
		b.WriteString(LabelStyle.Render("waking..."))
		b.WriteString("\n")
	default:
		switch m.screen {
		case screenSoul:
			b.WriteString(m.soulView())
		case screenStats:
			b.WriteString(m.statsView())
		case screenLink:
			b.WriteString(m.linkView())
		}
	}

	if m.flash != "" {
		b.WriteString("\n")
		b.WriteString(FlashStyle.Render(m.flash))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("tab: screen • a: love • b: poke • s: sync • q: quit"))
	return b.String()
}

func (m Model) header() string {
	tabs := make([]string, 0, int(screenCount))
	for s := screen(0); s < screenCount; s++ {
		style := TabStyle
		if s == m.screen {
			style = ActiveTabStyle
		}
		tabs = append(tabs, style.Render(s.title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		TitleStyle.Render("hearth"),
		strings.Join(tabs, ""),
	)
}

func (m Model) soulView() string {
	r := m.report
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s\n\n",
		StateStyle.Render(r.State),
		LabelStyle.Render("("+r.Expression+")"),
		ValueStyle.Render(r.Agent),
	)
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("E     "), ValueStyle.Render(fmt.Sprintf("%.3f", r.E)))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("floor "), ValueStyle.Render(fmt.Sprintf("%.3f", r.EFloor)))
	fmt.Fprintf(&b, "%s %s\n\n", LabelStyle.Render("peak  "), ValueStyle.Render(fmt.Sprintf("%.3f", r.EPeak)))
	b.WriteString(gauge(r.E, r.EFloor, r.EPeak, 40))
	b.WriteString("\n")
	if r.Cloud.MOTD != "" {
		b.WriteString("\n")
		b.WriteString(MOTDStyle.Render("« " + r.Cloud.MOTD + " »"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statsView() string {
	r := m.report
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("together    "), ValueStyle.Render(fmt.Sprintf("%.1f days", r.DaysTogether)))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("interactions"), ValueStyle.Render(fmt.Sprintf("%d", r.Interactions)))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("total care  "), ValueStyle.Render(fmt.Sprintf("%.1f", r.TotalCare)))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("chats       "), ValueStyle.Render(fmt.Sprintf("%d", r.Chats)))
	fmt.Fprintf(&b, "%s %s\n\n", LabelStyle.Render("syncs       "), ValueStyle.Render(fmt.Sprintf("%d", r.Syncs)))

	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("curiosity   "), traitBar(r.Curiosity))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("playfulness "), traitBar(r.Playfulness))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("wisdom      "), traitBar(r.Wisdom))

	if len(r.CareTotals) > 0 {
		b.WriteString("\n")
		for _, ct := range r.CareTotals {
			fmt.Fprintf(&b, "%s %s\n",
				LabelStyle.Render(fmt.Sprintf("%-12s", ct.Kind)),
				ValueStyle.Render(fmt.Sprintf("%d times, %.1f care", ct.Count, ct.Intensity)))
		}
	}
	return b.String()
}

func (m Model) linkView() string {
	r := m.report
	var b strings.Builder

	switch {
	case !r.Cloud.Configured:
		b.WriteString(LabelStyle.Render("not paired with a village"))
		b.WriteString("\n")
		return b.String()
	case r.Cloud.Offline:
		b.WriteString(BadStyle.Render("OFFLINE"))
	case r.Cloud.Connected:
		b.WriteString(GoodStyle.Render("CONNECTED"))
	default:
		b.WriteString(WarnStyle.Render("IDLE"))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("token   "), yesNo(r.Cloud.TokenValid, "valid", "revoked"))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("billing "), yesNo(r.Cloud.BillingOK, "ok", "limit reached"))
	if r.Cloud.MessagesLimit > 0 {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("quota   "),
			ValueStyle.Render(fmt.Sprintf("%d / %d", r.Cloud.MessagesUsed, r.Cloud.MessagesLimit)))
	}
	if r.Cloud.Tier != "" {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("tier    "), ValueStyle.Render(r.Cloud.Tier))
	}
	if r.Cloud.Failures > 0 {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("failures"),
			WarnStyle.Render(fmt.Sprintf("%d (backoff %.0fs)", r.Cloud.Failures, r.Cloud.BackoffSecs)))
	}
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("queued  "),
		ValueStyle.Render(fmt.Sprintf("%d / %d", r.Queue.Pending, r.Queue.Capacity)))
	if r.Queue.Archived > 0 {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("archived"),
			ValueStyle.Render(fmt.Sprintf("%d for review", r.Queue.Archived)))
	}
	return b.String()
}

// gauge draws E against its lived range. The scale tops out at the
// historical peak (at least 5 so a newborn bar has room), with a
// marker where the floor sits.
func gauge(e, floor, peak float64, width int) string {
	scale := peak
	if scale < 5 {
		scale = 5
	}
	fill := int(e / scale * float64(width))
	mark := int(floor / scale * float64(width))
	if fill > width {
		fill = width
	}
	if mark >= width {
		mark = width - 1
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == mark:
			b.WriteString(BarFloorStyle.Render("┃"))
		case i < fill:
			b.WriteString(BarFillStyle.Render("█"))
		default:
			b.WriteString(BarEmptyStyle.Render("░"))
		}
	}
	return b.String()
}

func traitBar(v float64) string {
	const width = 20
	fill := int(v * width)
	if fill > width {
		fill = width
	}
	return BarFillStyle.Render(strings.Repeat("▰", fill)) +
		BarEmptyStyle.Render(strings.Repeat("▱", width-fill))
}

func yesNo(ok bool, yes, no string) string {
	if ok {
		return GoodStyle.Render(yes)
	}
	return BadStyle.Render(no)
}
