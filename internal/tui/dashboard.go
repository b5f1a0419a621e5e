package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pocket-pulse/internal/apiclient"
	"pocket-pulse/internal/domain"
	"pocket-pulse/internal/signal"
)

// Dashboard message types.
type overviewMsg apiclient.Overview
type overviewErrMsg struct{ err error }
type actionResultMsg apiclient.ActionResponse
type actionErrMsg struct{ err error }
type dashTickMsg time.Time

const dashRefreshInterval = 2 * time.Second

// DashboardModel is the Bubble Tea model for the live bot dashboard.
type DashboardModel struct {
	services Services
	overview apiclient.Overview
	derived  domain.Signal
	loaded   bool
	loading  bool
	err      error
	lastNote string

	assetIndex int
	timeIndex  int
	confidence float64
	spin       spinner.Model

	width  int
	height int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(svc Services) DashboardModel {
	return DashboardModel{
		services:   svc,
		loading:    true,
		confidence: 0.75,
		spin:       spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init fires the initial fetch and refresh tick.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetchOverviewCmd(), m.tickCmd())
}

// Update handles incoming messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewMsg:
		m.overview = apiclient.Overview(msg)
		m.derived = signal.Score(m.overview.Analysis)
		m.loaded = true
		m.loading = false
		m.err = nil
		m.syncSelection()
		return m, nil

	case overviewErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case actionResultMsg:
		m.lastNote = msg.Message
		return m, m.fetchOverviewCmd()

	case actionErrMsg:
		m.lastNote = msg.err.Error()
		return m, nil

	case dashTickMsg:
		return m, tea.Batch(m.fetchOverviewCmd(), m.tickCmd())

	case spinner.TickMsg:
		if m.loading && !m.loaded {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch msg.String() {
	case "s":
		if m.overview.Status.IsRunning {
			return m, m.postActionCmd("stop", nil)
		}
		return m, m.postActionCmd("start", nil)
	case "t":
		if m.overview.Status.IsTrading {
			return m, m.postActionCmd("stop_trading", nil)
		}
		return m, m.postActionCmd("start_trading", nil)
	case "a":
		m.assetIndex = (m.assetIndex + 1) % len(domain.SupportedAssets)
		return m, m.postActionCmd("set_asset", domain.SupportedAssets[m.assetIndex])
	case "f":
		m.timeIndex = (m.timeIndex + 1) % len(domain.SupportedTimeframes)
		return m, m.postActionCmd("set_timeframe", domain.SupportedTimeframes[m.timeIndex])
	case "+", "=":
		m.confidence = clamp(m.confidence+0.05, 0.5, 0.95)
		return m, m.postActionCmd("set_confidence", m.confidence)
	case "-":
		m.confidence = clamp(m.confidence-0.05, 0.5, 0.95)
		return m, m.postActionCmd("set_confidence", m.confidence)
	case "R":
		return m, m.fetchOverviewCmd()
	}
	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	if m.loading && !m.loaded {
		return m.spin.View() + SubtextStyle.Render(" Connecting to bot...")
	}
	if m.err != nil && !m.loaded {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	statusBox := BorderStyle.Width(m.boxWidth()).Render(m.renderStatus())
	signalBox := BorderStyle.Width(m.boxWidth()).Render(m.renderSignal())
	tradesBox := BorderStyle.Width(m.boxWidth()).Render(m.renderRecentTrades())

	sections := []string{statusBox, signalBox, tradesBox}
	if m.lastNote != "" {
		sections = append(sections, SubtextStyle.Render("  "+m.lastNote))
	}
	sections = append(sections, SubtextStyle.Render("  s start/stop  t trading  a asset  f timeframe  +/- confidence  R refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions.
func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Overview returns the last fetched overview (for testing).
func (m DashboardModel) Overview() apiclient.Overview { return m.overview }

// DerivedSignal returns the signal scored from the last analysis (for testing).
func (m DashboardModel) DerivedSignal() domain.Signal { return m.derived }

func (m DashboardModel) boxWidth() int {
	if m.width < 44 {
		return 42
	}
	return m.width - 2
}

func (m DashboardModel) renderStatus() string {
	s := m.overview.Status

	run := ErrorStyle.Render("STOPPED")
	if s.IsRunning {
		run = CandleUpStyle.Render("RUNNING")
	}
	trading := SubtextStyle.Render("trading off")
	if s.IsTrading {
		trading = CandleUpStyle.Render("trading on")
	}
	mode := "live"
	if s.SimulationMode {
		mode = "simulation"
	}

	lines := []string{
		HeaderStyle.Render("  Bot Status"),
		fmt.Sprintf("  %s  %s  (%s)", run, trading, mode),
		fmt.Sprintf("  Asset: %s @ %ds   Balance: $%.2f", s.CurrentAsset, s.CurrentTimeframe, s.Balance),
		fmt.Sprintf("  Trades this hour: %d   Pending: %d   Total: %d", s.TradesThisHour, s.PendingTrades, s.TotalTrades),
	}
	if s.AgentStats.IsTrained {
		lines = append(lines, fmt.Sprintf("  Agent: trained on %d experiences (%.0f%% wins)",
			s.AgentStats.TotalExperiences, s.AgentStats.WinRate*100))
	} else {
		lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  Agent: warming up (%d experiences)", s.AgentStats.TotalExperiences)))
	}
	if s.KnowledgeStats.Concepts > 0 {
		lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  Knowledge: %d concepts from %d documents",
			s.KnowledgeStats.Concepts, s.KnowledgeStats.Documents)))
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderSignal() string {
	lines := []string{
		HeaderStyle.Render("  Current Signal"),
		"  Trend: " + RenderTrendBadge(m.overview.Analysis.Trend),
		"  " + FormatSignalLine(m.derived),
	}
	if len(m.overview.Analysis.Patterns) > 0 {
		lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  %d pattern(s) detected", len(m.overview.Analysis.Patterns))))
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderRecentTrades() string {
	lines := []string{HeaderStyle.Render("  Recent Trades")}

	count := len(m.overview.Trades.History)
	if count > 5 {
		count = 5
	}
	for i := 0; i < count; i++ {
		lines = append(lines, "  "+FormatTrade(m.overview.Trades.History[i]))
	}
	if count == 0 {
		lines = append(lines, SubtextStyle.Render("  No trades yet"))
	} else {
		lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  Win rate: %.0f%% over %d trades",
			m.overview.Trades.WinRate*100, m.overview.Trades.Total)))
	}
	return strings.Join(lines, "\n")
}

// syncSelection aligns the local cycling indexes with what the server
// reports, so the next keypress cycles from the real state.
func (m *DashboardModel) syncSelection() {
	for i, a := range domain.SupportedAssets {
		if a == m.overview.Status.CurrentAsset {
			m.assetIndex = i
			break
		}
	}
	for i, tf := range domain.SupportedTimeframes {
		if tf == m.overview.Status.CurrentTimeframe {
			m.timeIndex = i
			break
		}
	}
}

func (m DashboardModel) fetchOverviewCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.API == nil {
			return overviewErrMsg{err: fmt.Errorf("api client not available")}
		}
		overview, err := m.services.API.Overview(context.Background())
		if err != nil {
			return overviewErrMsg{err: err}
		}
		return overviewMsg(overview)
	}
}

func (m DashboardModel) postActionCmd(action string, value any) tea.Cmd {
	return func() tea.Msg {
		if m.services.API == nil {
			return actionErrMsg{err: fmt.Errorf("api client not available")}
		}
		resp, err := m.services.API.PostAction(context.Background(), action, value)
		if err != nil {
			return actionErrMsg{err: err}
		}
		return actionResultMsg(resp)
	}
}

func (m DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(dashRefreshInterval, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
