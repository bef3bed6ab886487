package main

import (
	"context"
	"fmt"
	"time"

	cl "marketsim/internal/cli"
	"marketsim/internal/market"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	watchMetaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	watchHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type refreshMsg struct {
	state     cl.MarketState
	companies []market.Snapshot
	err       error
}

type watchModel struct {
	client *cl.Client
	every  time.Duration

	table   table.Model
	state   cl.MarketState
	lastErr error
}

func runWatch(client *cl.Client, every time.Duration) error {
	columns := []table.Column{
		{Title: "TICKER", Width: 7},
		{Title: "NAME", Width: 24},
		{Title: "SECTOR", Width: 12},
		{Title: "PRICE", Width: 10},
		{Title: "P/E", Width: 7},
		{Title: "P/S", Width: 7},
		{Title: "MARGIN", Width: 8},
		{Title: "STATE", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(20),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	m := watchModel{client: client, every: every, table: t}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m watchModel) refresh() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	state, err := m.client.Market(ctx)
	if err != nil {
		return refreshMsg{err: err}
	}
	companies, err := m.client.Companies(ctx)
	if err != nil {
		return refreshMsg{err: err}
	}
	return refreshMsg{state: state, companies: companies}
}

func (m watchModel) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.every, func(time.Time) tea.Msg {
		return m.refresh()
	})
}

func (m watchModel) Init() tea.Cmd {
	return m.refresh
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 6)
	case refreshMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, m.scheduleRefresh()
		}
		m.lastErr = nil
		m.state = msg.state
		rows := make([]table.Row, 0, len(msg.companies))
		for _, s := range msg.companies {
			state := "ok"
			if s.Bankrupt {
				state = "dead"
			}
			rows = append(rows, table.Row{
				s.Ticker,
				truncate(s.Name, 24),
				truncate(s.Sector, 12),
				fmt.Sprintf("%.2f", s.Price),
				formatPE(s.PETTM),
				fmt.Sprintf("%.2f", s.PSTTM),
				fmt.Sprintf("%+.1f%%", s.Margin*100),
				state,
			})
		}
		m.table.SetRows(rows)
		return m, m.scheduleRefresh()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m watchModel) View() string {
	title := watchTitleStyle.Render(fmt.Sprintf("MARKET WATCH  week %d", m.state.Macro.Week))
	meta := watchMetaStyle.Render(fmt.Sprintf(
		"rate %.2f%%  inflation %.2f%%  sentiment %+.2f  multiple %.1fx",
		m.state.Macro.InterestRate*100,
		m.state.Macro.Inflation*100,
		m.state.Macro.Sentiment,
		m.state.ImpliedMultiple,
	))
	view := title + "\n" + meta + "\n" + m.table.View() + "\n"
	if m.lastErr != nil {
		view += watchErrStyle.Render("refresh failed: "+m.lastErr.Error()) + "\n"
	}
	view += watchHelpStyle.Render("q to quit")
	return view
}
