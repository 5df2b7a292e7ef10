// Package tui is a terminal client for playing or watching a table.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/bot"
	"github.com/lox/pokeronline/internal/client"
	"github.com/lox/pokeronline/internal/deck"
	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/server"
)

const sidebarWidth = 30

// Actor sends the player's actions to the table.
type Actor interface {
	Act(a game.Action) error
}

// EventMsg wraps a table event for the Bubble Tea loop.
type EventMsg struct{ Event client.Event }

// DisconnectedMsg reports that the table feed ended.
type DisconnectedMsg struct{ Err error }

// Options configures a Model.
type Options struct {
	// Username is the seated player, or empty to spectate.
	Username string
	TableID  string
	BigBlind int
	Actor    Actor
	Events   <-chan client.Event
	// Err reports why Events closed.
	Err    func() error
	Logger *log.Logger
}

type logLine struct {
	text  string
	style *lipgloss.Style
}

// Model is the Bubble Tea model for one table.
type Model struct {
	opts   Options
	logger *log.Logger

	logViewport viewport.Model
	actionInput textinput.Model

	lines        []logLine
	snap         *game.Snapshot
	status       string
	statusErr    bool
	focusedPane  int // 0 = log, 1 = input
	width        int
	height       int
	quitting     bool
	disconnected bool
}

// New creates a model reading from opts.Events.
func New(opts Options) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "fold, check, call, raise 10, allin"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 64
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusedBorder).Bold(true)
	ti.Prompt = "> "

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Model{
		opts:        opts,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
	}
}

// Init starts listening for table events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

func (m *Model) listen() tea.Cmd {
	events := m.opts.Events
	errFn := m.opts.Err
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			var err error
			if errFn != nil {
				err = errFn()
			}
			return DisconnectedMsg{Err: err}
		}
		return EventMsg{Event: ev}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case EventMsg:
		m.handleEvent(msg.Event)
		cmds = append(cmds, m.listen())

	case DisconnectedMsg:
		m.disconnected = true
		if msg.Err != nil {
			m.addLine("Disconnected: "+msg.Err.Error(), &errorStyle)
		} else {
			m.addLine("Disconnected", &infoStyle)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
			return m, nil
		case "enter":
			if m.focusedPane == 1 {
				if cmd := m.submit(); cmd != nil {
					return m, cmd
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.logViewport, cmd = m.logViewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// submit parses and sends the typed command.
func (m *Model) submit() tea.Cmd {
	input := m.actionInput.Value()
	m.actionInput.SetValue("")

	a, err := ParseCommand(input)
	if errors.Is(err, ErrQuit) {
		m.quitting = true
		return tea.Quit
	}
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	if m.opts.Username == "" || m.opts.Actor == nil {
		m.setStatus("spectators cannot act", true)
		return nil
	}
	if !m.yourTurn() {
		m.setStatus("not your turn", true)
		return nil
	}
	if a.Kind == game.Raise && a.Amount < 0 {
		self, _ := m.snap.Player(m.opts.Username)
		a.Amount = self.Bet + self.Chips
	}
	if err := m.opts.Actor.Act(a); err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	m.setStatus("sent "+a.String(), false)
	return nil
}

func (m *Model) handleEvent(ev client.Event) {
	switch {
	case ev.Error != nil:
		m.setStatus(ev.Error.Error, true)
		m.addLine("Rejected: "+ev.Error.Error, &errorStyle)
	case ev.Snapshot != nil:
		m.lines = append(m.lines, describe(m.snap, *ev.Snapshot, m.opts.Username)...)
		snap := ev.Snapshot.Snapshot
		m.snap = &snap
		if ev.Snapshot.Cause == game.CauseAction && !m.statusErr {
			m.status = ""
		}
		m.logger.Debug("Table update", "cause", ev.Snapshot.Cause, "state", snap.State, "seq", snap.Seq)
	}
	m.logViewport.SetContent(m.renderLog())
	m.logViewport.GotoBottom()
}

func (m *Model) addLine(text string, style *lipgloss.Style) {
	m.lines = append(m.lines, logLine{text: text, style: style})
	m.logViewport.SetContent(m.renderLog())
	m.logViewport.GotoBottom()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

func (m *Model) yourTurn() bool {
	return m.snap != nil && m.opts.Username != "" && m.snap.CurrentPlayer == m.opts.Username
}

// Log returns the plain text of the game log.
func (m *Model) Log() []string {
	out := make([]string, len(m.lines))
	for i, l := range m.lines {
		out[i] = l.text
	}
	return out
}

// Status returns the last notice shown above the input.
func (m *Model) Status() string {
	return m.status
}

// Quitting reports whether the user asked to leave.
func (m *Model) Quitting() bool {
	return m.quitting
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderFor(1)).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	topHeight := max(m.height-actionHeight-4, 1)
	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(blurredBorder).
		Width(sidebarWidth).
		Height(topHeight).
		Render(m.renderSidebar())

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = topHeight
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderFor(0)).
		Render(m.logViewport.View())

	top := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar)
	return lipgloss.JoinVertical(lipgloss.Left, top, actionPane)
}

func (m *Model) borderFor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return focusedBorder
	}
	return blurredBorder
}

func (m *Model) renderLog() string {
	out := make([]string, len(m.lines))
	for i, l := range m.lines {
		if l.style != nil {
			out[i] = l.style.Render(l.text)
		} else {
			out[i] = l.text
		}
	}
	return strings.Join(out, "\n")
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Table " + m.opts.TableID))
	b.WriteString("\n\n")
	if m.snap == nil {
		b.WriteString(infoStyle.Render("connecting..."))
		return b.String()
	}

	s := m.snap
	fmt.Fprintf(&b, "%s  %s\n", warningStyle.Render(fmt.Sprintf("Pot: %d", s.Pot)), infoStyle.Render(s.State.String()))
	if s.CurrentBet > 0 {
		fmt.Fprintf(&b, "%s\n", warningStyle.Render(fmt.Sprintf("Bet: %d", s.CurrentBet)))
	}
	if len(s.Community) > 0 {
		fmt.Fprintf(&b, "Board: %s\n", formatCards(s.Community))
	}
	b.WriteString("\n")

	for _, p := range s.Players {
		marker := "  "
		if p.Username == s.CurrentPlayer {
			marker = "> "
		}
		line := fmt.Sprintf("%s%-10s %5d", marker, p.Username, p.Chips)
		if p.Bet > 0 {
			line += fmt.Sprintf(" [%d]", p.Bet)
		}
		switch {
		case p.Username == s.SmallBlind:
			line += " SB"
		case p.Username == s.BigBlind:
			line += " BB"
		}
		switch {
		case p.Status == game.StatusRetired && s.State != game.Waiting:
			line = infoStyle.Render(line + " folded")
		case p.AllIn:
			line = warningStyle.Render(line + " all-in")
		case p.Username == m.opts.Username:
			line = handInfoStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *Model) renderActionPane() string {
	var b strings.Builder

	switch {
	case m.disconnected:
		b.WriteString(errorStyle.Render("Disconnected. Ctrl+C to quit."))
	case m.opts.Username == "":
		b.WriteString(infoStyle.Render("Spectating"))
	case m.yourTurn():
		self, _ := m.snap.Player(m.opts.Username)
		b.WriteString(handInfoStyle.Render("Your turn  ") + formatCards(self.Hole))
		b.WriteString("\n")
		b.WriteString(m.renderOptions())
	case m.snap != nil && m.snap.CurrentPlayer != "":
		b.WriteString(infoStyle.Render("Waiting for " + m.snap.CurrentPlayer + "..."))
	default:
		b.WriteString(infoStyle.Render("Waiting for the next hand..."))
	}
	b.WriteString("\n")

	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(successStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(infoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn, Tab to input"))
	} else {
		b.WriteString(infoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}

func (m *Model) renderOptions() string {
	view, err := bot.NewView(*m.snap, m.opts.Username, m.opts.BigBlind)
	if err != nil {
		return ""
	}
	var parts []string
	for _, opt := range bot.LegalOptions(view) {
		switch opt.Kind {
		case game.Fold:
			parts = append(parts, errorStyle.Render("[fold]"))
		case game.Check:
			parts = append(parts, successStyle.Render("[check]"))
		case game.Call:
			parts = append(parts, successStyle.Render(fmt.Sprintf("[call %d]", min(view.ToCall(), view.Self.Chips))))
		case game.Raise:
			parts = append(parts, warningStyle.Render(fmt.Sprintf("[raise %d-%d]", opt.Min, opt.Max)))
		}
	}
	return strings.Join(parts, " ")
}

func formatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		if c.IsRed() {
			parts[i] = redCardStyle.Render(c.String())
		} else {
			parts[i] = blackCardStyle.Render(c.String())
		}
	}
	return strings.Join(parts, " ")
}

func codes(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Code()
	}
	return strings.Join(parts, " ")
}

// describe turns one table update into log lines, comparing against the
// previous snapshot to name who joined or left and which cards were dealt.
func describe(prev *game.Snapshot, d server.SnapshotData, username string) []logLine {
	s := d.Snapshot
	var out []logLine
	add := func(style *lipgloss.Style, format string, args ...any) {
		out = append(out, logLine{text: fmt.Sprintf(format, args...), style: style})
	}

	switch d.Cause {
	case "":
		add(&infoStyle, "Joined table %s: %d players, %s", s.TableID, len(s.Players), s.State)
	case game.CauseJoin:
		for _, p := range s.Players {
			if prev == nil || !hasPlayer(*prev, p.Username) {
				add(nil, "%s sits down with %d chips", p.Username, p.Chips)
			}
		}
	case game.CauseLeave:
		if prev != nil {
			for _, p := range prev.Players {
				if !hasPlayer(s, p.Username) {
					add(nil, "%s leaves the table", p.Username)
				}
			}
		}
	case game.CauseStart:
		add(&headerStyle, "Hand #%d", s.HandNumber)
		if sb, ok := s.Player(s.SmallBlind); ok {
			add(nil, "%s posts small blind %d", sb.Username, sb.Bet)
		}
		if bb, ok := s.Player(s.BigBlind); ok {
			add(nil, "%s posts big blind %d", bb.Username, bb.Bet)
		}
		if self, ok := s.Player(username); ok && len(self.Hole) > 0 {
			add(&handInfoStyle, "Dealt to you: %s", codes(self.Hole))
		}
	case game.CauseAction:
		if a := d.Action; a != nil {
			add(nil, "%s", describeAction(*a))
		}
	case game.CauseReset:
		add(&infoStyle, "Table reset")
	}

	if d.Cause == game.CauseAction && prev != nil && len(s.Community) > len(prev.Community) {
		street := s.State
		if street == game.GameOver {
			street = game.River
		}
		add(&streetStyle, "*** %s *** %s", strings.ToUpper(street.String()), codes(s.Community))
	}

	if d.To == game.GameOver && d.From != game.GameOver {
		for _, sd := range s.Showdown {
			add(nil, "%s shows %s (%s)", sd.Username, codes(sd.Hole), sd.Ranking.Describe())
		}
		for _, w := range s.Winners {
			if w.Ranking != nil {
				add(&successStyle, "%s wins %d with %s", w.Username, w.Amount, w.Ranking.Describe())
			} else {
				add(&successStyle, "%s wins %d", w.Username, w.Amount)
			}
		}
	}
	return out
}

func describeAction(a game.ActionRecord) string {
	var text string
	switch a.Action.Kind {
	case game.Fold:
		text = a.Player + " folds"
	case game.Check:
		text = a.Player + " checks"
	case game.Call:
		text = fmt.Sprintf("%s calls %d", a.Player, a.Paid)
	case game.Raise:
		text = fmt.Sprintf("%s raises to %d", a.Player, a.Action.Amount)
	default:
		text = fmt.Sprintf("%s %s", a.Player, a.Action)
	}
	if a.AllIn {
		text += " (all-in)"
	}
	return text
}

func hasPlayer(s game.Snapshot, username string) bool {
	_, ok := s.Player(username)
	return ok
}
