// Package tui provides the Bubble Tea terminal interface for Brainora.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/brainora/brainora/internal/chat"
	"github.com/brainora/brainora/internal/session"
)

// State represents TUI state machine.
type State int

// TUI state machine states.
const (
	StateInput   State = iota // Awaiting user input
	StateWorking              // A submission is in flight
)

// maxHistory bounds command history entries.
const maxHistory = 100

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Two separator lines (above and below input)
	helpLines      = 1 // Help bar height
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
)

// TUI is the Bubble Tea model for the Brainora terminal interface.
//
// The conversation controller is the single source of truth: the TUI never
// stores messages itself, it re-reads the controller snapshot on every
// change notification. Streamed fragments therefore appear incrementally
// because the controller mutates the in-progress message between refreshes.
type TUI struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	mode      session.Mode
	notice    string // transient system line shown under messages
	lastCtrlC time.Time

	spinner spinner.Model
	viewBuf strings.Builder // Reusable buffer for View() to reduce allocations

	// Scrollable message viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Dependencies
	controller *chat.Controller
	feed       *ChangeFeed
	ctx        context.Context
	ctxCancel  context.CancelFunc // For canceling all operations on exit

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// New creates a TUI model for chat interaction.
// Returns error if required dependencies are nil.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, controller *chat.Controller, feed *ChangeFeed) (*TUI, error) {
	if controller == nil {
		return nil, errors.New("tui.New: controller is required")
	}
	if feed == nil {
		return nil, errors.New("tui.New: change feed is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}

	// Create cancellable context for cleanup on exit
	ctx, cancel := context.WithCancel(ctx)

	// Create textarea for multi-line input
	// Enter submits, Shift+Enter adds newline (default behavior)
	ta := textarea.New()
	ta.Placeholder = "Ask anything, or ask for an image..."
	ta.SetHeight(1)
	ta.SetWidth(120) // Updated on WindowSizeMsg
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	// No background colors, just simple text
	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Viewport with built-in keyboard handling disabled; keys are routed
	// explicitly in handleKey to avoid conflicts with the textarea.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	h := help.New()

	return &TUI{
		controller: controller,
		feed:       feed,
		ctx:        ctx,
		ctxCancel:  cancel,
		input:      ta,
		mode:       session.ModeDefault,
		spinner:    sp,
		viewport:   vp,
		help:       h,
		keys:       newKeyMap(),
		styles:     DefaultStyles(),
		history:    make([]string, 0, maxHistory),
		markdown:   newMarkdownRenderer(80),
		width:      80, // Default width until WindowSizeMsg arrives
	}, nil
}

// Init implements tea.Model.
func (t *TUI) Init() tea.Cmd {
	t.rebuildViewportContent()
	return tea.Batch(
		textarea.Blink,
		t.spinner.Tick,
		t.input.Focus(),
		listenForChanges(t.ctx, t.feed),
	)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires type switch on all message types
func (t *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return t.handleKey(msg)

	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height

		// Calculate viewport height: total - input - separators - help
		inputHeight := t.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		t.viewport.SetWidth(msg.Width)
		t.viewport.SetHeight(vpHeight)
		t.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		t.help.SetWidth(msg.Width)
		t.markdown.UpdateWidth(msg.Width)

		t.rebuildViewportContent()
		return t, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return t, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		if t.state == StateWorking {
			t.rebuildViewportContent()
		}
		return t, cmd

	case refreshMsg:
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, listenForChanges(t.ctx, t.feed)

	case submitDoneMsg:
		t.state = StateInput
		if !msg.accepted {
			t.notice = "(still working on the previous request)"
		}
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, t.input.Focus()
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// View implements tea.Model.
// Uses AltScreen with viewport for scrollable message history.
func (t *TUI) View() tea.View {
	t.viewBuf.Reset()

	_, _ = t.viewBuf.WriteString(t.viewport.View())
	_, _ = t.viewBuf.WriteString("\n")

	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	// Input prompt stays visible while a submission is in flight so the
	// user can prepare the next message.
	_, _ = t.viewBuf.WriteString(t.styles.Prompt.Render("> "))
	_, _ = t.viewBuf.WriteString(t.input.View())
	_, _ = t.viewBuf.WriteString("\n")

	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	_, _ = t.viewBuf.WriteString(t.renderStatusBar())

	v := tea.NewView(t.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport content from the
// controller's message snapshot. Called on every change notification.
func (t *TUI) rebuildViewportContent() {
	var b strings.Builder

	_, _ = b.WriteString(t.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(t.styles.RenderWelcomeTips())
	_, _ = b.WriteString("\n")

	for _, msg := range t.controller.Messages() {
		t.renderMessage(&b, msg)
	}

	if t.notice != "" {
		_, _ = b.WriteString(t.styles.System.Render(t.notice))
		_, _ = b.WriteString("\n\n")
	}

	// Working indicator, shown until the first fragment lands
	if t.state == StateWorking {
		_, _ = b.WriteString(t.spinner.View())
		_, _ = b.WriteString(" Thinking...\n\n")
	}

	t.viewport.SetContent(b.String())
}

// renderMessage writes one conversation message with role prefix,
// optional image marker, and citations.
func (t *TUI) renderMessage(b *strings.Builder, msg session.Message) {
	switch msg.Role {
	case session.RoleUser:
		_, _ = b.WriteString(t.styles.User.Render("You> "))
		_, _ = b.WriteString(msg.Content)
	case session.RoleAssistant:
		_, _ = b.WriteString(t.styles.Assistant.Render("Brainora> "))
		_, _ = b.WriteString(t.markdown.Render(msg.Content))
		if msg.ImageURL != "" {
			_, _ = b.WriteString("\n")
			_, _ = b.WriteString(t.styles.Image.Render(
				fmt.Sprintf("  [image attached, %d KB; run `brainora export` to save]", len(msg.ImageURL)/1024)))
		}
		for i, c := range msg.Citations {
			_, _ = b.WriteString("\n")
			_, _ = b.WriteString(t.styles.Citation.Render(
				fmt.Sprintf("  [%d] %s (%s)", i+1, c.Title, c.URI)))
		}
	}
	_, _ = b.WriteString("\n\n")
}

// renderSeparator returns a horizontal line separator.
func (t *TUI) renderSeparator() string {
	width := t.width
	if width <= 0 {
		width = 80
	}
	return t.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns the mode indicator plus state-appropriate
// keyboard shortcut help.
func (t *TUI) renderStatusBar() string {
	var bindings []key.Binding
	switch t.state {
	case StateInput:
		bindings = []key.Binding{
			t.keys.Submit, t.keys.NewLine, t.keys.Mode,
			t.keys.History, t.keys.Quit, t.keys.ScrollUp,
		}
	case StateWorking:
		bindings = []key.Binding{
			t.keys.ScrollUp, t.keys.ScrollDown, t.keys.Quit,
		}
	}
	return t.styles.Mode.Render("["+string(t.mode)+"] ") + t.help.ShortHelpView(bindings)
}

// cycleMode advances to the next conversation mode.
func (t *TUI) cycleMode() {
	for i, m := range session.Modes {
		if m == t.mode {
			t.mode = session.Modes[(i+1)%len(session.Modes)]
			return
		}
	}
	t.mode = session.ModeDefault
}
