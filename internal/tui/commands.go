package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/brainora/brainora/internal/session"
)

// Slash command constants.
const (
	cmdHelp     = "/help"
	cmdNew      = "/new"
	cmdSessions = "/sessions"
	cmdOpen     = "/open"
	cmdDelete   = "/delete"
	cmdMove     = "/move"
	cmdMode     = "/mode"
	cmdExit     = "/exit"
	cmdQuit     = "/quit"
)

const helpText = "Commands:\n" +
	"  /new             start a new conversation\n" +
	"  /sessions        list saved conversations\n" +
	"  /open <n>        open conversation n from the list\n" +
	"  /delete <n>      delete conversation n from the list\n" +
	"  /move <n> up     move conversation n up (or down) in the list\n" +
	"  /mode <name>     switch mode (default, knowledge, search, creative, live)\n" +
	"  /exit            quit\n" +
	"Shortcuts:\n" +
	"  Enter: send  Shift+Enter: newline  Tab: cycle mode\n" +
	"  Up/Down: history  PgUp/PgDn: scroll  Ctrl+D: exit"

//nolint:gocyclo // Command dispatch requires a branch per command
func (t *TUI) handleSlashCommand(raw string) (tea.Model, tea.Cmd) {
	t.input.Reset()
	t.notice = ""

	name, arg, _ := strings.Cut(raw, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case cmdHelp:
		t.notice = helpText

	case cmdNew:
		t.controller.NewConversation()

	case cmdSessions:
		t.notice = t.renderSessionList()

	case cmdOpen:
		if s, ok := t.sessionAt(arg); ok {
			t.controller.SelectSession(s.ID)
		}

	case cmdDelete:
		if s, ok := t.sessionAt(arg); ok {
			t.controller.DeleteSession(s.ID)
			t.notice = fmt.Sprintf("Deleted %q", s.Title)
		}

	case cmdMove:
		idxArg, dirArg, _ := strings.Cut(arg, " ")
		if s, ok := t.sessionAt(idxArg); ok {
			switch strings.TrimSpace(dirArg) {
			case "up":
				t.controller.ReorderSession(s.ID, session.Up)
			case "down":
				t.controller.ReorderSession(s.ID, session.Down)
			default:
				t.notice = "Expected /move <n> up or /move <n> down"
			}
		}

	case cmdMode:
		mode := session.ParseMode(arg)
		if arg != "" && string(mode) != arg {
			t.notice = fmt.Sprintf("Unknown mode %q, using %s", arg, mode)
		}
		t.mode = mode

	case cmdExit, cmdQuit:
		return t, t.cleanup()

	default:
		t.notice = "Unknown command: " + name
	}

	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, nil
}

// renderSessionList formats the saved sessions, newest first, with
// one-based indices usable by /open and /delete.
func (t *TUI) renderSessionList() string {
	sessions := t.controller.Sessions()
	if len(sessions) == 0 {
		return "No saved conversations yet."
	}

	var b strings.Builder
	_, _ = b.WriteString("Conversations:\n")
	active := t.controller.ActiveSessionID()
	for i, s := range sessions {
		marker := "  "
		if s.ID == active {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s%2d. %s (%d messages)\n", marker, i+1, s.Title, len(s.Messages))
	}
	_, _ = b.WriteString("Use /open <n> or /delete <n>.")
	return b.String()
}

// sessionAt resolves a one-based index argument against the current
// session list. Sets a notice and reports false on bad input.
func (t *TUI) sessionAt(arg string) (*session.Session, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		t.notice = "Expected a session number, see /sessions"
		return nil, false
	}
	sessions := t.controller.Sessions()
	if n < 1 || n > len(sessions) {
		t.notice = fmt.Sprintf("No session %d, see /sessions", n)
		return nil, false
	}
	return sessions[n-1], true
}
