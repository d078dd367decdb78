package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/brainora/brainora/internal/session"
)

// ChangeFeed bridges controller change notifications into the Bubble Tea
// event loop. The controller calls Notify from its own goroutine; the TUI
// drains the channel via listenForChanges.
//
// The channel has capacity one and Notify never blocks: coalescing bursts
// of streamed fragments into a single refresh is fine because the TUI
// re-reads the full message snapshot on every refresh.
type ChangeFeed struct {
	ch chan struct{}
}

// NewChangeFeed creates a feed. Wire Notify as the controller's OnChange.
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{ch: make(chan struct{}, 1)}
}

// Notify signals that conversation state changed. Never blocks.
func (f *ChangeFeed) Notify() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

// Bubble Tea message types.
type refreshMsg struct{}

type submitDoneMsg struct {
	accepted bool
}

// listenForChanges waits for the next controller change notification.
// Returns nil when ctx is canceled so the command goroutine exits cleanly
// on shutdown.
func listenForChanges(ctx context.Context, feed *ChangeFeed) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-feed.ch:
			return refreshMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// startSubmission runs one conversation turn. The controller blocks until
// the turn reaches a terminal state; incremental updates arrive through the
// change feed meanwhile.
func (t *TUI) startSubmission(text string, mode session.Mode) tea.Cmd {
	return func() tea.Msg {
		accepted := t.controller.Submit(t.ctx, text, mode)
		return submitDoneMsg{accepted: accepted}
	}
}
