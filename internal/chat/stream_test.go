package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brainora/brainora/internal/session"
)

func TestStream_ConcatenationMatchesDeliveryOrder(t *testing.T) {
	const full = "The quick brown fox jumps over the lazy dog"
	splits := [][]string{
		{full},
		{"The quick ", "brown fox ", "jumps over ", "the lazy dog"},
		{"T", "he quick brown fox jumps over the lazy do", "g"},
		strings.Split(full, ""), // one rune at a time
	}

	for i, frags := range splits {
		gw := &mockGateway{streamFragments: frags}
		c := newTestController(t, gw)

		c.Submit(context.Background(), "tell me about foxes", session.ModeDefault)

		msgs := c.Messages()
		if len(msgs) != 2 {
			t.Fatalf("split %d: messages = %d, want 2", i, len(msgs))
		}
		if msgs[1].Content != full {
			t.Errorf("split %d: content = %q, want %q", i, msgs[1].Content, full)
		}
	}
}

func TestStream_EmptyFragmentsSkipped(t *testing.T) {
	gw := &mockGateway{streamFragments: []string{"", "Hi", "", " there", ""}}
	c := newTestController(t, gw)

	c.Submit(context.Background(), "hello", session.ModeDefault)

	msgs := c.Messages()
	if msgs[len(msgs)-1].Content != "Hi there" {
		t.Errorf("content = %q, want %q", msgs[len(msgs)-1].Content, "Hi there")
	}
}

func TestStream_PlaceholderAppendedBeforeFirstFragment(t *testing.T) {
	gw := &mockGateway{streamFragments: []string{"x"}}
	c := newTestController(t, gw)

	var sawPlaceholder bool
	gw.onFragment = func(int) {
		msgs := c.Messages()
		last := msgs[len(msgs)-1]
		sawPlaceholder = last.Role == session.RoleAssistant && last.Content == ""
	}

	c.Submit(context.Background(), "hello", session.ModeDefault)
	if !sawPlaceholder {
		t.Error("no empty assistant placeholder before the first fragment")
	}
}

func TestStream_MidStreamErrorKeepsPartial(t *testing.T) {
	gw := &mockGateway{
		streamFragments: []string{"partial ", "answer"},
		streamErr:       errors.New("connection reset"),
	}
	c := newTestController(t, gw)

	c.Submit(context.Background(), "hello", session.ModeDefault)

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[1].Content != "partial answer" {
		t.Errorf("content = %q, want the partial buffer kept", msgs[1].Content)
	}
	// The partial exchange is still committed.
	sessions := c.Sessions()
	if len(sessions) != 1 || len(sessions[0].Messages) != 2 {
		t.Error("partial exchange not committed")
	}
	if c.Busy() {
		t.Error("busy not cleared after stream error")
	}
}

func TestStream_ErrorBeforeContentWithdrawsPlaceholder(t *testing.T) {
	gw := &mockGateway{streamErr: errors.New("dial timeout")}
	c := newTestController(t, gw)

	c.Submit(context.Background(), "hello", session.ModeDefault)

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want only the user message", len(msgs))
	}
	if len(c.Sessions()) != 0 {
		t.Error("empty exchange committed a session")
	}
}

func TestStream_IncrementalReplacementIsAlwaysFullString(t *testing.T) {
	gw := &mockGateway{streamFragments: []string{"ab", "cd", "ef"}}
	c := newTestController(t, gw)

	var observed []string
	gw.onFragment = func(int) {
		msgs := c.Messages()
		observed = append(observed, msgs[len(msgs)-1].Content)
	}

	c.Submit(context.Background(), "hello", session.ModeDefault)

	want := []string{"", "ab", "abcd"}
	if len(observed) != len(want) {
		t.Fatalf("observed %d states, want %d", len(observed), len(want))
	}
	for i := range want {
		if observed[i] != want[i] {
			t.Errorf("state %d = %q, want %q (replacement, not delta)", i, observed[i], want[i])
		}
	}
}
