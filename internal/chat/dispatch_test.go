package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brainora/brainora/internal/session"
)

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name        string
		mode        session.Mode
		imageIntent bool
		want        Strategy
	}{
		{"creative without intent", session.ModeCreative, false, StrategyImage},
		{"creative with intent", session.ModeCreative, true, StrategyImage},
		{"default with intent", session.ModeDefault, true, StrategyImage},
		{"live with intent", session.ModeLive, true, StrategyImage},
		{"live", session.ModeLive, false, StrategyGrounded},
		{"default", session.ModeDefault, false, StrategyStream},
		{"knowledge", session.ModeKnowledge, false, StrategyStream},
		{"search", session.ModeSearch, false, StrategyStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectStrategy(tt.mode, tt.imageIntent); got != tt.want {
				t.Errorf("SelectStrategy(%q, %v) = %v, want %v",
					tt.mode, tt.imageIntent, got, tt.want)
			}
		})
	}
}

func TestSubmit_ClassifierOverridesDeclaredMode(t *testing.T) {
	gw := &mockGateway{imageRef: "data:image/png;base64,xyz"}
	c := newTestController(t, gw)

	// mode is default, but "draw a cat" matches both keyword sets.
	c.Submit(context.Background(), "draw a cat", session.ModeDefault)

	if gw.imageCalls != 1 {
		t.Errorf("image calls = %d, want 1", gw.imageCalls)
	}
	if gw.streamCalls != 0 {
		t.Errorf("stream calls = %d, want 0", gw.streamCalls)
	}
	if gw.lastImagePrompt != "draw a cat" {
		t.Errorf("prompt = %q, want the raw user text", gw.lastImagePrompt)
	}
}

func TestSubmit_CreativeAlwaysImage(t *testing.T) {
	gw := &mockGateway{imageRef: "data:image/png;base64,xyz"}
	c := newTestController(t, gw)

	// No image keywords at all; creative still selects the image strategy.
	c.Submit(context.Background(), "a quiet morning in the alps", session.ModeCreative)

	if gw.imageCalls != 1 || gw.streamCalls != 0 {
		t.Errorf("image=%d stream=%d, want image strategy only", gw.imageCalls, gw.streamCalls)
	}
}

func TestSubmit_ImageSuccess(t *testing.T) {
	gw := &mockGateway{imageRef: "data:image/png;base64,abc"}
	c := newTestController(t, gw)

	c.Submit(context.Background(), "draw a red fox picture", session.ModeDefault)

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	got := msgs[1]
	if !got.IsImageResult {
		t.Error("IsImageResult not set")
	}
	if got.ImageURL != "data:image/png;base64,abc" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
	want := `I have synthesized the visualization for: "draw a red fox picture"`
	if got.Content != want {
		t.Errorf("caption = %q, want %q", got.Content, want)
	}
	if len(c.Sessions()) != 1 {
		t.Error("image exchange not committed")
	}
}

func TestSubmit_ImageNullUsesFallbackText(t *testing.T) {
	gw := &mockGateway{imageRef: ""}
	c := newTestController(t, gw)

	c.Submit(context.Background(), "draw a red fox picture", session.ModeDefault)

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	got := msgs[1]
	if got.IsImageResult {
		t.Error("IsImageResult set on fallback")
	}
	if got.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", got.ImageURL)
	}
	if got.Content != imageFallbackText+"draw a red fox picture" {
		t.Errorf("fallback = %q", got.Content)
	}
	if !strings.Contains(got.Content, "draw a red fox picture") {
		t.Error("fallback does not echo the prompt")
	}
}

func TestSubmit_ImageErrorAppendsNothing(t *testing.T) {
	gw := &mockGateway{imageErr: errors.New("quota exceeded")}
	c := newTestController(t, gw)

	c.Submit(context.Background(), "draw a red fox picture", session.ModeDefault)

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want only the user message", len(msgs))
	}
	if c.Busy() {
		t.Error("busy not cleared after failure")
	}
	if len(c.Sessions()) != 0 {
		t.Error("failed exchange committed a session")
	}

	// The engine accepts the next submission after a failure.
	gw.imageErr = nil
	gw.imageRef = "data:image/png;base64,abc"
	if !c.Submit(context.Background(), "draw a red fox picture", session.ModeDefault) {
		t.Error("resubmission not accepted")
	}
}

func TestSubmit_Grounded(t *testing.T) {
	gw := &mockGateway{groundedReply: GroundedReply{
		Text: "Today in Lisbon it is sunny.",
		Citations: []session.Citation{
			{URI: "https://a.example", Title: "A"},
			{URI: "https://b.example", Title: "B"},
		},
	}}
	c := newTestController(t, gw)

	c.Submit(context.Background(), "weather in lisbon today", session.ModeLive)

	if gw.groundedCalls != 1 {
		t.Fatalf("grounded calls = %d, want 1", gw.groundedCalls)
	}
	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	got := msgs[1]
	if got.Content != "Today in Lisbon it is sunny." {
		t.Errorf("content = %q", got.Content)
	}
	if len(got.Citations) != 2 || got.Citations[0].Title != "A" || got.Citations[1].Title != "B" {
		t.Errorf("citations = %+v, want provider order preserved", got.Citations)
	}
}

func TestSubmit_GroundedErrorAppendsNothing(t *testing.T) {
	gw := &mockGateway{groundedErr: errors.New("transport down")}
	c := newTestController(t, gw)

	c.Submit(context.Background(), "what happened today", session.ModeLive)

	if got := len(c.Messages()); got != 1 {
		t.Errorf("messages = %d, want only the user message", got)
	}
	if len(c.Sessions()) != 0 {
		t.Error("failed exchange committed a session")
	}
	if c.Busy() {
		t.Error("busy not cleared")
	}
}
