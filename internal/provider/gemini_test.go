package provider

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/brainora/brainora/internal/session"
)

func testGateway() *Gemini {
	return &Gemini{
		proModel:    "gemini-3-pro-preview",
		flashModel:  "gemini-3-flash-preview",
		imageModel:  "gemini-2.5-flash-image",
		temperature: 0.5,
		now:         func() time.Time { return time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC) },
	}
}

func TestModelFor(t *testing.T) {
	g := testGateway()

	tests := []struct {
		mode session.Mode
		want string
	}{
		{session.ModeDefault, g.flashModel},
		{session.ModeSearch, g.flashModel},
		{session.ModeCreative, g.flashModel},
		{session.ModeKnowledge, g.proModel},
		{session.ModeLive, g.proModel},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := g.modelFor(tt.mode); got != tt.want {
				t.Errorf("modelFor(%s) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestStreamConfig(t *testing.T) {
	g := testGateway()

	tests := []struct {
		mode         session.Mode
		wantSearch   bool
		wantThinking bool
	}{
		{session.ModeDefault, false, false},
		{session.ModeKnowledge, false, true},
		{session.ModeSearch, true, false},
		{session.ModeCreative, false, false},
		{session.ModeLive, true, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			cfg := g.streamConfig(tt.mode)

			if cfg.Temperature == nil || *cfg.Temperature != 0.5 {
				t.Errorf("temperature = %v, want 0.5", cfg.Temperature)
			}
			hasSearch := len(cfg.Tools) == 1 && cfg.Tools[0].GoogleSearch != nil
			if hasSearch != tt.wantSearch {
				t.Errorf("google search tool = %v, want %v", hasSearch, tt.wantSearch)
			}
			hasThinking := cfg.ThinkingConfig != nil
			if hasThinking != tt.wantThinking {
				t.Errorf("thinking config = %v, want %v", hasThinking, tt.wantThinking)
			}
			if tt.wantThinking {
				if budget := cfg.ThinkingConfig.ThinkingBudget; budget == nil || *budget != 4000 {
					t.Errorf("thinking budget = %v, want 4000", budget)
				}
			}
			if cfg.SystemInstruction == nil {
				t.Fatal("system instruction missing")
			}
		})
	}
}

func TestEachModeHasInstruction(t *testing.T) {
	for _, mode := range session.Modes {
		if modeInstructions[mode] == "" {
			t.Errorf("mode %s has no instruction", mode)
		}
	}
}

func TestBuildContents(t *testing.T) {
	history := []session.Message{
		{Role: session.RoleUser, Content: "hello"},
		{Role: session.RoleAssistant, Content: "hi there"},
	}

	contents := buildContents(history, "how are you")

	if len(contents) != 3 {
		t.Fatalf("len(contents) = %d, want 3", len(contents))
	}
	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	wantTexts := []string{"hello", "hi there", "how are you"}
	for i, c := range contents {
		if genai.Role(c.Role) != wantRoles[i] {
			t.Errorf("contents[%d].Role = %q, want %q", i, c.Role, wantRoles[i])
		}
		if len(c.Parts) != 1 || c.Parts[0].Text != wantTexts[i] {
			t.Errorf("contents[%d] text = %+v, want %q", i, c.Parts, wantTexts[i])
		}
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "Morning"},
		{11, "Morning"},
		{12, "Afternoon"},
		{16, "Afternoon"},
		{17, "Evening"},
		{20, "Evening"},
		{21, "Night"},
		{23, "Night"},
	}
	for _, tt := range tests {
		at := time.Date(2025, 6, 3, tt.hour, 0, 0, 0, time.UTC)
		if got := timeOfDay(at); got != tt.want {
			t.Errorf("timeOfDay(hour=%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestGroundedInstruction(t *testing.T) {
	g := testGateway()

	got := g.groundedInstruction()

	if !strings.Contains(got, "You are Brainora") {
		t.Error("instruction missing persona line")
	}
	if !strings.Contains(got, "6/3/2025") {
		t.Errorf("instruction missing current date: %q", got)
	}
	if !strings.Contains(got, "Context: Morning.") {
		t.Errorf("instruction missing time-of-day context: %q", got)
	}
}

func TestExtractCitations(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{URI: "https://a.example", Title: "A"}},
					{Web: &genai.GroundingChunkWeb{URI: "", Title: "missing uri"}},
					{Web: nil},
					{Web: &genai.GroundingChunkWeb{URI: "https://b.example", Title: "B"}},
				},
			},
		}},
	}

	got := extractCitations(resp)

	want := []session.Citation{
		{URI: "https://a.example", Title: "A"},
		{URI: "https://b.example", Title: "B"},
	}
	if len(got) != len(want) {
		t.Fatalf("len(citations) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("citations[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractCitationsNoMetadata(t *testing.T) {
	if got := extractCitations(&genai.GenerateContentResponse{}); got != nil {
		t.Errorf("extractCitations(empty) = %v, want nil", got)
	}
}

func TestFirstImageDataURL(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "some preamble"},
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: raw}},
				},
			},
		}},
	}

	got := firstImageDataURL(resp)

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	if got != want {
		t.Errorf("firstImageDataURL() = %q, want %q", got, want)
	}
}

func TestFirstImageDataURLNoImage(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "only text"}}},
		}},
	}
	if got := firstImageDataURL(resp); got != "" {
		t.Errorf("firstImageDataURL() = %q, want empty", got)
	}
}

func TestImagePromptWrapping(t *testing.T) {
	got := strings.ReplaceAll(imagePromptFormat, "%s", "a red fox")
	if !strings.HasPrefix(got, "IMAGE_GENERATION_TASK:") {
		t.Errorf("prompt wrapper missing task marker: %q", got)
	}
	if !strings.Contains(got, "a red fox") {
		t.Errorf("prompt wrapper missing subject: %q", got)
	}
}
