package cmd

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brainora/brainora/internal/session"
)

func TestFilterSessions(t *testing.T) {
	sessions := []*session.Session{
		{Title: "Trip planning"},
		{Title: "Go generics question"},
		{Title: "trip photos"},
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "empty query keeps all", query: "", want: 3},
		{name: "case insensitive", query: "TRIP", want: 2},
		{name: "substring", query: "generic", want: 1},
		{name: "no match", query: "recipe", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterSessions(sessions, tt.query); len(got) != tt.want {
				t.Errorf("filterSessions(%q) kept %d, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestDecodeDataURL(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff}
	u := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	mime, data, err := decodeDataURL(u)
	if err != nil {
		t.Fatalf("decodeDataURL() error = %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", mime)
	}
	if string(data) != string(raw) {
		t.Errorf("data = %v, want %v", data, raw)
	}
}

func TestDecodeDataURL_Malformed(t *testing.T) {
	for _, u := range []string{
		"https://example.com/a.png",
		"data:image/png",
		"data:image/png,plain",
		"data:image/png;base64,!!!",
	} {
		if _, _, err := decodeDataURL(u); err == nil {
			t.Errorf("decodeDataURL(%q) should fail", u)
		}
	}
}

func TestWriteImage(t *testing.T) {
	dir := t.TempDir()
	transcript := filepath.Join(dir, "chat.txt")
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	u := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	path, err := writeImage(transcript, 0, u)
	if err != nil {
		t.Fatalf("writeImage() error = %v", err)
	}
	if want := filepath.Join(dir, "chat-image-1.png"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != string(raw) {
		t.Error("written image bytes differ from payload")
	}
}

func TestRenderTranscript(t *testing.T) {
	s := &session.Session{
		Title:     "Morning chat",
		CreatedAt: time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC),
		Messages: []session.Message{
			{Role: session.RoleUser, Content: "what's new today"},
			{
				Role:    session.RoleAssistant,
				Content: "Here is a summary.",
				Citations: []session.Citation{
					{URI: "https://news.example", Title: "Example News"},
				},
			},
			{
				Role:          session.RoleAssistant,
				Content:       `I have synthesized the visualization for: "a sunrise"`,
				ImageURL:      "data:image/png;base64,AAAA",
				IsImageResult: true,
			},
		},
	}

	got := renderTranscript(s, []string{"chat-image-3.png"})

	for _, want := range []string{
		"Morning chat",
		"You: what's new today",
		"Brainora: Here is a summary.",
		"[1] Example News (https://news.example)",
		"[image: chat-image-3.png]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "data:image/png") {
		t.Error("transcript should not embed raw data URLs")
	}
}

func TestRenderTranscript_ImageOmittedOnStdout(t *testing.T) {
	s := &session.Session{
		Title: "t",
		Messages: []session.Message{
			{Role: session.RoleAssistant, Content: "c", ImageURL: "data:image/png;base64,AAAA"},
		},
	}
	if got := renderTranscript(s, nil); !strings.Contains(got, "[image omitted") {
		t.Errorf("transcript should note omitted image:\n%s", got)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := map[string]bool{
		"chat": false, "sessions": false, "login": false,
		"logout": false, "export": false, "version": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
