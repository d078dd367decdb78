package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the requested session does not exist in the store.
var ErrNotFound = errors.New("session not found")

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Mode selects the response strategy for a single submission.
type Mode string

// Submission modes.
const (
	ModeDefault   Mode = "default"
	ModeKnowledge Mode = "knowledge"
	ModeSearch    Mode = "search"
	ModeCreative  Mode = "creative"
	ModeLive      Mode = "live"
)

// Modes lists all submission modes in display order.
var Modes = []Mode{ModeDefault, ModeKnowledge, ModeSearch, ModeCreative, ModeLive}

// ParseMode maps a string to a Mode. Unknown values fall back to ModeDefault.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeKnowledge, ModeSearch, ModeCreative, ModeLive:
		return Mode(s)
	default:
		return ModeDefault
	}
}

// Citation is a grounding source attached to an assistant message.
// Order is significant: the store preserves provider-returned order.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Message is a single conversation message. Committed messages are
// immutable; only the in-progress assistant message is mutated, and only by
// the streaming aggregator.
type Message struct {
	ID            string     `json:"id"`
	Role          Role       `json:"role"`
	Content       string     `json:"content"`
	Timestamp     time.Time  `json:"timestamp"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	IsImageResult bool       `json:"isImageResult,omitempty"`
	Citations     []Citation `json:"citations,omitempty"`
}

// NewMessage creates a message with a guaranteed-unique identifier.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Session is a persisted, titled conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Messages = CopyMessages(s.Messages)
	return &cp
}

// CopyMessages returns an independent copy of a message slice.
func CopyMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// TitleMaxLength is the number of leading characters of the first user
// message used as the session title.
const TitleMaxLength = 30

// TitleFromInput derives a session title from the first user message.
func TitleFromInput(input string) string {
	runes := []rune(input)
	if len(runes) > TitleMaxLength {
		runes = runes[:TitleMaxLength]
	}
	return string(runes)
}

// User is the signed-in identity. Its absence means signed out.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
