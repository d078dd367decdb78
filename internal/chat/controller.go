package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brainora/brainora/internal/session"
)

// Config contains all required parameters for the Controller.
type Config struct {
	Gateway Gateway
	Store   *session.Store
	Logger  *slog.Logger

	// OnChange, if set, is invoked after every observable state change:
	// the optimistic user append, each streamed fragment applied, and the
	// terminal state of a submission. It is called without internal locks
	// held and must not block.
	OnChange func()
}

func (cfg Config) validate() error {
	if cfg.Gateway == nil {
		return errors.New("gateway is required")
	}
	if cfg.Store == nil {
		return errors.New("session store is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Controller owns the active conversation: the active session id, the
// in-memory message list, and the busy flag. It is the single writer of
// both the message list and the session list.
//
// The engine is logically single-flight — busy submissions are dropped, not
// queued — but state is mutex-guarded because the UI reads snapshots from
// its own goroutine.
type Controller struct {
	gw       Gateway
	store    *session.Store
	logger   *slog.Logger
	onChange func()

	mu       sync.RWMutex
	activeID string
	messages []session.Message
	busy     bool
}

// New creates a Controller with required configuration.
func New(cfg Config) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Controller{
		gw:       cfg.Gateway,
		store:    cfg.Store,
		logger:   cfg.Logger,
		onChange: cfg.OnChange,
	}, nil
}

// Messages returns a snapshot copy of the in-memory message list.
func (c *Controller) Messages() []session.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return session.CopyMessages(c.messages)
}

// ActiveSessionID returns the active session id, or "" when no session is
// active ("new chat").
func (c *Controller) ActiveSessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeID
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.busy
}

// Sessions returns a snapshot of the persisted session list.
func (c *Controller) Sessions() []*session.Session {
	return c.store.Sessions()
}

// Submit runs one user submission to its terminal state and reports whether
// it was accepted. A blank input or a submission while busy is dropped.
//
// Submit blocks until the strategy completes; callers wanting live updates
// run it on their own goroutine and observe progress via Config.OnChange.
// Failures inside the strategy are contained: logged, never returned, and
// busy always clears.
func (c *Controller) Submit(ctx context.Context, rawText string, mode session.Mode) bool {
	if strings.TrimSpace(rawText) == "" {
		return false
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		c.logger.Debug("submission dropped, already busy")
		return false
	}
	c.busy = true
	// History for the provider excludes the message being submitted.
	history := session.CopyMessages(c.messages)
	c.messages = append(c.messages, session.NewMessage(session.RoleUser, rawText))
	c.mu.Unlock()
	c.notify()

	c.dispatch(ctx, history, rawText, mode)

	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
	c.notify()
	return true
}

// NewConversation clears the active session id and the in-memory message
// list. The session store is untouched.
func (c *Controller) NewConversation() {
	c.mu.Lock()
	c.activeID = ""
	c.messages = nil
	c.mu.Unlock()
	c.notify()
}

// SelectSession makes the given session active and replaces the in-memory
// messages with its stored history. Unknown ids are a no-op.
func (c *Controller) SelectSession(id string) {
	sess, ok := c.store.Session(id)
	if !ok {
		return
	}
	c.mu.Lock()
	c.activeID = sess.ID
	c.messages = sess.Messages
	c.mu.Unlock()
	c.notify()
}

// DeleteSession removes a session from the store. Deleting the active
// session is equivalent to NewConversation; unknown ids are a no-op.
func (c *Controller) DeleteSession(id string) {
	if err := c.store.Delete(id); err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			c.logger.Warn("deleting session", "id", id, "error", err)
		}
		return
	}
	if c.ActiveSessionID() == id {
		c.NewConversation()
		return
	}
	c.notify()
}

// ReorderSession swaps a session with its immediate neighbor. Boundary and
// unknown-id reorders are no-ops.
func (c *Controller) ReorderSession(id string, dir session.Direction) {
	if err := c.store.Reorder(id, dir); err != nil {
		c.logger.Warn("reordering session", "id", id, "error", err)
		return
	}
	c.notify()
}

// appendMessage adds a message to the in-memory list.
func (c *Controller) appendMessage(msg session.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	c.notify()
}

// setLastContent replaces the content of the trailing (in-progress
// assistant) message. Replacement, not delta append: the visible message is
// always a fully formed string.
func (c *Controller) setLastContent(content string) {
	c.mu.Lock()
	if n := len(c.messages); n > 0 {
		c.messages[n-1].Content = content
	}
	c.mu.Unlock()
	c.notify()
}

// dropLastMessage removes the trailing message. Used when a stream fails
// before producing any content, so the empty placeholder does not survive.
func (c *Controller) dropLastMessage() {
	c.mu.Lock()
	if n := len(c.messages); n > 0 {
		c.messages = c.messages[:n-1]
	}
	c.mu.Unlock()
	c.notify()
}

// commit writes the in-memory message list back into the session store.
// This is the only point in the submit flow that mutates the store. With no
// active session one is created lazily, titled from the submission text,
// and prepended to the list.
func (c *Controller) commit(submittedText string) {
	c.mu.Lock()
	msgs := session.CopyMessages(c.messages)
	active := c.activeID
	c.mu.Unlock()

	if active == "" {
		sess := &session.Session{
			ID:        uuid.NewString(),
			Title:     session.TitleFromInput(submittedText),
			Messages:  msgs,
			CreatedAt: time.Now(),
		}
		if err := c.store.Prepend(sess); err != nil {
			c.logger.Warn("creating session", "error", err)
			return
		}
		c.mu.Lock()
		c.activeID = sess.ID
		c.mu.Unlock()
		c.logger.Debug("session created", "id", sess.ID, "title", sess.Title)
		return
	}

	if err := c.store.ReplaceMessages(active, msgs); err != nil {
		c.logger.Warn("committing session", "id", active, "error", err)
	}
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
