package chat

import (
	"context"
	"strings"

	"github.com/brainora/brainora/internal/session"
)

// runStream drives the streaming strategy: an empty assistant placeholder
// is appended before the first fragment so the UI can show a pending
// indicator, then each fragment is concatenated onto a running buffer and
// the placeholder's content is replaced with the full buffer.
//
// Fragments are applied strictly in arrival order; empty fragments are
// skipped. A mid-stream error keeps the partially built buffer as the final
// content — best effort, not silent data loss. If the stream fails before
// any content arrived, the placeholder is withdrawn and nothing is
// committed, leaving the exchange resubmittable.
func (c *Controller) runStream(ctx context.Context, history []session.Message, text string, mode session.Mode) {
	c.appendMessage(session.NewMessage(session.RoleAssistant, ""))

	var (
		buf       strings.Builder
		streamErr error
		fragments int
	)
	for frag, err := range c.gw.StreamChat(ctx, history, text, mode) {
		if err != nil {
			streamErr = err
			break
		}
		if frag == "" {
			continue
		}
		fragments++
		buf.WriteString(frag)
		c.setLastContent(buf.String())
	}

	if streamErr != nil {
		c.logger.Error("stream failed", "error", streamErr, "fragments", fragments)
		if buf.Len() == 0 {
			c.dropLastMessage()
			return
		}
	}

	c.commit(text)
}
