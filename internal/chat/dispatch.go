package chat

import (
	"context"
	"fmt"

	"github.com/brainora/brainora/internal/intent"
	"github.com/brainora/brainora/internal/session"
)

// Strategy is a response-generation strategy.
type Strategy int

// Response strategies.
const (
	StrategyStream Strategy = iota
	StrategyGrounded
	StrategyImage
)

// Fixed user-visible templates, preserved verbatim from the original client.
const (
	imageCaptionFormat = `I have synthesized the visualization for: "%s"`
	imageFallbackText  = "I tried to generate an image but my visualization core encountered an issue. I'll describe it instead: "
)

// SelectStrategy maps a declared mode and the classifier result to a
// strategy. Creative always synthesizes an image; a positive classifier
// promotes any other mode to image; live selects grounded chat; everything
// else streams with the mode as a generation-style parameter.
func SelectStrategy(mode session.Mode, imageIntent bool) Strategy {
	switch {
	case mode == session.ModeCreative:
		return StrategyImage
	case imageIntent:
		return StrategyImage
	case mode == session.ModeLive:
		return StrategyGrounded
	default:
		return StrategyStream
	}
}

func (c *Controller) dispatch(ctx context.Context, history []session.Message, text string, mode session.Mode) {
	switch SelectStrategy(mode, intent.IsImageRequest(text)) {
	case StrategyImage:
		c.runImage(ctx, text)
	case StrategyGrounded:
		c.runGrounded(ctx, history, text)
	default:
		c.runStream(ctx, history, text, mode)
	}
}

// runImage calls the image operation with the raw user text. Exactly one of
// {image message, fallback message, nothing} is appended per submission:
// a reference yields the image message, an empty reference the fallback
// text, and an error nothing at all.
func (c *Controller) runImage(ctx context.Context, text string) {
	ref, err := c.gw.GenerateImage(ctx, text)
	if err != nil {
		c.logger.Error("image generation failed", "error", err)
		return
	}

	var msg session.Message
	if ref != "" {
		msg = session.NewMessage(session.RoleAssistant, fmt.Sprintf(imageCaptionFormat, text))
		msg.ImageURL = ref
		msg.IsImageResult = true
	} else {
		msg = session.NewMessage(session.RoleAssistant, imageFallbackText+text)
	}
	c.appendMessage(msg)
	c.commit(text)
}

// runGrounded calls the grounded operation with the full prior history plus
// the new text and wraps the reply into one assistant message. On error
// nothing is appended; the user may resubmit.
func (c *Controller) runGrounded(ctx context.Context, history []session.Message, text string) {
	reply, err := c.gw.ChatWithGrounding(ctx, history, text)
	if err != nil {
		c.logger.Error("grounded chat failed", "error", err)
		return
	}

	msg := session.NewMessage(session.RoleAssistant, reply.Text)
	msg.Citations = reply.Citations
	c.appendMessage(msg)
	c.commit(text)
}
