package chat

import (
	"context"
	"iter"

	"github.com/brainora/brainora/internal/session"
)

// GroundedReply is the result of a grounded chat call. Citations carry the
// provider-returned order, which is also the display order.
type GroundedReply struct {
	Text      string
	Citations []session.Citation
}

// Gateway is the boundary to the external generation provider. The
// interface is defined here, by its consumer; the Gemini adapter lives in
// internal/provider.
//
// All three operations are the only suspension points of the engine: local
// state mutation is synchronous with respect to each response or fragment
// received.
type Gateway interface {
	// StreamChat returns a finite, non-restartable fragment sequence for
	// the given history and new input. The sequence may yield an error on
	// transport failure; consumers must stop and keep what they have.
	StreamChat(ctx context.Context, history []session.Message, text string, mode session.Mode) iter.Seq2[string, error]

	// ChatWithGrounding returns a single grounded reply. The citations
	// list may be empty.
	ChatWithGrounding(ctx context.Context, history []session.Message, text string) (GroundedReply, error)

	// GenerateImage returns an image reference for the prompt. An empty
	// reference with a nil error means the provider could not produce an
	// image; that is not a failure and selects the fallback-text path.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
