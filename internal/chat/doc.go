// Package chat is the conversation orchestration engine.
//
// The [Controller] turns one user submission into a committed message pair:
// it appends the user message optimistically, selects a response strategy
// (streaming text, grounded answer, or image synthesis), drives the
// provider [Gateway], and commits the final in-memory message list back
// into the session store. The busy flag is a mutual-exclusion gate, not a
// queue — a submission while one is in flight is dropped.
//
// Strategy selection combines the declared mode with the keyword heuristic
// in [github.com/brainora/brainora/internal/intent]: creative mode always
// produces an image, and a matching heuristic promotes any other mode to
// the image strategy. This double path is a deliberate usability
// affordance.
//
// Provider failures are contained per submission: they are logged, the
// engine returns to idle, and the next submission is accepted. Nothing in
// this package retries.
package chat
