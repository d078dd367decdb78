// Package provider adapts the Gemini API to the chat gateway boundary.
//
// Model routing: knowledge and live conversations use the pro model, every
// other mode streams from the flash model, and image synthesis uses the
// dedicated image model. Grounded replies always run on the pro model with
// the Google Search tool attached.
package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/brainora/brainora/internal/chat"
	"github.com/brainora/brainora/internal/session"
)

// Per-mode generation instructions.
var modeInstructions = map[session.Mode]string{
	session.ModeDefault:   "You are Brainora. Answer efficiently. No repetitive introductions.",
	session.ModeKnowledge: "Deep analytical logic. Provide dense, smart information.",
	session.ModeSearch:    "Fact-check precision core. Focus purely on accurate data.",
	session.ModeCreative:  "Imaginative synthesis core. Be vivid but avoid AI cliches.",
	session.ModeLive:      "Live Pulse Intelligence. Integrate current events naturally.",
}

// emptyGroundedText substitutes for a grounded reply whose candidates carry
// no text at all.
const emptyGroundedText = "I processed your request but couldn't find a specific text answer. Please try again."

// imagePromptFormat wraps the user prompt so the image model treats the
// request as a synthesis task rather than a description task.
const imagePromptFormat = "IMAGE_GENERATION_TASK: Create a professional, detailed, and high-resolution 1K image of: %s. Ensure no distortion and a clean artistic finish. Output only the image data."

const (
	imageAspectRatio = "1:1"

	// knowledgeThinkingBudget caps reasoning tokens for the knowledge mode.
	knowledgeThinkingBudget int32 = 4000
)

// Options configures a Gemini gateway.
type Options struct {
	APIKey      string
	ProModel    string
	FlashModel  string
	ImageModel  string
	Temperature float32
	Logger      *slog.Logger

	// Now supplies the clock for the grounded persona context.
	// Defaults to time.Now.
	Now func() time.Time
}

// Gemini implements the chat gateway on the Gemini API.
type Gemini struct {
	client      *genai.Client
	proModel    string
	flashModel  string
	imageModel  string
	temperature float32
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

var _ chat.Gateway = (*Gemini)(nil)

// New creates a Gemini gateway.
func New(ctx context.Context, opts Options) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Gemini{
		client:      client,
		proModel:    opts.ProModel,
		flashModel:  opts.FlashModel,
		imageModel:  opts.ImageModel,
		temperature: opts.Temperature,
		logger:      logger,
		tracer:      otel.Tracer("brainora/provider"),
		now:         now,
	}, nil
}

// modelFor returns the generation model serving a conversation mode.
func (g *Gemini) modelFor(mode session.Mode) string {
	if mode == session.ModeKnowledge || mode == session.ModeLive {
		return g.proModel
	}
	return g.flashModel
}

// buildContents converts committed history plus the new user text into the
// wire content list, preserving order.
func buildContents(history []session.Message, text string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role == session.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	return contents
}

// streamConfig assembles the per-mode generation config for streaming chat.
func (g *Gemini) streamConfig(mode session.Mode) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(modeInstructions[mode], genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
	}

	if mode == session.ModeLive || mode == session.ModeSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if mode == session.ModeKnowledge {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(knowledgeThinkingBudget),
		}
	}
	return cfg
}

// StreamChat streams generated text fragments for one conversation turn.
// Fragments may be empty; the consumer skips those. Iteration stops at the
// first transport error.
func (g *Gemini) StreamChat(ctx context.Context, history []session.Message, text string, mode session.Mode) iter.Seq2[string, error] {
	model := g.modelFor(mode)
	contents := buildContents(history, text)
	cfg := g.streamConfig(mode)

	return func(yield func(string, error) bool) {
		ctx, span := g.tracer.Start(ctx, "provider.stream_chat",
			trace.WithAttributes(
				attribute.String("gen_ai.request.model", model),
				attribute.String("chat.mode", string(mode)),
			))
		defer span.End()

		for resp, err := range g.client.Models.GenerateContentStream(ctx, model, contents, cfg) {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "stream failed")
				yield("", err)
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}

// groundedInstruction builds the persona instruction for grounded replies,
// anchored to the current date and time of day.
func (g *Gemini) groundedInstruction() string {
	now := g.now()
	return fmt.Sprintf(`You are Brainora, a highly efficient and humble AI assistant.
          STRICT PERSONALITY RULES:
          1. NEVER repeat your name or "I am an AI" in every response. Be natural.
          2. Avoid over-confident or repetitive boilerplate phrases.
          3. Deliver intelligence directly. If a question is short, be concise.
          4. Adapt your tone to be helpful, professional, and understated.
          5. Use Google Search only when precision is needed for today's date (%s).
          Context: %s.`, now.Format("1/2/2006"), timeOfDay(now))
}

// timeOfDay buckets an instant into the persona context label.
func timeOfDay(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 12:
		return "Morning"
	case hour < 17:
		return "Afternoon"
	case hour < 21:
		return "Evening"
	default:
		return "Night"
	}
}

// ChatWithGrounding runs one non-streaming turn on the pro model with the
// Google Search tool and extracts web citations from grounding metadata.
func (g *Gemini) ChatWithGrounding(ctx context.Context, history []session.Message, text string) (chat.GroundedReply, error) {
	ctx, span := g.tracer.Start(ctx, "provider.chat_with_grounding",
		trace.WithAttributes(attribute.String("gen_ai.request.model", g.proModel)))
	defer span.End()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.groundedInstruction(), genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.proModel, buildContents(history, text), cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grounded chat failed")
		return chat.GroundedReply{}, fmt.Errorf("grounded chat: %w", err)
	}

	reply := chat.GroundedReply{Text: resp.Text()}
	if reply.Text == "" {
		reply.Text = emptyGroundedText
	}
	reply.Citations = extractCitations(resp)

	span.SetAttributes(attribute.Int("chat.citations", len(reply.Citations)))
	return reply, nil
}

// extractCitations collects web grounding chunks in delivery order,
// skipping entries missing a URI or title.
func extractCitations(resp *genai.GenerateContentResponse) []session.Citation {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var citations []session.Citation
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" || chunk.Web.Title == "" {
			continue
		}
		citations = append(citations, session.Citation{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	return citations
}

// GenerateImage synthesizes one square image and returns it as a data URL.
// An empty reference with a nil error means the model produced no image
// data; the caller renders its fallback text instead.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string) (string, error) {
	ctx, span := g.tracer.Start(ctx, "provider.generate_image",
		trace.WithAttributes(attribute.String("gen_ai.request.model", g.imageModel)))
	defer span.End()

	wrapped := fmt.Sprintf(imagePromptFormat, prompt)
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: imageAspectRatio},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel,
		[]*genai.Content{genai.NewContentFromText(wrapped, genai.RoleUser)}, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "image generation failed")
		return "", fmt.Errorf("generating image: %w", err)
	}

	if ref := firstImageDataURL(resp); ref != "" {
		return ref, nil
	}

	g.logger.Warn("no inline image data in response", "model", g.imageModel)
	return "", nil
}

// firstImageDataURL returns the first inline blob as a data URL, or "".
func firstImageDataURL(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return fmt.Sprintf("data:%s;base64,%s",
			part.InlineData.MIMEType,
			base64.StdEncoding.EncodeToString(part.InlineData.Data))
	}
	return ""
}
