package generator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/ghostwriter-blog/ghostwriter/internal/config"
	"github.com/ghostwriter-blog/ghostwriter/internal/model"
)

const (
	systemInstructionFmt = "You are the sole author of a small blog. " +
		"Write %d distinct blog posts on the given theme. " +
		"Every post gets a unique URL-safe id, a title, a one-paragraph summary, " +
		"a full markdown body, a calendar date within the last month, and a short " +
		"visual description of a fitting illustration."

	imageStyleFmt = "A photorealistic, wide aspect ratio photograph. No text, no watermarks. Subject: %s"

	defaultImageMime = "image/png"
)

var newGeminiClient = genai.NewClient

// Gemini generative model, narrowed to the single call we make so tests can
// substitute a fake.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiSource implements Source on top of the Gemini API. It holds two
// configured models: one for structured post drafts, one for illustrations.
type GeminiSource struct {
	writer  contentGenerator
	painter contentGenerator
	closeFn func() error

	topic string
}

// NewGeminiSource builds the facade from the environment credential and the
// generation config. A missing credential is not an error: the source is
// returned in degraded form and every call yields empty or placeholder
// results, as the UI contract requires.
func NewGeminiSource(ctx context.Context, apiKey string, cfg config.GenerationConfig) (*GeminiSource, error) {
	src := &GeminiSource{topic: cfg.Topic}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		genLogger.Warn().Msg("GEMINI_API_KEY is not set; posts will be empty and images placeholders")
		return src, nil
	}

	client, err := newGeminiClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini source: %w", err)
	}

	src.writer = configureWriter(client.GenerativeModel(cfg.TextModel), cfg.PostCount)
	src.painter = configurePainter(client.GenerativeModel(cfg.ImageModel))
	src.closeFn = client.Close

	return src, nil
}

func (s *GeminiSource) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Drafts asks the text model for one batch of posts. Transport and parse
// failures degrade to an empty slice; callers must treat "no posts" as a
// valid, non-fatal outcome.
func (s *GeminiSource) Drafts(ctx context.Context) ([]model.PostDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.writer == nil {
		genLogger.Debug().Msg("No writer model configured, returning no drafts")
		return nil, nil
	}

	prompt := fmt.Sprintf("Theme: %s", s.topic)
	resp, err := s.writer.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		genLogger.Warn().Err(err).Msg("Draft generation failed, returning no drafts")
		return nil, nil
	}

	payload := extractText(resp)
	if payload == "" {
		genLogger.Warn().Msg("Draft response contained no text part, returning no drafts")
		return nil, nil
	}

	var drafts []model.PostDraft
	if err := json.Unmarshal([]byte(payload), &drafts); err != nil {
		genLogger.Warn().Err(err).Msg("Draft response was not valid JSON, returning no drafts")
		return nil, nil
	}

	return repairIDs(drafts), nil
}

// Illustration asks the image model to draw the given prompt. It never fails:
// any response without an inline image part becomes the placeholder.
func (s *GeminiSource) Illustration(ctx context.Context, prompt string) string {
	if s.painter == nil {
		return PlaceholderImage
	}

	resp, err := s.painter.GenerateContent(ctx, genai.Text(fmt.Sprintf(imageStyleFmt, prompt)))
	if err != nil {
		genLogger.Warn().Err(err).Str("prompt", prompt).Msg("Illustration request failed, using placeholder")
		return PlaceholderImage
	}

	if uri, ok := extractImage(resp); ok {
		return uri
	}

	genLogger.Debug().Str("prompt", prompt).Msg("No inline image in response, using placeholder")
	return PlaceholderImage
}

func configureWriter(m *genai.GenerativeModel, count int) contentGenerator {
	if m == nil {
		return nil
	}

	m.SetCandidateCount(1)
	m.SetTemperature(0.9)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(systemInstructionFmt, count))},
	}
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = draftSchema()

	return m
}

func configurePainter(m *genai.GenerativeModel) contentGenerator {
	if m == nil {
		return nil
	}

	m.SetCandidateCount(1)

	return m
}

// draftSchema is the structured-output contract for one batch of posts:
// a JSON array of objects whose fields are all required strings.
func draftSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":          str("Unique URL-safe identifier for the post"),
				"title":       str("Post title"),
				"summary":     str("One-paragraph summary shown on the post card"),
				"content":     str("Full post body in markdown"),
				"date":        str("Calendar date of the post, e.g. 2025-08-14"),
				"imagePrompt": str("Short visual description of an illustration for the post"),
			},
			Required: []string{"id", "title", "summary", "content", "date", "imagePrompt"},
		},
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				if trimmed := strings.TrimSpace(string(text)); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

func extractImage(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil {
		return "", false
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			blob, ok := part.(genai.Blob)
			if !ok || len(blob.Data) == 0 {
				continue
			}

			mime := blob.MIMEType
			if mime == "" {
				mime = defaultImageMime
			}
			return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(blob.Data)), true
		}
	}
	return "", false
}

// repairIDs enforces the non-empty, unique id invariant the views key on.
// The model occasionally omits ids or repeats one across posts.
func repairIDs(drafts []model.PostDraft) []model.PostDraft {
	seen := make(map[model.PostID]bool, len(drafts))
	for i := range drafts {
		id := model.PostID(strings.TrimSpace(string(drafts[i].ID)))
		if id == "" || seen[id] {
			id = model.PostID(uuid.New().String())
			genLogger.Debug().Str("title", drafts[i].Title).Str("id", string(id)).Msg("Assigned replacement post id")
		}
		drafts[i].ID = id
		seen[id] = true
	}
	return drafts
}
