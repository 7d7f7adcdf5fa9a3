package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"postsync-curator/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer defines the AI writing interface used by digest builders.
type Summarizer interface {
	// Blurb writes a concise 1-2 sentence description of a single candidate
	// in the given language.
	Blurb(ctx context.Context, c model.ContentCandidate, language string) (string, error)
	// Preface writes a short opening paragraph covering the day's top
	// candidates in the given language.
	Preface(ctx context.Context, top []model.ScoredCandidate, language string) (string, error)
}

// OpenAIClient implements Summarizer using the OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		panic("OpenAI model must be specified")
	}
	return &OpenAIClient{client: c, model: model}
}

func (o *OpenAIClient) Blurb(ctx context.Context, c model.ContentCandidate, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()
	// Trim inputs to keep tokens reasonable
	content := strings.TrimSpace(c.RawText)
	if content == "" {
		content = c.Title
	}
	if len([]rune(content)) > 1000 {
		content = string([]rune(content)[:1000])
	}

	sys := fmt.Sprintf(`
		Write in %s. Return 1-2 sentences (20-60 words) describing why this story matters to a professional audience.
		Plain text, factual, no hashtags, no links.
		`, langOrDefault(language))
	user := fmt.Sprintf("Title: %s\nContent: %s", c.Title, content)
	out, err := o.create(ctx, sys, user)
	if err != nil {
		slog.Error("openai: blurb error", "id", c.ID, "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIClient) Preface(ctx context.Context, top []model.ScoredCandidate, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 300*time.Second)
	defer cancel()
	if len(top) == 0 {
		return "", nil
	}
	b := &strings.Builder{}
	for i, sc := range top {
		if i >= 10 {
			break
		}
		fmt.Fprintf(b, "- %s\n", sc.Candidate.Title)
	}
	sys := fmt.Sprintf(`
		Write in %s. Return one short paragraph (40-120 words) introducing today's curated stories.
		Plain text, no links, no bullet points.
		`, langOrDefault(language))
	user := fmt.Sprintf("Today's top stories:\n%s\nTask: Write the opening paragraph for this digest. Output the paragraph only.", b.String())
	out, err := o.create(ctx, sys, user)
	if err != nil {
		slog.Error("openai: preface error", "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}
