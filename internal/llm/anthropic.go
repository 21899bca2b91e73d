package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/insights-agent/pkg/anthropic"
)

// Default models per verb. The fast model handles structured verbs
// where latency matters more than prose quality; the synthesis model
// writes the user-facing answers.
const (
	DefaultFastModel      = "claude-haiku-4-5-20251001"
	DefaultSynthesisModel = "claude-sonnet-4-5-20250929"
)

// Options configures the Anthropic-backed capability.
type Options struct {
	FastModel      string
	SynthesisModel string
	MaxTokens      int64
}

func (o Options) withDefaults() Options {
	if o.FastModel == "" {
		o.FastModel = DefaultFastModel
	}
	if o.SynthesisModel == "" {
		o.SynthesisModel = DefaultSynthesisModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 2048
	}
	return o
}

type anthropicCapability struct {
	client anthropic.Client
	opts   Options
}

// NewAnthropic returns a Capability backed by the Anthropic messages API.
func NewAnthropic(client anthropic.Client, opts Options) Capability {
	return &anthropicCapability{client: client, opts: opts.withDefaults()}
}

func (c *anthropicCapability) complete(ctx context.Context, model string, temperature float64, system, user, phase string) (string, error) {
	req := anthropic.MessageRequest{
		Model:       model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: "user", Content: user},
		},
	}
	if system != "" {
		req.System = anthropic.BuildCachedSystemBlocks(system)
	}

	resp, err := c.client.CreateMessage(ctx, req)
	if err != nil {
		return "", eris.Wrapf(err, "llm: %s", phase)
	}
	resp.Usage.LogCost(model, phase)

	return extractText(resp), nil
}

func (c *anthropicCapability) Extract(ctx context.Context, system, user string) (json.RawMessage, error) {
	text, err := c.complete(ctx, c.opts.FastModel, 0.1, system, user, "extract")
	if err != nil {
		return nil, err
	}

	cleaned := cleanJSON(text)
	if !json.Valid([]byte(cleaned)) {
		zap.L().Warn("extraction returned invalid JSON", zap.String("text", truncate(text, 200)))
		return nil, eris.New("llm: extract: response is not valid JSON")
	}
	return json.RawMessage(cleaned), nil
}

func (c *anthropicCapability) Classify(ctx context.Context, system, user string) (string, error) {
	text, err := c.complete(ctx, c.opts.FastModel, 0.1, system, user, "classify")
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(text)), nil
}

func (c *anthropicCapability) Decompose(ctx context.Context, system, user string) ([]SubTask, error) {
	text, err := c.complete(ctx, c.opts.FastModel, 0.2, system, user, "decompose")
	if err != nil {
		return nil, err
	}

	cleaned := cleanJSON(text)
	var tasks []SubTask
	if err := json.Unmarshal([]byte(cleaned), &tasks); err != nil {
		return nil, eris.Wrap(err, "llm: decompose: response is not a task list")
	}
	return tasks, nil
}

func (c *anthropicCapability) Generate(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, c.opts.SynthesisModel, 0.4, system, user, "generate")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
