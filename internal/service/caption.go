package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/tidwall/gjson"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/prompts"
)

// CaptionRequest carries the inputs of one caption generation.
type CaptionRequest struct {
	Topics       string // already joined
	Audience     string
	TemplateName string
}

// Captions are the top and bottom text chosen by the model.
type Captions struct {
	Text0 string
	Text1 string
}

// CaptionGenerator produces captions for a template.
type CaptionGenerator interface {
	Generate(ctx context.Context, req CaptionRequest) (*Captions, error)
}

// CaptionConfig holds configuration for the OpenAI caption generator.
type CaptionConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// OpenAICaptionGenerator asks an OpenAI-compatible chat model for captions through a function tool.
type OpenAICaptionGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAICaptionGenerator creates a new caption generator.
// Parameters:
//   - cfg: model, credentials and endpoint.
// Returns:
//   - *OpenAICaptionGenerator: initialized generator.
func NewOpenAICaptionGenerator(cfg *CaptionConfig) *OpenAICaptionGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenAICaptionGenerator{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// GetModel returns the model name being used.
func (g *OpenAICaptionGenerator) GetModel() string {
	return g.model
}

// Generate runs one chat completion and reads the captions from the first generateMemeImage call.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: topics, audience and template name.
// Returns:
//   - *Captions: top and bottom caption.
//   - error: ErrUpstream when the provider fails or returns no tool call, a plain error for malformed arguments.
func (g *OpenAICaptionGenerator) Generate(ctx context.Context, req CaptionRequest) (*Captions, error) {
	start := time.Now()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompts.CaptionSystemPrompt),
			openai.UserMessage(prompts.BuildCaptionUserPrompt(req.Topics, req.Audience, req.TemplateName)),
		},
		Tools: captionTools(),
	})
	if err != nil {
		logger.CtxError(ctx, "Caption completion failed: model=%s, error=%v", g.model, err)
		return nil, newError(ErrUpstream, msgProviderFailed)
	}

	logger.With(logger.Fields{
		logger.FieldProvider: "openai",
		"model":              g.model,
	}).WithDuration(time.Since(start).Milliseconds()).Debug(ctx, "Caption completion finished")

	callData, ok := firstCaptionCall(resp)
	if !ok {
		return nil, newError(ErrUpstream, msgNoToolCall)
	}

	return parseCaptionArguments(callData)
}

func captionTools() []openai.ChatCompletionToolUnionParam {
	return []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        prompts.CaptionToolName,
			Description: openai.String(prompts.CaptionToolDescription),
			Parameters:  prompts.CaptionToolParameters(),
			Strict:      openai.Bool(true),
		}),
	}
}

// firstCaptionCall returns the arguments of the first caption tool call in the completion.
func firstCaptionCall(resp *openai.ChatCompletion) (string, bool) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", false
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name == prompts.CaptionToolName {
			return call.Function.Arguments, true
		}
	}
	return "", false
}

func parseCaptionArguments(callData string) (*Captions, error) {
	if !gjson.Valid(callData) {
		return nil, fmt.Errorf("tool arguments are not valid JSON: %q", callData)
	}
	text0, err := toolArgument(callData, prompts.CaptionTopField, gjson.String)
	if err != nil {
		return nil, err
	}
	text1, err := toolArgument(callData, prompts.CaptionBottomField, gjson.String)
	if err != nil {
		return nil, err
	}
	return &Captions{Text0: text0.String(), Text1: text1.String()}, nil
}

// toolArgument asserts that a tool argument exists with the expected JSON type.
func toolArgument(callData, path string, expected gjson.Type) (gjson.Result, error) {
	param := gjson.Get(callData, path)
	if !param.Exists() {
		return gjson.Result{}, fmt.Errorf("tool argument %q is missing", path)
	}
	if param.Type != expected {
		return gjson.Result{}, fmt.Errorf("tool argument %q is %s, want %s", path, param.Type, expected)
	}
	return param, nil
}
