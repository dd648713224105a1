// Package expert implements the text-chat collaborator that receives
// forwarded voice transcripts: every completed user transcription is
// answered by a plain chat completion, independent of the voice session.
package expert

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultModel answers expert queries when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Responder answers a single user message with a text completion.
type Responder interface {
	Respond(ctx context.Context, instructions, text string) (string, error)
}

// Client is the openai-go backed Responder.
type Client struct {
	client oai.Client
	model  string
}

// Option configures the Client.
type Option func(*options)

type options struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL overrides the API base URL, for tests and proxies.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New constructs an expert client.
func New(apiKey, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("expert: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}
	if o.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: o.timeout}))
	}

	return &Client{client: oai.NewClient(reqOpts...), model: model}, nil
}

// Respond implements Responder with a single-turn completion.
func (c *Client) Respond(ctx context.Context, instructions, text string) (string, error) {
	var messages []oai.ChatCompletionMessageParamUnion
	if instructions != "" {
		messages = append(messages, oai.SystemMessage(instructions))
	}
	messages = append(messages, oai.UserMessage(text))

	resp, err := c.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("expert: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("expert: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
