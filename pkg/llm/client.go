package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/utils"
)

const completionsPath = "/chat/completions"

// Config holds the client's fixed configuration. The client itself is
// stateless beyond this and is safe to share across requests.
type Config struct {
	// BaseURL is the OpenAI-compatible server root, e.g. "http://127.0.0.1:1234/v1".
	BaseURL string

	// DefaultModel is used when a request does not name a model. Empty means
	// the server's loaded model decides.
	DefaultModel string

	// Timeout bounds non-streaming completion calls. Streaming calls are
	// bounded by the provider's stream lifetime instead.
	Timeout time.Duration
}

// Client calls a local OpenAI-compatible chat-completions endpoint.
type Client struct {
	config    Config
	client    *http.Client
	streaming *http.Client
	logger    *zap.Logger
}

// NewClient creates a Client for the given server.
func NewClient(config Config, logger *zap.Logger) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		// No fixed timeout: a stream lives as long as the provider keeps
		// emitting frames or the caller cancels the context.
		streaming: &http.Client{},
		logger:    logger,
	}
}

// wireRequest is the JSON body sent to the provider. Optional fields are
// omitted entirely rather than sent as nulls.
type wireRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// wireResponse is the provider's completion envelope.
type wireResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

func (c *Client) buildBody(req ChatRequest, stream bool) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = c.config.DefaultModel
	}

	return json.Marshal(wireRequest{
		Messages:    req.Messages,
		Model:       model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	})
}

// Chat executes a standard (non-streaming) chat completion request.
// A non-2xx status yields a *ProviderError carrying the upstream status;
// network failures yield a *TransportError.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	body, err := c.buildBody(req, false)
	if err != nil {
		return ChatResult{}, fmt.Errorf("encoding completion request: %w", err)
	}

	url := c.config.BaseURL + completionsPath
	c.logger.Debug("POST completion",
		zap.String("url", url),
		zap.Int("body_bytes", len(body)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ChatResult{}, fmt.Errorf("building completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return ChatResult{}, &TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return ChatResult{}, &TransportError{Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		c.logger.Error("provider returned error",
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", utils.Truncate(string(respBody), 500)),
		)
		return ChatResult{}, &ProviderError{
			Status: httpResp.StatusCode,
			Body:   utils.Truncate(string(respBody), 500),
		}
	}

	var parsed wireResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return ChatResult{}, fmt.Errorf("decoding completion response: %w", err)
	}

	result := ChatResult{
		Model: parsed.Model,
		Usage: parsed.Usage,
	}
	if len(parsed.Choices) > 0 {
		result.Content = parsed.Choices[0].Message.Content
		result.FinishReason = parsed.Choices[0].FinishReason
	}

	return result, nil
}
