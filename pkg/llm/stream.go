package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/sse"
	"github.com/lingopod/lingopod/pkg/utils"
)

// ChatStream executes a streaming chat completion request and writes
// normalized SSE frames ("data: <payload>\n\n") to w as they arrive from
// the provider, terminated by "data: [DONE]\n\n".
//
// Once the first frame has been written, failures are never returned as
// errors: an upstream fault mid-stream is encoded as a single in-band
// error frame followed by the terminal sentinel, so the caller's stream is
// always cleanly terminated. Context cancellation (client disconnect) is
// treated as a clean exit, not a fault.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, w io.Writer) error {
	body, err := c.buildBody(req, true)
	if err != nil {
		return fmt.Errorf("encoding streaming request: %w", err)
	}

	url := c.config.BaseURL + completionsPath
	c.logger.Debug("STREAM completion",
		zap.String("url", url),
		zap.Int("body_bytes", len(body)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building streaming request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	httpResp, err := c.streaming.Do(httpReq)
	if err != nil {
		c.logger.Error("streaming request failed", zap.Error(err))
		return c.writeStreamError(w, err.Error())
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		respBody, _ := io.ReadAll(httpResp.Body)
		text := utils.Truncate(string(respBody), 500)
		c.logger.Error("streaming request rejected",
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", text),
		)
		return c.writeStreamError(w, text)
	}

	reader := sse.NewReader(httpResp.Body)
	for {
		ev, err := reader.Next()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				// Client went away; nothing left to deliver.
				c.logger.Debug("stream canceled by caller")
				return nil
			}
			c.logger.Error("error reading provider stream", zap.Error(err))
			return c.writeStreamError(w, err.Error())
		}
		if ev == nil {
			// Upstream closed without sending its done sentinel (crash or
			// truncation). Terminate the stream ourselves so the caller's
			// channel still ends cleanly.
			_ = writeFrame(w, sse.Done)
			return nil
		}

		if err := writeFrame(w, ev.Data); err != nil {
			// The downstream writer failed; the client is gone.
			c.logger.Debug("stream write aborted", zap.Error(err))
			return nil
		}
		if ev.Data == sse.Done {
			return nil
		}
	}
}

// writeStreamError emits one in-band error frame plus the terminal sentinel.
// It reports nil so a fault past the stream boundary never surfaces as an error.
func (c *Client) writeStreamError(w io.Writer, message string) error {
	payload, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		payload = []byte(`{"error":"stream failed"}`)
	}
	if err := writeFrame(w, string(payload)); err != nil {
		return nil
	}
	_ = writeFrame(w, sse.Done)
	return nil
}

func writeFrame(w io.Writer, data string) error {
	_, err := io.WriteString(w, "data: "+data+"\n\n")
	return err
}
