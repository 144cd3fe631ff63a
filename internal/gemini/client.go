package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/config"
	"github.com/shopchat/shopchat-backend/internal/models"
)

const (
	maxAttempts       = 3
	maxRetryAfterWait = 5 * time.Second
	maxBackoffWait    = 10 * time.Second
)

// RequestError is surfaced after the retry budget is exhausted.
type RequestError struct {
	StatusCode int
	Message    string
	Err        error

	retryHint time.Duration
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gemini request failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini request failed: %s", e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Client talks to the Gemini generateContent API over raw HTTP with typed
// request/response structs.
type Client struct {
	cfg    config.GeminiConfig
	client *http.Client
	logger *logrus.Logger

	// sleep is replaced in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

func NewClient(cfg config.GeminiConfig, logger *logrus.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
		sleep:  time.Sleep,
	}
}

// BuildPayload converts persisted turns into API contents. Function responses
// are attributed to the "user" role, as the protocol requires; everything the
// model produced maps to "model".
func (c *Client) BuildPayload(history []models.ConversationTurn, tools []Tool, systemInstruction string) (*GenerateRequest, error) {
	contents := make([]Content, 0, len(history))
	for _, turn := range history {
		content, err := turnToContent(turn)
		if err != nil {
			return nil, fmt.Errorf("building payload for turn %s: %w", turn.ID, err)
		}
		contents = append(contents, content)
	}

	req := &GenerateRequest{
		Contents: contents,
		Tools:    tools,
		GenerationConfig: &GenerationConfig{
			Temperature:     c.cfg.Temperature,
			TopP:            c.cfg.TopP,
			TopK:            c.cfg.TopK,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: systemInstruction}}}
	}
	return req, nil
}

func turnToContent(turn models.ConversationTurn) (Content, error) {
	switch turn.Sender {
	case models.SenderUser:
		return Content{Role: "user", Parts: []Part{{Text: turn.Content}}}, nil
	case models.SenderAI:
		return Content{Role: "model", Parts: []Part{{Text: turn.Content}}}, nil
	case models.SenderFunctionCall:
		var call FunctionCall
		if err := json.Unmarshal([]byte(turn.Content), &call); err != nil {
			return Content{}, fmt.Errorf("decoding function call: %w", err)
		}
		return Content{Role: "model", Parts: []Part{{FunctionCall: &call}}}, nil
	case models.SenderFunctionResponse:
		var resp FunctionResponse
		if err := json.Unmarshal([]byte(turn.Content), &resp); err != nil {
			return Content{}, fmt.Errorf("decoding function response: %w", err)
		}
		return Content{Role: "user", Parts: []Part{{FunctionResponse: &resp}}}, nil
	default:
		return Content{}, fmt.Errorf("unknown sender kind %q", turn.Sender)
	}
}

// Send posts the request, retrying up to three times. HTTP 429 waits for the
// server-supplied retry hint capped at five seconds; any other failure backs
// off exponentially, capped at ten seconds. The last error is surfaced once
// attempts are exhausted.
func (c *Client) Send(ctx context.Context, payload *GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestError{Message: "encoding request", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)

	var lastErr *RequestError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, reqErr := c.attempt(ctx, url, body)
		if reqErr == nil {
			return resp, nil
		}
		lastErr = reqErr

		if attempt == maxAttempts {
			break
		}
		if ctx.Err() != nil {
			break
		}

		var wait time.Duration
		if reqErr.StatusCode == http.StatusTooManyRequests {
			wait = reqErr.retryHint
			if wait <= 0 || wait > maxRetryAfterWait {
				wait = maxRetryAfterWait
			}
			c.logger.WithField("wait", wait).Warn("Gemini rate limited, retrying")
		} else {
			wait = time.Duration(1<<uint(attempt)) * time.Second
			if wait > maxBackoffWait {
				wait = maxBackoffWait
			}
			c.logger.WithError(reqErr).WithFields(logrus.Fields{
				"attempt": attempt,
				"wait":    wait,
			}).Warn("Gemini request failed, backing off")
		}
		c.sleep(wait)
	}

	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, url string, body []byte) (*GenerateResponse, *RequestError) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Message: "building request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Message: "network error", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		reqErr := &RequestError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil {
				reqErr.retryHint = time.Duration(secs) * time.Second
			}
		}
		return nil, reqErr
	}

	var parsed GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &RequestError{Message: "malformed response body", Err: err}
	}

	// A response without candidates is a hard failure, not an empty success.
	if len(parsed.Candidates) == 0 {
		return nil, &RequestError{Message: "response contained no candidates"}
	}

	return &parsed, nil
}
