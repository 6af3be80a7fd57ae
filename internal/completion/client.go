package completion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"

	defaultMaxTokens   = 500
	defaultTemperature = 0.6
	defaultTopP        = 1
)

// ErrMalformedResponse reports a completion response whose envelope
// could not be decoded or carried no choices. Callers must treat it as
// a hard failure, not an empty answer.
var ErrMalformedResponse = errors.New("malformed completion response")

// Client talks to the completions backend. The model variant is selected
// per request via the X-ModelType header; the bearer token is supplied
// by the caller and attached verbatim (acquisition/refresh happen
// elsewhere).
type Client struct {
	endpoint string
	client   *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type prompt struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        int     `json:"top_p"`
	N           int     `json:"n"`
	Stream      bool    `json:"stream"`
	LogProbs    any     `json:"logprobs"`
	Stop        string  `json:"stop"`
}

type choice struct {
	Text         string `json:"text"`
	Index        int    `json:"index"`
	LogProbs     any    `json:"logprobs"`
	FinishReason string `json:"finish_reason"`
}

type response struct {
	Choices []choice `json:"choices"`
}

// streamFrame is one decoded data line of the event stream.
type streamFrame struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int      `json:"created"`
	Choices []choice `json:"choices"`
	Model   string   `json:"model"`
}

func (c *Client) newRequest(ctx context.Context, model, promptText, token string, stream bool) (*http.Request, error) {
	body, err := json.Marshal(prompt{
		Prompt:      promptText,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
		TopP:        defaultTopP,
		N:           1,
		Stream:      stream,
		LogProbs:    nil,
		Stop:        "",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-ModelType", model)
	return req, nil
}

// Complete issues a blocking completion request and returns the first
// choice's text.
func (c *Client) Complete(ctx context.Context, model, promptText, token string) (string, error) {
	req, err := c.newRequest(ctx, model, promptText, token, false)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion backend returned %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope response
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(envelope.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	return envelope.Choices[0].Text, nil
}

// CompleteStreaming issues the same request with stream enabled and
// reads the line-oriented event stream. Lines without the data prefix
// (blank lines, keep-alive framing) are skipped. All deltas up to the
// terminal sentinel are concatenated.
func (c *Client) CompleteStreaming(ctx context.Context, model, promptText, token string) (string, error) {
	req, err := c.newRequest(ctx, model, promptText, token, true)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion backend returned %d: %s", resp.StatusCode, string(body))
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := strings.TrimPrefix(line, dataPrefix)
		if payload == doneSentinel {
			return sb.String(), nil
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if len(frame.Choices) == 0 {
			return "", fmt.Errorf("%w: frame with no choices", ErrMalformedResponse)
		}
		sb.WriteString(frame.Choices[0].Text)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	// Stream ended without the sentinel; return what was accumulated.
	return sb.String(), nil
}
