// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

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

	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/httperrors"
)

// DefaultTimeout bounds a single model call when none is configured.
const DefaultTimeout = 45 * time.Second

// Ollama implements Model over the Ollama REST API.
type Ollama struct {
	// baseURL is the service root (e.g., "http://127.0.0.1:11434")
	baseURL string
	// model is the model name sent with every request
	model string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
}

// NewOllama creates a client for the service at baseURL. A non-positive
// timeout falls back to DefaultTimeout.
func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client, keeping its timeout
// when set and the configured one otherwise.
func (o *Ollama) WithHTTPClient(c *http.Client) *Ollama {
	if c.Timeout <= 0 {
		c.Timeout = o.client.Timeout
	}
	o.client = c
	return o
}

// Name returns the configured model name.
func (o *Ollama) Name() string { return o.model }

type generateOptions struct {
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

type generatePayload struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// Generate calls POST /api/generate with streaming disabled and returns the
// response text.
func (o *Ollama) Generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(generatePayload{
		Model:  o.model,
		Prompt: req.Prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			Stop:        req.Stop,
		},
	})
	if err != nil {
		return "", perr.Wrap(perr.TransportFailure, "encode model request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrap(perr.TransportFailure, "build model request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "sqlpilot-cli/1.0")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", perr.Wrap(perr.TransportFailure, httperrors.Describe(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", perr.New(perr.TransportFailure,
			fmt.Sprintf("model service returned %d %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", perr.Wrap(perr.TransportFailure, "malformed model response", err)
	}
	if out.Response == nil {
		return "", perr.New(perr.TransportFailure, "malformed model response: missing response field")
	}
	return strings.TrimSpace(*out.Response), nil
}
