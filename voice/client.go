// Package voice is a client for the conversational voice gateway. It
// covers the two REST calls the app needs (signed connection URLs and
// the voice catalog) and the websocket transcript stream of a live
// session. Speech recognition and synthesis happen entirely on the
// gateway side; this package only moves text and configuration.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	maxRetries     = 3
	initialBackoff = time.Second
)

// Client calls the voice gateway REST API
type Client struct {
	apiKey     string
	agentID    string
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for Client
type Option func(*Client)

// WithBaseURL overrides the gateway base URL (used in tests)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new voice gateway client
func NewClient(apiKey, agentID string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		agentID:    agentID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSignedURL requests a signed websocket connection URL for the
// configured agent. The URL is opaque and short-lived.
func (c *Client) GetSignedURL(ctx context.Context) (string, error) {
	if c.apiKey == "" || c.agentID == "" {
		return "", fmt.Errorf("voice gateway API key and agent ID are required")
	}

	endpoint := fmt.Sprintf("%s/v1/convai/conversation/get_signed_url?agent_id=%s",
		c.baseURL, url.QueryEscape(c.agentID))

	var result struct {
		SignedURL string `json:"signed_url"`
	}
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return "", err
	}
	if result.SignedURL == "" {
		return "", fmt.Errorf("gateway returned an empty signed URL")
	}

	return result.SignedURL, nil
}

// Voice describes an available synthesis voice
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PreviewURL  string `json:"previewUrl"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ListVoices retrieves the voice catalog, keeping only voices with a
// preview clip and capping the list at 8 entries
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("voice gateway API key is required")
	}

	var result struct {
		Voices []struct {
			VoiceID    string `json:"voice_id"`
			Name       string `json:"name"`
			PreviewURL string `json:"preview_url"`
			Category   string `json:"category"`
			Labels     struct {
				Accent      string `json:"accent"`
				Description string `json:"description"`
			} `json:"labels"`
		} `json:"voices"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/v1/voices", &result); err != nil {
		return nil, err
	}

	voices := make([]Voice, 0, len(result.Voices))
	for _, v := range result.Voices {
		if v.PreviewURL == "" {
			continue
		}
		description := v.Labels.Accent
		if description == "" {
			description = v.Labels.Description
		}
		if description == "" {
			description = "Professional Voice"
		}
		voices = append(voices, Voice{
			ID:          v.VoiceID,
			Name:        v.Name,
			PreviewURL:  v.PreviewURL,
			Description: description,
			Category:    v.Category,
		})
		if len(voices) == 8 {
			break
		}
	}

	return voices, nil
}

// getJSON performs an authenticated GET with retries on transient failures
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("xi-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return fmt.Errorf("failed to reach gateway after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to decode gateway response: %w", err)
			}
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()

		// Don't retry on client errors
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("gateway error (%d): %s", resp.StatusCode, body)
		}

		if attempt == maxRetries-1 {
			return fmt.Errorf("gateway error after %d attempts (%d): %s", maxRetries, resp.StatusCode, body)
		}
	}

	return fmt.Errorf("gateway request failed")
}
