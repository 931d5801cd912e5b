// Package vision submits captured images to the remote analysis API and
// turns the wire-level result into a typed outcome the controller can act
// on.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// displayMessageLimit bounds server-provided messages so they always fit the
// device display.
const displayMessageLimit = 80

// rateLimitBackoffMultiplier doubles the inter-attempt delay after a 429.
const rateLimitBackoffMultiplier = 2

// Transport is the blocking HTTPS POST primitive the client is written
// against. The real implementation wraps net/http; tests substitute a mock
// returning scripted statuses.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (status int, respBody []byte, err error)
}

// HTTPTransport is the production Transport over net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport with a per-attempt timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{client: &http.Client{Timeout: timeout}}
}

// Post issues one blocking request. The response body is always drained and
// closed before returning, whatever the status, so transport resources
// cannot leak across retries.
func (t *HTTPTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// Config holds the client's endpoint, credentials, and retry policy.
type Config struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Model      string
	MaxTokens  int

	// MaxImageBytes is the hard ceiling on the raw JPEG.
	MaxImageBytes int
	// MaxEncodedBytes is the (larger) ceiling after base64 expansion.
	MaxEncodedBytes int

	// MaxAttempts bounds the retry loop.
	MaxAttempts int
	// RetryDelay is the fixed inter-attempt delay; 429 doubles it.
	RetryDelay time.Duration
}

// Client issues analysis requests with bounded retries.
type Client struct {
	cfg       Config
	transport Transport
	sleep     func(time.Duration)
	log       zerolog.Logger
}

// NewClient creates a client. A nil transport gets the production HTTP
// transport with a 30 second per-attempt timeout.
func NewClient(cfg Config, transport Transport, log zerolog.Logger) *Client {
	if transport == nil {
		transport = NewHTTPTransport(30 * time.Second)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Client{
		cfg:       cfg,
		transport: transport,
		sleep:     time.Sleep,
		log:       log.With().Str("component", "vision").Logger(),
	}
}

// Analyze submits one image with the given prompt and returns the terminal
// outcome. It blocks for the full duration of the retry policy's worst case;
// the state machine guarantees only one request is in flight at a time.
func (c *Client) Analyze(ctx context.Context, imageBytes []byte, promptText string) Outcome {
	if len(imageBytes) > c.cfg.MaxImageBytes {
		return Failure(ErrEncoding, fmt.Sprintf("image too large (%d KB)", len(imageBytes)/1024))
	}
	if base64.StdEncoding.EncodedLen(len(imageBytes)) > c.cfg.MaxEncodedBytes {
		return Failure(ErrEncoding, "image too large after encoding")
	}

	body, err := json.Marshal(newRequest(c.cfg.Model, c.cfg.MaxTokens,
		base64.StdEncoding.EncodeToString(imageBytes), promptText))
	if err != nil {
		return Failure(ErrEncoding, "request encoding failed")
	}

	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": c.cfg.APIVersion,
		"content-type":      "application/json",
	}

	requestID := uuid.NewString()
	log := c.log.With().Str("request_id", requestID).Logger()

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		status, respBody, err := c.transport.Post(ctx, c.cfg.Endpoint, headers, body)

		switch {
		case err != nil:
			log.Warn().Err(err).Int("attempt", attempt).Msg("transport error")
			if attempt < c.cfg.MaxAttempts {
				c.sleep(c.cfg.RetryDelay)
			}

		case status == http.StatusOK:
			text, perr := parseResponse(respBody)
			if perr != nil {
				// A malformed 200 is a structural bug; retrying will not
				// change it.
				log.Error().Err(perr).Msg("unparseable success response")
				return Failure(ErrParse, "bad response from API")
			}
			log.Info().Int("attempt", attempt).Int("chars", len(text)).Msg("analysis complete")
			return Success(text)

		case status == http.StatusUnauthorized:
			log.Error().Int("attempt", attempt).Msg("authentication rejected")
			return Failure(ErrAuth, "invalid API key")

		case status == http.StatusBadRequest:
			msg := serverMessage(respBody)
			log.Error().Str("server_message", msg).Msg("request rejected")
			return Failure(ErrBadRequest, msg)

		case status == http.StatusTooManyRequests:
			log.Warn().Int("attempt", attempt).Msg("rate limited")
			if attempt < c.cfg.MaxAttempts {
				c.sleep(c.cfg.RetryDelay * rateLimitBackoffMultiplier)
			}

		default:
			log.Warn().Int("status", status).Int("attempt", attempt).Msg("unexpected status")
			if attempt < c.cfg.MaxAttempts {
				c.sleep(c.cfg.RetryDelay)
			}
		}
	}

	log.Error().Int("attempts", c.cfg.MaxAttempts).Msg("all retries exhausted")
	return Failure(ErrRetriesExhausted, "no response after retries")
}

// parseResponse extracts the text of the first content block. Any structural
// violation (missing field, empty array, empty text) is an error.
func parseResponse(body []byte) (string, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty content array")
	}
	if resp.Content[0].Text == "" {
		return "", fmt.Errorf("empty text in first content block")
	}
	return resp.Content[0].Text, nil
}

// serverMessage extracts and truncates the server's error message for
// display.
func serverMessage(body []byte) string {
	var ae apiError
	msg := "bad request"
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		msg = ae.Error.Message
	}
	return Truncate(msg, displayMessageLimit)
}

// Truncate bounds s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
