// Package ocr models optical character recognition as an opaque collaborator:
// the caller hands over the original file bytes and gets best-effort text
// back. The hosted engine speaks a small JSON-over-HTTP contract.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine recognizes text in a file. Implementations must return an error or
// an empty string when nothing usable was recognized; they never fabricate
// placeholder text.
type Engine interface {
	Recognize(ctx context.Context, data []byte, mediaType string) (string, error)
}

// HTTPEngine calls a hosted OCR service: POST {image, language} as JSON with
// a bearer key, expecting a JSON body carrying the recognized text. The
// response shape is handled tolerantly because deployments differ.
type HTTPEngine struct {
	URL        string
	APIKey     string
	Language   string
	HTTPClient *http.Client
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
}

type request struct {
	Image    string `json:"image"`
	Language string `json:"language"`
}

type response struct {
	Text string `json:"text"`
	Data struct {
		Text string `json:"text"`
	} `json:"data"`
	Result json.RawMessage `json:"result"`
}

// Recognize submits the file and returns the recognized text. Server errors
// are retried with a short linear backoff, mirroring the transient-retry
// policy used elsewhere in this codebase.
func (e *HTTPEngine) Recognize(ctx context.Context, data []byte, mediaType string) (string, error) {
	if strings.TrimSpace(e.URL) == "" {
		return "", errors.New("ocr: engine not configured")
	}
	lang := e.Language
	if lang == "" {
		lang = "en"
	}
	body, err := json.Marshal(request{
		Image:    base64.StdEncoding.EncodeToString(data),
		Language: lang,
	})
	if err != nil {
		return "", fmt.Errorf("ocr: encode request: %w", err)
	}

	attempts := e.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		text, transient, err := e.tryOnce(ctx, body)
		if err == nil {
			return text, nil
		}
		if !transient || i == attempts-1 {
			return "", err
		}
		lastErr = err
		log.Debug().Err(err).Int("attempt", i+1).Msg("ocr request failed, retrying")
		time.Sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}
	return "", lastErr
}

func (e *HTTPEngine) tryOnce(ctx context.Context, body []byte) (string, bool, error) {
	if e.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("ocr: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.APIKey)
	}

	client := e.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: e.PerRequestTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("ocr: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		return "", true, fmt.Errorf("ocr: server error: %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("ocr: unexpected status: %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("ocr: read body: %w", err)
	}
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return "", false, fmt.Errorf("ocr: decode response: %w", err)
	}
	return extractText(r), false, nil
}

// extractText handles the response shapes seen across OCR deployments:
// {text}, {data:{text}}, {result: "..."} and {result: [{text} | [_, text]]}.
func extractText(r response) string {
	if r.Text != "" {
		return r.Text
	}
	if r.Data.Text != "" {
		return r.Data.Text
	}
	if len(r.Result) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Result, &s); err == nil {
		return s
	}
	var blocks []json.RawMessage
	if err := json.Unmarshal(r.Result, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(b, &obj); err == nil && obj.Text != "" {
			parts = append(parts, obj.Text)
			continue
		}
		var tuple []json.RawMessage
		if err := json.Unmarshal(b, &tuple); err == nil && len(tuple) > 1 {
			var t string
			if err := json.Unmarshal(tuple[1], &t); err == nil && t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n")
}
