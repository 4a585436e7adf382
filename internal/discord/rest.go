package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	DefaultAPIBase = "https://discord.com/api/v10"
	userAgent      = "DiscordBot (https://github.com/EgorLis/serverstatusbot, 1.0)"
)

// APIError - ответ Discord со статусом >= 400.
type APIError struct {
	Method  string `json:"-"`
	Path    string `json:"-"`
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api %s %s: %d %s (code %d)", e.Method, e.Path, e.Status, e.Message, e.Code)
}

// IsNotFound - сообщение/канал удалены или недоступны.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type RESTOption func(*REST)

func WithBaseURL(base string) RESTOption       { return func(r *REST) { r.base = base } }
func WithHTTPClient(c *http.Client) RESTOption { return func(r *REST) { r.http = c } }
func WithRESTLogger(l *slog.Logger) RESTOption { return func(r *REST) { r.log = l } }
func WithRateLimitRetries(n int) RESTOption    { return func(r *REST) { r.maxRetries = n } }

// REST - минимальный HTTP-клиент Discord API v10 с обработкой 429.
type REST struct {
	http       *http.Client
	token      string
	base       string
	maxRetries int
	log        *slog.Logger
}

func NewREST(token string, opts ...RESTOption) *REST {
	r := &REST{
		http:       &http.Client{Timeout: 15 * time.Second},
		token:      token,
		base:       DefaultAPIBase,
		maxRetries: 3,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *REST) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = b
	}

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, r.base+path, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bot "+r.token)
		req.Header.Set("User-Agent", userAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := r.http.Do(req)
		if err != nil {
			return err
		}
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests && attempt < r.maxRetries {
			wait := retryAfter(resp.Header, respBody)
			r.log.Warn("discord rate limited", "method", method, "path", path, "retry_after", wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
			if json.Unmarshal(respBody, apiErr) != nil || apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
			return apiErr
		}

		if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
		return nil
	}
}

// retryAfter: тело {"retry_after": 1.5} приоритетнее заголовка Retry-After.
func retryAfter(h http.Header, body []byte) time.Duration {
	var rl struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if json.Unmarshal(body, &rl) == nil && rl.RetryAfter > 0 {
		return time.Duration(rl.RetryAfter * float64(time.Second))
	}
	if v, err := strconv.ParseFloat(h.Get("Retry-After"), 64); err == nil && v > 0 {
		return time.Duration(v * float64(time.Second))
	}
	return time.Second
}
