package typefully

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/tidwall/gjson"
)

var ErrMissingAPIKey = errors.New("TYPEFULLY_API_KEY is not configured")

var ErrInvalidScheduleDate = errors.New(`scheduleDate must be "next-free-slot" or an ISO-8601 timestamp`)

const NextFreeSlot = "next-free-slot"

const maxErrorRunes = 500

type Options struct {
	APIKey  string
	BaseURL string

	Timeout time.Duration

	HTTPClient *http.Client
}

type Client struct {
	client *http.Client

	apiKey  string
	baseURL string
}

var (
	_ Creator = (*Client)(nil)
)

func New(opts Options) *Client {
	client := opts.HTTPClient

	if client == nil {
		timeout := opts.Timeout

		if timeout <= 0 {
			timeout = 30 * time.Second
		}

		client = &http.Client{
			Timeout: timeout,
		}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")

	if baseURL == "" {
		baseURL = "https://api.typefully.com"
	}

	return &Client{
		client: client,

		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
	}
}

type DraftOptions struct {
	Threadify    *bool
	ScheduleDate string
	Share        *bool
}

type Draft struct {
	ID     string
	Status string

	CreatedAt time.Time
	ShareURL  string
}

type draftRequest struct {
	Content string `json:"content"`

	Threadify    *bool  `json:"threadify,omitempty"`
	ScheduleDate string `json:"schedule-date,omitempty"`
	Share        *bool  `json:"share,omitempty"`
}

func (c *Client) CreateDraft(ctx context.Context, content string, opts DraftOptions) (*Draft, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if strings.TrimSpace(content) == "" {
		return nil, errors.New("draft content must not be empty")
	}

	schedule, err := ScheduleDate(opts.ScheduleDate)

	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(draftRequest{
		Content: content,

		Threadify:    opts.Threadify,
		ScheduleDate: schedule,
		Share:        opts.Share,
	})

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/drafts/", bytes.NewReader(body))

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("typefully request failed: %w", err)
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, resp.Header.Get("Content-Type"), data)
	}

	if !gjson.ValidBytes(data) {
		return nil, errors.New("typefully returned an invalid response")
	}

	result := gjson.ParseBytes(data)

	draft := &Draft{
		ID:     result.Get("id").String(),
		Status: result.Get("status").String(),

		ShareURL: result.Get("share_url").String(),
	}

	if draft.Status == "" {
		draft.Status = "draft"
	}

	if created := result.Get("created_at").String(); created != "" {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			draft.CreatedAt = t
		}
	}

	return draft, nil
}

// ScheduleDate normalizes a schedule value. Empty means unscheduled.
func ScheduleDate(value string) (string, error) {
	value = strings.TrimSpace(value)

	if value == "" || value == NextFreeSlot {
		return value, nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidScheduleDate, value)
}

// apiError builds an error from an upstream failure. JSON bodies contribute
// their detail field and HTML error pages are reduced to their text.
func apiError(status int, contentType string, data []byte) error {
	message := strings.TrimSpace(string(data))

	switch {
	case gjson.ValidBytes(data):
		for _, key := range []string{"detail", "message", "error"} {
			if v := gjson.GetBytes(data, key); v.Exists() && v.String() != "" {
				message = v.String()
				break
			}
		}

	case isHTML(contentType, message):
		if text, err := htmltomarkdown.ConvertString(message); err == nil {
			message = text
		}
	}

	message = strings.Join(strings.Fields(message), " ")

	if runes := []rune(message); len(runes) > maxErrorRunes {
		message = string(runes[:maxErrorRunes])
	}

	if message == "" {
		message = http.StatusText(status)
	}

	return fmt.Errorf("typefully api error (%d): %s", status, message)
}

func isHTML(contentType, body string) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "text/html" {
		return true
	}

	return strings.HasPrefix(body, "<")
}
