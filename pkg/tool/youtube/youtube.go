package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
)

var ErrNoTranscript = errors.New("no transcript available for this video")

type Options struct {
	BaseURL  string
	Language string

	Timeout    time.Duration
	MaxRetries int

	HTTPClient *http.Client
}

type Client struct {
	client *http.Client

	baseURL  string
	language string

	maxRetries int
}

var (
	_ Fetcher = (*Client)(nil)
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
		baseURL = "https://www.youtube.com"
	}

	language := opts.Language

	if language == "" {
		language = "en"
	}

	return &Client{
		client: client,

		baseURL:  baseURL,
		language: language,

		maxRetries: max(opts.MaxRetries, 0),
	}
}

type Transcript struct {
	VideoID      string
	LanguageCode string

	Segments []Segment
	FullText string
}

type Segment struct {
	Start    time.Duration
	Duration time.Duration

	Text string
}

func (t *Transcript) SegmentCount() int {
	return len(t.Segments)
}

// Fetch downloads the caption track of a video in the preferred language,
// falling back to whatever track the video offers.
func (c *Client) Fetch(ctx context.Context, video string) (*Transcript, error) {
	id, err := VideoID(video)

	if err != nil {
		return nil, err
	}

	page, err := c.get(ctx, c.baseURL+"/watch?v="+url.QueryEscape(id))

	if err != nil {
		return nil, fmt.Errorf("failed to load video page: %w", err)
	}

	player, err := playerResponse(page)

	if err != nil {
		return nil, err
	}

	if status := gjson.Get(player, "playabilityStatus.status").String(); status != "" && status != "OK" {
		reason := gjson.Get(player, "playabilityStatus.reason").String()

		if reason == "" {
			reason = status
		}

		return nil, fmt.Errorf("video %s is not available: %s", id, reason)
	}

	tracks := gjson.Get(player, "captions.playerCaptionsTracklistRenderer.captionTracks").Array()

	track, ok := selectTrack(tracks, c.language)

	if !ok {
		return nil, fmt.Errorf("%w (video %s)", ErrNoTranscript, id)
	}

	trackURL, err := c.resolve(track.Get("baseUrl").String())

	if err != nil {
		return nil, err
	}

	data, err := c.get(ctx, trackURL)

	if err != nil {
		return nil, fmt.Errorf("failed to download captions: %w", err)
	}

	segments, err := parseCaptions(data)

	if err != nil {
		return nil, err
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("%w (video %s)", ErrNoTranscript, id)
	}

	texts := make([]string, 0, len(segments))

	for _, s := range segments {
		texts = append(texts, s.Text)
	}

	return &Transcript{
		VideoID:      id,
		LanguageCode: track.Get("languageCode").String(),

		Segments: segments,
		FullText: normalize(strings.Join(texts, " ")),
	}, nil
}

func (c *Client) resolve(ref string) (string, error) {
	if ref == "" {
		return "", errors.New("caption track has no url")
	}

	base, err := url.Parse(c.baseURL + "/")

	if err != nil {
		return "", err
	}

	u, err := base.Parse(ref)

	if err != nil {
		return "", fmt.Errorf("invalid caption track url: %w", err)
	}

	return u.String(), nil
}

func (c *Client) get(ctx context.Context, target string) (string, error) {
	var body string

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)

		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("Accept-Language", c.language+",en;q=0.8")
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.4 Safari/605.1.15")

		resp, err := c.client.Do(req)

		if err != nil {
			return err
		}

		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)

		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("youtube returned %s", resp.Status)
		}

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("youtube returned %s", resp.Status))
		}

		body = string(data)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)); err != nil {
		return "", err
	}

	return body, nil
}

var playerPattern = regexp.MustCompile(`ytInitialPlayerResponse\s*=\s*\{`)

// playerResponse cuts the ytInitialPlayerResponse object out of a watch page.
func playerResponse(page string) (string, error) {
	loc := playerPattern.FindStringIndex(page)

	if loc == nil {
		return "", errors.New("could not find player response on video page")
	}

	var raw json.RawMessage

	if err := json.NewDecoder(strings.NewReader(page[loc[1]-1:])).Decode(&raw); err != nil {
		return "", fmt.Errorf("failed to parse player response: %w", err)
	}

	return string(raw), nil
}

func selectTrack(tracks []gjson.Result, language string) (gjson.Result, bool) {
	if len(tracks) == 0 {
		return gjson.Result{}, false
	}

	base := func(code string) string {
		code, _, _ = strings.Cut(strings.ToLower(code), "-")
		return code
	}

	manual := func(t gjson.Result) bool {
		return t.Get("kind").String() != "asr"
	}

	matchers := []func(t gjson.Result) bool{
		func(t gjson.Result) bool { return strings.EqualFold(t.Get("languageCode").String(), language) && manual(t) },
		func(t gjson.Result) bool { return strings.EqualFold(t.Get("languageCode").String(), language) },
		func(t gjson.Result) bool { return base(t.Get("languageCode").String()) == base(language) && manual(t) },
		func(t gjson.Result) bool { return base(t.Get("languageCode").String()) == base(language) },
		manual,
	}

	for _, match := range matchers {
		for _, t := range tracks {
			if match(t) {
				return t, true
			}
		}
	}

	return tracks[0], true
}

type timedText struct {
	Texts []struct {
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
		Body     string  `xml:",chardata"`
	} `xml:"text"`

	Paragraphs []struct {
		Start    int64  `xml:"t,attr"`
		Duration int64  `xml:"d,attr"`
		Body     string `xml:",innerxml"`
	} `xml:"body>p"`
}

func parseCaptions(data string) ([]Segment, error) {
	var doc timedText

	if err := xml.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse captions: %w", err)
	}

	var segments []Segment

	for _, t := range doc.Texts {
		text := normalize(html.UnescapeString(t.Body))

		if text == "" {
			continue
		}

		segments = append(segments, Segment{
			Start:    seconds(t.Start),
			Duration: seconds(t.Duration),

			Text: text,
		})
	}

	for _, p := range doc.Paragraphs {
		text := normalize(html.UnescapeString(innerText(p.Body)))

		if text == "" {
			continue
		}

		segments = append(segments, Segment{
			Start:    time.Duration(p.Start) * time.Millisecond,
			Duration: time.Duration(p.Duration) * time.Millisecond,

			Text: text,
		})
	}

	return segments, nil
}

// innerText joins the character data of a srv3 paragraph, which holds either
// plain text or word-level <s> elements. Line breaks become spaces.
func innerText(inner string) string {
	var b strings.Builder

	d := xml.NewDecoder(strings.NewReader(inner))
	d.Strict = false

	for {
		tok, err := d.Token()

		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)

		case xml.StartElement:
			if t.Name.Local == "br" {
				b.WriteString(" ")
			}
		}
	}

	return b.String()
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
