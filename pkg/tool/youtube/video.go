package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidVideoID = errors.New("invalid YouTube video URL or ID")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoID extracts the 11-character video identifier from a YouTube URL or
// returns input unchanged when it already is a bare identifier.
func VideoID(input string) (string, error) {
	input = strings.TrimSpace(input)

	if videoIDPattern.MatchString(input) {
		return input, nil
	}

	raw := input

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)

	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, input)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string

	switch host {
	case "youtu.be":
		id = segments[0]

	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if len(segments) == 1 && segments[0] == "watch" {
			id = u.Query().Get("v")
			break
		}

		if len(segments) >= 2 {
			switch segments[0] {
			case "embed", "shorts", "live", "v", "e":
				id = segments[1]
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, input)
	}

	return id, nil
}
