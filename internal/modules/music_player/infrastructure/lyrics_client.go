package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/disgoorg/json"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
)

// DefaultLyricsBaseURL is the public lrclib API.
const DefaultLyricsBaseURL = "https://lrclib.net"

const lyricsUserAgent = "cadence (https://github.com/sglre6355/cadence)"

// Ensure LRCLibClient implements ports.LyricsProvider.
var _ ports.LyricsProvider = (*LRCLibClient)(nil)

// timestamps of synced lyrics, e.g. "[01:23.45]"
var lrcTimestamp = regexp.MustCompile(`^\[\d+:\d+(?:\.\d+)?\]\s?`)

type lrclibRecord struct {
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	Instrumental bool   `json:"instrumental"`
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

// LRCLibClient looks up lyrics on lrclib.net.
type LRCLibClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLRCLibClient creates a new LRCLibClient. An empty baseURL uses the public API.
func NewLRCLibClient(baseURL string) *LRCLibClient {
	if baseURL == "" {
		baseURL = DefaultLyricsBaseURL
	}
	return &LRCLibClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Search returns the first result that has lyrics, or ports.ErrLyricsNotFound.
func (c *LRCLibClient) Search(ctx context.Context, query string) (*ports.Lyrics, error) {
	endpoint := c.baseURL + "/api/search?" + url.Values{"q": {query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lyrics request: %w", err)
	}
	req.Header.Set("User-Agent", lyricsUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search lyrics: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ports.ErrLyricsNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lyrics search returned status %d", resp.StatusCode)
	}

	var records []lrclibRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode lyrics response: %w", err)
	}

	for _, record := range records {
		if lyrics := record.toLyrics(); lyrics != nil {
			return lyrics, nil
		}
	}
	return nil, ports.ErrLyricsNotFound
}

// toLyrics prefers plain lyrics and falls back to synced lyrics with timestamps removed.
func (r lrclibRecord) toLyrics() *ports.Lyrics {
	lyrics := &ports.Lyrics{
		TrackName:    r.TrackName,
		ArtistName:   r.ArtistName,
		Instrumental: r.Instrumental,
	}
	if r.Instrumental {
		return lyrics
	}

	switch {
	case strings.TrimSpace(r.PlainLyrics) != "":
		lyrics.Lines = splitLines(r.PlainLyrics, nil)
	case strings.TrimSpace(r.SyncedLyrics) != "":
		lyrics.Lines = splitLines(r.SyncedLyrics, lrcTimestamp)
	default:
		return nil
	}
	return lyrics
}

func splitLines(text string, strip *regexp.Regexp) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if strip != nil {
			line = strip.ReplaceAllString(line, "")
		}
		lines[i] = strings.TrimRight(line, " \t")
	}
	return lines
}
