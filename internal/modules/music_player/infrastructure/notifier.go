package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
	"github.com/sglre6355/cadence/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorRed  = 0xE74C3C
	colorBlue = 0x5865F2
)

const (
	youtubeThumbnailBaseURL = "https://img.youtube.com/vi"
	thumbnailProbeTimeout   = 10 * time.Second
	thumbnailCacheSize      = 512
)

var youtubeQualities = []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

// NowPlayingRenderer builds the "Now Playing" message for the given artwork URL.
type NowPlayingRenderer func(info *ports.NowPlayingInfo, artworkURL string) *discordgo.MessageSend

// Notifier posts playback messages through the Discord session.
type Notifier struct {
	session    *discordgo.Session
	render     NowPlayingRenderer
	httpClient *http.Client

	thumbnailBaseURL string

	mu         sync.Mutex
	thumbnails map[string]string
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session, render NowPlayingRenderer) *Notifier {
	return &Notifier{
		session: session,
		render:  render,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		thumbnailBaseURL: youtubeThumbnailBaseURL,
		thumbnails:       make(map[string]string),
	}
}

// SendNowPlaying sends the "Now Playing" message to the channel and returns the message ID.
func (n *Notifier) SendNowPlaying(
	channelID snowflake.ID,
	info *ports.NowPlayingInfo,
) (snowflake.ID, error) {
	artworkURL := n.getBestThumbnail(info.Track)

	msg, err := n.session.ChannelMessageSendComplex(channelID.String(), n.render(info, artworkURL))
	if err != nil {
		return 0, fmt.Errorf("failed to send now playing message: %w", err)
	}
	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return 0, err
	}
	return messageID, nil
}

// DeleteMessage deletes a message from the channel.
func (n *Notifier) DeleteMessage(channelID snowflake.ID, messageID snowflake.ID) error {
	return n.session.ChannelMessageDelete(channelID.String(), messageID.String())
}

// SendNotice sends an informational embed to the channel.
func (n *Notifier) SendNotice(channelID snowflake.ID, message string) error {
	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), &discordgo.MessageEmbed{
		Description: message,
		Color:       colorBlue,
	})
	return err
}

// SendError sends an error message embed to the channel.
func (n *Notifier) SendError(channelID snowflake.ID, message string) error {
	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), &discordgo.MessageEmbed{
		Description: message,
		Color:       colorRed,
	})
	return err
}

// getBestThumbnail returns the first reachable artwork candidate for the
// track. Results are cached by track identity since looping tracks repeat.
func (n *Notifier) getBestThumbnail(track *domain.Track) string {
	candidates := artworkCandidates(track, n.thumbnailBaseURL)
	if len(candidates) == 0 {
		return track.ArtworkURL
	}

	key := string(track.ID) + "|" + track.ArtworkURL
	if url, ok := n.cachedThumbnail(key); ok {
		return url
	}

	ctx, cancel := context.WithTimeout(context.Background(), thumbnailProbeTimeout)
	defer cancel()

	best := track.ArtworkURL
	for _, url := range candidates {
		if n.urlExists(ctx, url) {
			best = url
			break
		}
	}
	n.cacheThumbnail(key, best)
	return best
}

// artworkCandidates lists higher resolution artwork URLs, best first.
// Sources without a known upgrade return none.
func artworkCandidates(track *domain.Track, youtubeBaseURL string) []string {
	switch track.Source() {
	case domain.TrackSourceYouTube:
		if track.ID == "" {
			return nil
		}
		candidates := make([]string, 0, len(youtubeQualities))
		for _, quality := range youtubeQualities {
			candidates = append(candidates, fmt.Sprintf("%s/%s/%s.jpg", youtubeBaseURL, track.ID, quality))
		}
		return candidates
	case domain.TrackSourceTwitch:
		return upgradedArtwork(track.ArtworkURL, "440x248", "1280x720")
	case domain.TrackSourceSoundCloud:
		return upgradedArtwork(track.ArtworkURL, "-large.", "-t500x500.")
	default:
		return nil
	}
}

func upgradedArtwork(url, from, to string) []string {
	if url == "" || !strings.Contains(url, from) {
		return nil
	}
	return []string{strings.Replace(url, from, to, 1)}
}

func (n *Notifier) cachedThumbnail(key string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	url, ok := n.thumbnails[key]
	return url, ok
}

func (n *Notifier) cacheThumbnail(key, url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	// crude bound; a full reset is fine for a cache of probe results
	if len(n.thumbnails) >= thumbnailCacheSize {
		clear(n.thumbnails)
	}
	n.thumbnails[key] = url
}

// urlExists reports whether a HEAD request for url succeeds.
func (n *Notifier) urlExists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}
