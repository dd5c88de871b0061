package discord

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/usecases"
	"golang.org/x/image/font/basicfont"
)

const (
	cardWidth   = 800
	cardHeight  = 220
	cardPadding = 32
	cardAccent  = 12
)

// basicfont has a single 7x13 face, so larger text is drawn scaled.
const (
	titleScale = 2.2
	bodyScale  = 1.5
)

// RenderNowPlayingCard draws the "Now Playing" card as a PNG.
func RenderNowPlayingCard(info *usecases.NowPlayingInfo) ([]byte, error) {
	track := info.Track
	dc := gg.NewContext(cardWidth, cardHeight)

	dc.SetHexColor("#1e1f22")
	dc.Clear()

	// source-colored stripe on the left edge
	setColor(dc, track.Source().Color())
	dc.DrawRectangle(0, 0, cardAccent, cardHeight)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	textWidth := float64(cardWidth - cardAccent - 2*cardPadding)
	left := float64(cardAccent + cardPadding)

	dc.SetHexColor("#b5bac1")
	status := "NOW PLAYING"
	if info.Paused {
		status = "PAUSED"
	}
	drawScaled(dc, status, left, 44, 1)

	dc.SetHexColor("#f2f3f5")
	drawScaled(dc, fitString(dc, track.Title, textWidth, titleScale), left, 86, titleScale)

	dc.SetHexColor("#b5bac1")
	drawScaled(dc, fitString(dc, track.Artist, textWidth, bodyScale), left, 118, bodyScale)

	barY := 150.0
	dc.SetHexColor("#4e5058")
	dc.DrawRoundedRectangle(left, barY, textWidth, 8, 4)
	dc.Fill()

	if !track.IsStream && track.Duration > 0 {
		ratio := min(max(float64(info.Position)/float64(track.Duration), 0), 1)
		if ratio > 0 {
			setColor(dc, track.Source().Color())
			dc.DrawRoundedRectangle(left, barY, textWidth*ratio, 8, 4)
			dc.Fill()
		}
	}

	dc.SetHexColor("#b5bac1")
	drawScaled(dc, FormatDuration(info.Position), left, 186, 1)
	drawScaledRight(dc, trackLength(track), left+textWidth, 186, 1)

	footer := fmt.Sprintf("Volume %d%%  Loop %s", info.Volume, loopModeLabel(info.LoopMode))
	if info.Filter != "" {
		footer += "  Filter " + string(info.Filter)
	}
	drawScaled(dc, footer, left, 206, 1)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode card: %w", err)
	}
	return buf.Bytes(), nil
}

func setColor(dc *gg.Context, rgb int) {
	dc.SetRGB255((rgb>>16)&0xff, (rgb>>8)&0xff, rgb&0xff)
}

func drawScaled(dc *gg.Context, s string, x, y, scale float64) {
	dc.Push()
	dc.Scale(scale, scale)
	dc.DrawString(s, x/scale, y/scale)
	dc.Pop()
}

func drawScaledRight(dc *gg.Context, s string, right, y, scale float64) {
	w, _ := dc.MeasureString(s)
	drawScaled(dc, s, right-w*scale, y, scale)
}

// fitString truncates s with an ellipsis until it fits width at the given scale.
func fitString(dc *gg.Context, s string, width, scale float64) string {
	if w, _ := dc.MeasureString(s); w*scale <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		// basicfont has no glyph for "…"
		candidate := string(runes) + "..."
		if w, _ := dc.MeasureString(candidate); w*scale <= width {
			return candidate
		}
	}
	return ""
}
