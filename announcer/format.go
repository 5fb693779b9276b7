package announcer

import (
	"fmt"
	"strings"

	"github.com/frtsoysal/4castytwitterbot/gamma"
)

// maxTweetRunes is the platform's hard length cap, counted in characters.
const maxTweetRunes = 280

const (
	tweetHeader    = "🚨 New Polymarket Event!"
	tweetFooter    = "🔮 Join @4Castylabs waitlist now: www.4casty.com"
	tweetFooterAlt = "🔮 Join 4Casty Terminal waitlist: www.4casty.com"
)

// formatAmount renders a dollar amount with K/M abbreviation.
func formatAmount(n float64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("$%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("$%.0fK", n/1_000)
	default:
		return fmt.Sprintf("$%.0f", n)
	}
}

func renderTweet(title, volStr, liqStr, url, footer string) string {
	return tweetHeader + "\n\n" +
		title + "\n\n" +
		"📊 Volume: " + volStr + "\n" +
		"💰 Liquidity: " + liqStr + "\n\n" +
		"Trade 👉 " + url + "\n\n" +
		footer
}

// composeTweet renders the announcement for ev, never exceeding 280
// characters. When the full render is too long the title is shortened with an
// ellipsis and the message re-rendered with a shorter footer; when even a
// 20-character title would not fit, the whole message is hard-truncated.
func composeTweet(ev gamma.Event, siteURL string) string {
	title := ev.Title
	if title == "" {
		title = "New Event"
	}
	slug := ev.Slug
	if slug == "" {
		slug = ev.ID.String()
	}
	url := strings.TrimRight(siteURL, "/") + "/event/" + slug

	volStr := formatAmount(ev.Volume.Value())
	liqStr := formatAmount(ev.Liquidity.Value())

	tweet := renderTweet(title, volStr, liqStr, url, tweetFooter)
	if n := len([]rune(tweet)); n > maxTweetRunes {
		maxTitleLen := len([]rune(title)) - (n - maxTweetRunes) - 3
		if maxTitleLen > 20 {
			title = truncateRunes(title, maxTitleLen) + "..."
			tweet = renderTweet(title, volStr, liqStr, url, tweetFooterAlt)
		}
	}
	return truncateRunes(tweet, maxTweetRunes)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n < 0 {
		n = 0
	}
	return string(r[:n])
}
