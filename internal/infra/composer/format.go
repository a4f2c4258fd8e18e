package composer

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
	"github.com/DepSpiel/telegram-pidrgpt/internal/utils/text"
)

const (
	// dateLayout renders dates the way they appear in published digests,
	// e.g. "August 21, 2026". The day is zero-padded.
	dateLayout = "January 02, 2006"

	// captionLimit is the hard cap on published caption length in runes.
	captionLimit = entity.MaxCaptionRunes

	defaultTitle = "Crypto Market Update"
	hashtagsLine = "*#CryptoNews #MarketOverview*"
)

var (
	// citationPattern matches inline citation markers like [1] or [12].
	citationPattern = regexp.MustCompile(`\[\d+\]`)

	// boldPattern and italicPattern unwrap markdown emphasis, keeping the
	// inner text. The model emits these even when asked for plain text.
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)

	// spacingPattern collapses runs of spaces and tabs but preserves
	// newlines, which carry the title/body structure.
	spacingPattern = regexp.MustCompile(`[ \t]+`)

	// blankRunPattern collapses stacked blank lines into a single one.
	blankRunPattern = regexp.MustCompile(`\n\s*\n+`)

	// trailingTagsPattern strips a run of hashtags at the end of the body;
	// the digest appends its own hashtag line.
	trailingTagsPattern = regexp.MustCompile(`(?:#\w+\s*)+$`)
)

// formatCaption turns raw model output into a publishable caption: header
// with title and date, four to six bullets, and a hashtag line, capped at
// captionLimit runes. It never fails; a panic while formatting yields the
// minimal caption instead.
func formatCaption(content, date string) (caption string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Caption formatting panicked, using minimal caption",
				slog.Any("panic", r))
			caption = minimalCaption(date)
		}
	}()

	cleaned := cleanContent(content)

	title := defaultTitle
	body := cleaned
	if line, rest, ok := splitTitle(cleaned); ok {
		title = line
		body = rest
	}

	header := []string{
		fmt.Sprintf("📈 **%s**", title),
		fmt.Sprintf("📅 *%s*", date),
		"",
	}

	bullets := toBullets(body)
	caption = assembleCaption(header, bullets)

	// Shrink the bullet block first so the header and hashtags survive.
	if text.CountRunes(caption) > captionLimit {
		budget := captionLimit -
			(text.CountRunes(strings.Join(header, "\n")) + 1 + text.CountRunes(hashtagsLine) + 2)
		if budget < 0 {
			budget = 0
		}
		bullets = truncateBullets(bullets, budget)
		caption = assembleCaption(header, bullets)
	}

	return clampCaption(caption)
}

// cleanContent normalizes model output: citations and markdown emphasis
// are removed, horizontal whitespace is collapsed, and stacked blank lines
// become a single one. Idempotent.
func cleanContent(content string) string {
	cleaned := citationPattern.ReplaceAllString(content, "")
	cleaned = boldPattern.ReplaceAllString(cleaned, "$1")
	cleaned = italicPattern.ReplaceAllString(cleaned, "$1")
	cleaned = spacingPattern.ReplaceAllString(cleaned, " ")
	cleaned = blankRunPattern.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// splitTitle treats the first line as the headline when it is short and not
// already a bullet. When the rest of the text is empty the whole cleaned
// content serves as the body, so no text is lost to the header.
func splitTitle(cleaned string) (title, body string, ok bool) {
	line, rest, _ := strings.Cut(cleaned, "\n")
	line = strings.TrimSpace(line)

	if line == "" || text.CountRunes(line) >= 120 ||
		strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-") {
		return "", "", false
	}

	body = strings.TrimSpace(rest)
	if body == "" {
		body = cleaned
	}

	return line, body, true
}

// sentenceSplitter marks sentence terminators so the text can be split
// without losing them.
var sentenceSplitter = strings.NewReplacer(".", ".|", "!", "!|", "?", "?|")

// toBullets converts body text into bullet lines. Fragments of 15 runes or
// fewer are dropped, short sentences are swapped for stock enhancements,
// and the result is forced into the four-to-six bullet band.
func toBullets(body string) []string {
	body = strings.TrimSpace(trailingTagsPattern.ReplaceAllString(body, ""))

	parts := strings.Split(sentenceSplitter.Replace(body), "|")

	bullets := make([]string, 0, len(parts))
	for _, part := range parts {
		sentence := strings.TrimSpace(part)
		if text.CountRunes(sentence) <= 15 {
			continue
		}

		sentence = strings.TrimSpace(strings.TrimRight(sentence, ".!?"))
		if sentence == "" {
			continue
		}

		if text.CountRunes(sentence) < 60 {
			sentence = enhanceShortBullet(sentence)
		}

		bullets = append(bullets, "• "+sentence)
	}

	if len(bullets) < 4 {
		return comprehensiveBullets()
	}
	if len(bullets) > 6 {
		return bullets[:6]
	}
	return bullets
}

// bulletEnhancements swap a thin sentence for a fuller stock line. The
// pairs are ordered; the first keyword hit wins.
var bulletEnhancements = []struct {
	keyword     string
	replacement string
}{
	{"bitcoin", "Bitcoin continues its market leadership with institutional interest"},
	{"ethereum", "Ethereum shows network strength amid ongoing development"},
	{"market", "Market dynamics reflect broader economic sentiment"},
	{"price", "Price action indicates key technical levels"},
	{"trading", "Trading volumes suggest increased market participation"},
}

// enhanceShortBullet replaces a sentence under 50 runes with a stock line
// when it mentions a known keyword. Longer or unmatched sentences pass
// through unchanged.
func enhanceShortBullet(sentence string) string {
	lower := strings.ToLower(sentence)
	for _, e := range bulletEnhancements {
		if strings.Contains(lower, e.keyword) && text.CountRunes(sentence) < 50 {
			return e.replacement
		}
	}
	return sentence
}

// comprehensiveBullets returns the stock bullet set used when the model
// output yields too few usable sentences.
func comprehensiveBullets() []string {
	return []string{
		"• Bitcoin maintains consolidation above key support levels with institutional accumulation patterns emerging",
		"• Ethereum demonstrates network resilience with increasing validator participation and Layer 2 adoption growth",
		"• Top altcoins including BNB, XRP, and SOL show divergent performance reflecting sector-specific developments",
		"• Market sentiment indicators suggest cautious optimism amid ongoing regulatory clarity initiatives",
		"• DeFi and AI token sectors attract renewed interest following recent technological breakthroughs",
		"• Technical analysis reveals critical support and resistance zones shaping near-term price trajectories",
	}
}

// truncateBullets keeps whole bullets while they fit in maxChars (counting
// a newline per bullet). When the next bullet does not fit and more than 30
// runes remain, a shortened version ending in "..." is kept. Fewer than
// three surviving bullets fall back to the first three originals; the final
// caption clamp bounds the overshoot.
func truncateBullets(bullets []string, maxChars int) []string {
	if maxChars <= 0 {
		return nil
	}

	result := make([]string, 0, len(bullets))
	used := 0

	for _, bullet := range bullets {
		length := text.CountRunes(bullet) + 1 // newline
		if used+length <= maxChars {
			result = append(result, bullet)
			used += length
			continue
		}

		if available := maxChars - used; available > 30 {
			runes := []rune(bullet)
			shortened := strings.TrimRightFunc(string(runes[:available-3]), unicode.IsSpace) + "..."
			result = append(result, shortened)
		}
		break
	}

	if len(result) < 3 && len(bullets) > 0 {
		keep := 3
		if len(bullets) < keep {
			keep = len(bullets)
		}
		result = bullets[:keep]
	}

	return result
}

// assembleCaption joins the header, bullets, and hashtag line into the
// final caption layout.
func assembleCaption(header, bullets []string) string {
	lines := make([]string, 0, len(header)+len(bullets)+2)
	lines = append(lines, header...)
	lines = append(lines, bullets...)
	lines = append(lines, "", hashtagsLine)
	return strings.Join(lines, "\n")
}

// clampCaption enforces the hard caption limit, ending with an ellipsis
// when the text had to be cut.
func clampCaption(caption string) string {
	if text.CountRunes(caption) <= captionLimit {
		return caption
	}
	return text.Truncate(caption, captionLimit, "…")
}

// minimalCaption is the last-resort caption for pathological input.
func minimalCaption(date string) string {
	caption := fmt.Sprintf("📈 **%s**\n📅 *%s*\n\n• Comprehensive market analysis in progress\n\n%s",
		defaultTitle, date, hashtagsLine)
	return clampCaption(caption)
}
