// Package text prepares inbox documents for speech synthesis. It repairs
// line structure at ingestion time and renders each line as SSML markup.
package text

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultRate is the prosody rate requested from the speech service.
const DefaultRate = "x-fast"

// Regex patterns for document cleanup.
const (
	hyphenBreakPattern = `-\r?\n`

	// A break not preceded by sentence punctuation is treated as a wrap.
	// Citation characters right before the break are swallowed with it, and
	// a marker after punctuation ("end.[2]") still reads as a wrap. A bare
	// newline also matches, so runs of blank lines become space-only lines.
	unpunctuatedBreakPattern = `(?P<char>[^.?!])[\[\d\]]*\r?\n`

	quotePattern    = `["“](?P<inner>.*?)(?P<punct>[.?!])?[”"]`
	citationPattern = `\[\^?\d+\]`
)

const ssmlEnvelope = `<speak><prosody rate="%s"><p>%s</p></prosody></speak>`

var markupEscaper = strings.NewReplacer(
	`"`, " (quote) ",
	"&", "&amp;",
	"'", "&apos;",
	"<", "&lt;",
	">", "&gt;",
)

// Normalizer turns raw document text into synthesis-ready markup.
type Normalizer struct {
	hyphenBreak       *regexp.Regexp
	unpunctuatedBreak *regexp.Regexp
	quote             *regexp.Regexp
	citation          *regexp.Regexp

	rate   string
	reflow bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithRate sets the prosody rate written into the SSML envelope.
func WithRate(rate string) Option {
	return func(n *Normalizer) {
		if rate != "" {
			n.rate = rate
		}
	}
}

// WithReflow enables or disables mid-sentence line break repair.
// Hyphenated breaks are joined either way.
func WithReflow(enabled bool) Option {
	return func(n *Normalizer) {
		n.reflow = enabled
	}
}

// NewNormalizer creates a normalizer with compiled patterns.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		hyphenBreak:       regexp.MustCompile(hyphenBreakPattern),
		unpunctuatedBreak: regexp.MustCompile(unpunctuatedBreakPattern),
		quote:             regexp.MustCompile(quotePattern),
		citation:          regexp.MustCompile(citationPattern),
		rate:              DefaultRate,
		reflow:            true,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Reflow repairs line structure of a whole document: hyphenated breaks are
// joined without a space and, when reflow is enabled, breaks that look like
// they fall mid-sentence become a single space.
func (n *Normalizer) Reflow(doc string) string {
	doc = n.hyphenBreak.ReplaceAllString(doc, "")
	if !n.reflow {
		return doc
	}
	return n.unpunctuatedBreak.ReplaceAllString(doc, "${char} ")
}

// Markup renders one line as SSML. It must be applied exactly once per line:
// escaping is not idempotent.
func (n *Normalizer) Markup(line string) string {
	line = n.quote.ReplaceAllString(line, "(quote) ${inner} (end quote)${punct}")
	line = n.citation.ReplaceAllString(line, "")
	return fmt.Sprintf(ssmlEnvelope, n.rate, markupEscaper.Replace(line))
}

// Normalize applies Reflow followed by Markup.
func (n *Normalizer) Normalize(raw string) string {
	return n.Markup(n.Reflow(raw))
}

// Split breaks a reflowed document into trimmed, non-blank lines.
func Split(doc string) []string {
	var lines []string
	for _, chunk := range strings.Split(doc, "\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		lines = append(lines, chunk)
	}
	return lines
}
