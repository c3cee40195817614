package sample

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const (
	PlaceholderTitle       = "Untitled Sample"
	PlaceholderDescription = "A beautiful SceneStealer sample design"
	// MaxDescription is the longest paragraph fallback, in characters, before it's cut and suffixed with Ellipsis.
	MaxDescription = 200
	Ellipsis       = "..."
)

// these are heuristics, not a parser. the first match wins.
var (
	titleRE = regexp.MustCompile(`(?is)<title(?:\s[^>]*)?>(.*?)</title>`)
	h1RE    = regexp.MustCompile(`(?is)<h1(?:\s[^>]*)?>(.*?)</h1>`)
	// <meta name="description" content="..."> in either attribute order.
	// content is matched per quote style, so a ' inside "..." (or " inside '...') is kept.
	metaDescRE    = regexp.MustCompile(`(?is)<meta[^>]*name\s*=\s*["']description["'][^>]*content\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	metaDescAltRE = regexp.MustCompile(`(?is)<meta[^>]*content\s*=\s*(?:"([^"]*)"|'([^']*)')[^>]*name\s*=\s*["']description["']`)
	// <p> or <p class=...>, but not <pre> or <param>.
	paragraphRE = regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p>`)
)

// Extract returns the best-effort title and description of an HTML document.
//
//   - title: the <title> text, else the text of the first <h1>, else PlaceholderTitle.
//   - description: the content of <meta name="description">, else the text of the first <p>
//     truncated to MaxDescription characters, else PlaceholderDescription.
//
// Matches that are empty once tags are stripped count as missing.
func Extract(doc string) (title, description string) {
	return Title(doc), Description(doc)
}

// Title is the title half of Extract.
func Title(doc string) string {
	for _, re := range []*regexp.Regexp{titleRE, h1RE} {
		if m := re.FindStringSubmatch(doc); m != nil {
			if s := Text(m[1]); s != "" {
				return s
			}
		}
	}
	return PlaceholderTitle
}

// Description is the description half of Extract.
func Description(doc string) string {
	for _, re := range []*regexp.Regexp{metaDescRE, metaDescAltRE} {
		if m := re.FindStringSubmatch(doc); m != nil {
			// at most one of the quote-style groups matched; the other is empty.
			if s := collapse(html.UnescapeString(m[1] + m[2])); s != "" {
				return s
			}
		}
	}
	if m := paragraphRE.FindStringSubmatch(doc); m != nil {
		if s := Text(m[1]); s != "" {
			return Truncate(s, MaxDescription)
		}
	}
	return PlaceholderDescription
}

// Text strips the tags out of an HTML fragment, decodes entities, and collapses runs of whitespace.
func Text(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken: // io.EOF for a fragment that's already in memory
			return collapse(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteByte(' ')
			}
		}
	}
}

// Truncate cuts s to at most n characters (runes, not bytes), adding Ellipsis if anything was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + Ellipsis
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }
