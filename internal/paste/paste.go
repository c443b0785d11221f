// Package paste turns text copied out of chat apps, email clients and web
// pages into plain line-oriented text the label extractor can scan.
package paste

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var invisibleReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\t", " ",
	"\u00a0", " ",
	"\u3000", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
)

var htmlTagRE = regexp.MustCompile(`(?i)<(?:html|body|br|p|div|span|li|ul|ol|table|tbody|tr|td|th|h[1-6]|b|strong|em|font)\b[^>]*>`)

// Clean normalizes pasted text. Line endings become "\n", tabs and no-break
// spaces become plain spaces, zero-width characters are dropped and blank-line
// runs are squeezed. HTML pastes are rendered one block per line.
// Clean never fails; input it cannot improve is returned trimmed.
func Clean(raw string) string {
	text := invisibleReplacer.Replace(raw)
	if htmlTagRE.MatchString(text) {
		if plain, ok := htmlToText(text); ok {
			return trimLines(invisibleReplacer.Replace(plain))
		}
	}
	return trimLines(text)
}

// trimLines trims trailing spaces and squeezes runs of blank lines to one.
func trimLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

const blockSelector = "p, div, li, h1, h2, h3, h4, h5, h6, blockquote, section, article, pre"

// htmlToText renders an HTML fragment as text with one line per block.
// Two-cell table rows become "label: value" lines.
func htmlToText(markup string) (string, bool) {
	// Source newlines are insignificant whitespace in HTML.
	markup = strings.ReplaceAll(markup, "\n", " ")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", false
	}

	doc.Find("head, script, style, noscript").Remove()

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, collapse(cell.Text()))
		})
		if len(texts) == 2 && texts[0] != "" {
			label := strings.TrimRight(texts[0], ":： ")
			row.SetText(label + ": " + texts[1] + "\n")
			return
		}
		row.SetText(strings.Join(texts, " ") + "\n")
	})

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(doc.Text()), true
}

// collapse squeezes runs of whitespace inside a single cell.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanWhitespace trims every line and drops blank ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
