package vizier

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxMessageBytes = 512

// Message returns a short human readable diagnostic for the response body.
// TAP services report query failures as a VOTable with an INFO element named
// QUERY_STATUS; front-end proxies usually answer with an HTML page. Anything
// else is returned as a trimmed snippet.
func (e *HTTPStatusError) Message() string {
	body := bytes.TrimSpace(e.Body)
	if len(body) == 0 {
		return ""
	}
	if looksLikeMarkup(e.ContentType, body) {
		if msg := markupMessage(body); msg != "" {
			return truncate(msg)
		}
	}
	return truncate(string(body))
}

func looksLikeMarkup(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "html") || strings.Contains(ct, "xml") {
		return true
	}
	return body[0] == '<'
}

func markupMessage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	// the HTML parser lowercases element and attribute names
	if info := doc.Find(`info[name="QUERY_STATUS"]`).First(); info.Length() > 0 {
		text := collapseSpace(info.Text())
		if text == "" {
			text, _ = info.Attr("value")
		}
		if text != "" {
			return text
		}
	}

	title := collapseSpace(doc.Find("title").First().Text())
	doc.Find("script, style, title").Remove()
	text := collapseSpace(doc.Find("body").Text())

	switch {
	case title != "" && text != "" && !strings.HasPrefix(text, title):
		return title + ": " + text
	case text != "":
		return text
	default:
		return title
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most maxMessageBytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxMessageBytes {
		return s
	}
	cut := maxMessageBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
