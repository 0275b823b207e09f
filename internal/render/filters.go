package render

import (
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
)

// readingSpeed is the assumed reading speed in characters per minute.
const readingSpeed = 450

// invalidDate is the placeholder emitted for unparseable date input.
const invalidDate = "Invalid Date"

// ReadTime estimates reading time in minutes for a rendered HTML body:
// tags are stripped, the remaining character count is divided by the
// reading speed and floored, with a minimum of one minute. Total over
// all inputs; the empty string yields 1.
func ReadTime(body string) int {
	n := utf8.RuneCountInString(StripTags(body))
	if minutes := n / readingSpeed; minutes > 1 {
		return minutes
	}
	return 1
}

// StripTags removes HTML markup, returning the concatenated text content.
// Script and style bodies are dropped since they are never read.
func StripTags(body string) string {
	var b strings.Builder
	skipDepth := 0

	tokenizer := xhtml.NewTokenizer(strings.NewReader(body))
	for {
		switch tokenizer.Next() {
		case xhtml.ErrorToken:
			return b.String()
		case xhtml.StartTagToken:
			if name, _ := tokenizer.TagName(); isInvisible(string(name)) {
				skipDepth++
			}
		case xhtml.EndTagToken:
			if name, _ := tokenizer.TagName(); isInvisible(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case xhtml.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

func isInvisible(tag string) bool {
	return tag == "script" || tag == "style"
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders a date-like value as a long-form English date such
// as "April 16, 2021". Unparseable input yields the literal placeholder
// "Invalid Date" rather than an error.
func FormatDate(v any) string {
	switch t := v.(type) {
	// Matches time.Time and any type embedding it, e.g. content.Date.
	case interface{ UTC() time.Time }:
		ts := t.UTC()
		if ts.IsZero() {
			return invalidDate
		}
		return ts.Format("January 2, 2006")
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.Format("January 2, 2006")
			}
		}
		return invalidDate
	default:
		return invalidDate
	}
}

// Image is the image shortcode: it emits a lazy-loading <img> tag for a
// file under the site's image path.
func Image(imagePath string) func(filename, alt string) template.HTML {
	prefix := strings.TrimRight(imagePath, "/")
	return func(filename, alt string) template.HTML {
		src := prefix + "/" + strings.TrimLeft(filename, "/")
		return template.HTML(fmt.Sprintf(
			`<img src="%s" alt="%s" loading="lazy">`,
			html.EscapeString(src), html.EscapeString(alt)))
	}
}
