package discord

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s\[\]()<>]+`)

// WrapURLsNoEmbed wraps URLs in angle brackets to prevent Discord embeds.
func WrapURLsNoEmbed(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		url := strings.TrimRight(text[start:end], ".,;:!?")
		b.WriteString(text[last:start])
		if start > 0 && text[start-1] == '<' {
			b.WriteString(url)
		} else {
			b.WriteString("<" + url + ">")
		}
		last = start + len(url)
	}
	b.WriteString(text[last:])
	return b.String()
}
