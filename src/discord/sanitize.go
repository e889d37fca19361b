package discord

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Embed field limits.
const (
	MaxTitleLen       = 256
	MaxDescriptionLen = 4096
	MaxFieldValueLen  = 1024
)

var textPolicy = bluemonday.StrictPolicy()

// CleanText strips markup from member supplied text, defuses mass mentions
// and cuts it to limit runes.
func CleanText(text string, limit int) string {
	clean := html.UnescapeString(textPolicy.Sanitize(text))
	clean = strings.NewReplacer("@everyone", "@\u200beveryone", "@here", "@\u200bhere").Replace(clean)
	clean = strings.TrimSpace(clean)
	return truncate(clean, limit)
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

// CleanURL keeps only absolute http(s) links.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "https://") || strings.HasPrefix(raw, "http://") {
		return raw
	}
	return ""
}
