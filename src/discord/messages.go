package discord

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxDiscordMessageLen = 2000
	SafeChunkLen         = 1900
)

// ChunkMessage splits text on line boundaries into Discord sized messages.
// Lines longer than a chunk are cut by rune count.
func ChunkMessage(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= MaxDiscordMessageLen {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}
	for _, line := range strings.Split(text, "\n") {
		for utf8.RuneCountInString(line) > SafeChunkLen {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:SafeChunkLen]))
			line = string(runes[SafeChunkLen:])
		}
		n := utf8.RuneCountInString(line)
		if size > 0 && size+1+n > SafeChunkLen {
			flush()
		}
		if size > 0 {
			current.WriteByte('\n')
			size++
		}
		current.WriteString(line)
		size += n
	}
	flush()
	return chunks
}
