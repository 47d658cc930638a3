package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen caps every text field and the search box, in runes.
const maxInputLen = 200

// editRune applies one key to a text value. Only "backspace" and single
// printable runes change it.
func editRune(text, key string) string {
	if key == "backspace" {
		_, size := utf8.DecodeLastRuneInString(text)
		return text[:len(text)-size]
	}
	if utf8.RuneCountInString(key) != 1 || utf8.RuneCountInString(text) >= maxInputLen {
		return text
	}
	return text + key
}

// truncateToHeight keeps the first maxLines lines of s. A non-positive
// maxLines keeps everything.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 || strings.Count(s, "\n") < maxLines {
		return s
	}
	end := 0
	for range maxLines {
		end += strings.IndexByte(s[end:], '\n') + 1
	}
	return s[:end]
}

// renderInput draws a one-line field. Secret values are masked.
func renderInput(value, placeholder string, focused, secret bool) string {
	shown := value
	if secret {
		shown = strings.Repeat("•", utf8.RuneCountInString(value))
	}
	var cursor string
	if focused {
		cursor = accentStyle.Render("█")
	}
	switch {
	case value == "":
		return cursor + inputPlaceholderStyle.Render(placeholder)
	case focused:
		return selectedStyle.Render(shown) + cursor
	}
	return normalStyle.Render(shown)
}
