package session

import (
	"errors"
	"strings"
	"unicode"
)

// Guess validation failures. Both are handled locally and never reach the
// network.
var (
	ErrEmptyWord     = errors.New("empty word")
	ErrNotAlphabetic = errors.New("word contains non-alphabetic characters")
)

// NormalizeGuess trims the raw input and checks it against the language's
// letter set. It returns the word that goes on the wire.
func NormalizeGuess(lang, raw string) (string, error) {
	word := strings.TrimSpace(raw)
	if word == "" {
		return "", ErrEmptyWord
	}
	for _, r := range word {
		if !isLetter(lang, r) {
			return "", ErrNotAlphabetic
		}
	}
	return word, nil
}

// isLetter reports whether r belongs to the alphabet of lang. Russian is
// checked strictly (the server's dictionary is Cyrillic-only); other
// languages fall back to the Unicode letter property.
func isLetter(lang string, r rune) bool {
	if lang == "ru" {
		return (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я') || r == 'ё' || r == 'Ё'
	}
	return unicode.IsLetter(r)
}
