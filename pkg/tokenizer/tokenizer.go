// Package tokenizer turns catalog field text into character n-gram tokens.
//
// Text is normalized, wrapped in start/end sentinels, and split into all
// sliding windows of length 2 and 3. Years are a special case: a 4-digit
// string is its own single token.
package tokenizer

import (
	"strings"
	"unicode"
)

const (
	// StartSymbol marks the beginning of a tokenized string.
	StartSymbol = '\u0001'
	// EndSymbol marks the end of a tokenized string.
	EndSymbol = '\u0002'
	// Unknown is the reserved token at vocabulary index 0.
	Unknown = '\u0003'
)

// UnknownToken is Unknown as a string, usable as a map key.
var UnknownToken = string(Unknown)

// TokenizeString tokenizes a string into 2- and 3-grams with their counts
// within the string.
func TokenizeString(s string) map[string]int {
	runes := []rune(normalize(s))
	wrapped := make([]rune, 0, len(runes)+2)
	wrapped = append(wrapped, StartSymbol)
	wrapped = append(wrapped, runes...)
	wrapped = append(wrapped, EndSymbol)
	tokens := make(map[string]int)
	tokenizeNgram(wrapped, 2, tokens)
	tokenizeNgram(wrapped, 3, tokens)
	return tokens
}

// tokenizeNgram counts every sliding window of length n into tokens.
func tokenizeNgram(runes []rune, n int, tokens map[string]int) {
	for i := 0; i+n <= len(runes); i++ {
		tokens[string(runes[i:i+n])]++
	}
}

// TokenizeYear tokenizes a year string. The year is a single token and is
// only accepted as exactly 4 ASCII digits; anything else yields no tokens.
func TokenizeYear(year string) map[string]int {
	if len(year) != 4 {
		return map[string]int{}
	}
	for i := 0; i < 4; i++ {
		if year[i] < '0' || year[i] > '9' {
			return map[string]int{}
		}
	}
	return map[string]int{year: 1}
}

func normalize(text string) string {
	text = strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != ' ' {
			continue
		}
		// Keep within the latin-1 range and drop control characters.
		if r > 255 || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
