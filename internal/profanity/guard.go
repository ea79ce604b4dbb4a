// Package profanity implements the text filtering collaborator used for
// display names and chat content. Both operations are pure: IsProfane never
// mutates and Clean is the identity for clean input.
package profanity

import (
	"regexp"
	"strings"
	"unicode"
)

// English words are matched on word boundaries; Thai words are matched as
// plain substrings because Thai is written without spaces.
var defaultEnglishWords = []string{
	"asshole", "bastard", "bitch", "bullshit", "cunt", "dick",
	"fuck", "fucker", "fucking", "motherfucker", "nigger", "prick",
	"pussy", "shit", "slut", "whore",
}

var defaultThaiWords = []string{
	"กู", "มึง", "สัส", "เหี้ย", "เย็ด", "ควย", "หี", "แตด",
	"พ่อมึงตาย", "แม่มึงตาย", "ไอ้สัตว์", "ไอ้ควาย", "ดอกทอง",
	"ร่าน", "เลว", "ชั่ว", "นรก", "ระยำ", "ถุย",
}

// Guard checks and masks profane text. The zero value is not usable;
// construct one with NewGuard.
type Guard struct {
	englishRe *regexp.Regexp
	thaiWords []string
}

// NewGuard returns a Guard loaded with the default English and Thai word
// lists, optionally extended with additional words treated the Thai way
// (substring match).
func NewGuard(extraWords ...string) *Guard {
	escaped := make([]string, 0, len(defaultEnglishWords))
	for _, w := range defaultEnglishWords {
		escaped = append(escaped, regexp.QuoteMeta(w))
	}
	re := regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)

	thai := make([]string, 0, len(defaultThaiWords)+len(extraWords))
	thai = append(thai, defaultThaiWords...)
	thai = append(thai, extraWords...)

	return &Guard{englishRe: re, thaiWords: thai}
}

// IsProfane reports whether the text contains any listed word. It returns
// false for the empty string.
func (g *Guard) IsProfane(text string) bool {
	if text == "" {
		return false
	}
	if g.englishRe.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, w := range g.thaiWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Clean returns the text with every listed word masked by asterisks of the
// same rune length. Clean input passes through unchanged, including the
// empty string.
func (g *Guard) Clean(text string) string {
	if text == "" {
		return ""
	}
	out := g.englishRe.ReplaceAllStringFunc(text, mask)
	for _, w := range g.thaiWords {
		out = maskSubstrings(out, w)
	}
	return out
}

func mask(word string) string {
	return strings.Repeat("*", len([]rune(word)))
}

// maskSubstrings replaces case-insensitive occurrences of word within text.
// Comparison is rune by rune so case foldings that change byte length
// (e.g. the Kelvin sign) cannot shift the mask onto neighboring text.
func maskSubstrings(text, word string) string {
	wordRunes := []rune(word)
	for i, r := range wordRunes {
		wordRunes[i] = unicode.ToLower(r)
	}
	if len(wordRunes) == 0 {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(runes); {
		if runesMatchAt(runes, i, wordRunes) {
			b.WriteString(strings.Repeat("*", len(wordRunes)))
			i += len(wordRunes)
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}

func runesMatchAt(runes []rune, at int, word []rune) bool {
	if at+len(word) > len(runes) {
		return false
	}
	for j, w := range word {
		if unicode.ToLower(runes[at+j]) != w {
			return false
		}
	}
	return true
}
