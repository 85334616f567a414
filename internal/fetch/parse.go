package fetch

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/vesaa/spellstacks/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// maxLineBytes bounds a single line; definition-style lists stay far below it.
const maxLineBytes = 1 << 20

// Normalize lower-cases token and reports whether it is a valid game word:
// only a-z, between 1 and maxLen letters.
func Normalize(token string, maxLen int) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(token))
	if len(w) == 0 || len(w) > maxLen {
		return "", false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return "", false
		}
	}
	return w, true
}

// dropIllFormed strips invalid UTF-8 sequences instead of failing on them.
func dropIllFormed() transform.Transformer {
	return transform.Chain(
		runes.ReplaceIllFormed(),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError })),
	)
}

// ParseWords reads a plaintext list and returns the normalized words it holds.
// Blank lines and lines starting with '#' are skipped; every other line yields
// at most one candidate token according to mode.
func ParseWords(r io.Reader, mode models.ParseMode, maxLen int) (models.WordList, models.LineStats, error) {
	words := models.WordList{}
	var stats models.LineStats

	sc := bufio.NewScanner(transform.NewReader(r, dropIllFormed()))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		stats.Lines++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			stats.Skipped++
			continue
		}

		token := line
		if mode == models.ParseFirstToken {
			token = strings.Fields(line)[0]
		}
		w, ok := Normalize(token, maxLen)
		if !ok {
			stats.Rejected++
			continue
		}
		words.Add(w)
	}
	if err := sc.Err(); err != nil {
		return words, stats, fmt.Errorf("reading line %d: %w", stats.Lines+1, err)
	}
	return words, stats, nil
}
