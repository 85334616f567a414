package fetch

import (
	"strings"
	"testing"

	"github.com/vesaa/spellstacks/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Zymurgy", "zymurgy", true},
		{"a", "a", true},
		{"  QI ", "qi", true},
		{"café", "", false},
		{"don't", "", false},
		{"abc1", "", false},
		{"", "", false},
		{strings.Repeat("a", 18), strings.Repeat("a", 18), true},
		{strings.Repeat("a", 19), "", false},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.in, models.MaxWordLen)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Normalize(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseWordsFirstToken(t *testing.T) {
	input := strings.Join([]string{
		"# NWL2023",
		"",
		"Zymurgy  some gloss text",
		"AA a rough cindery lava [n AAS]",
		"café a coffee house",
		strings.Repeat("X", 19) + " too long",
		"zymurgy duplicate entry",
	}, "\n")

	words, stats, err := ParseWords(strings.NewReader(input), models.ParseFirstToken, models.MaxWordLen)
	if err != nil {
		t.Fatalf("ParseWords: %v", err)
	}
	if !words.Equal(models.NewWordList("zymurgy", "aa")) {
		t.Fatalf("words = %v", words.Sorted())
	}
	want := models.LineStats{Lines: 7, Skipped: 2, Rejected: 2}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestParseWordsWholeLine(t *testing.T) {
	input := "aardvark\r\n  Abacus  \r\nice cream\r\n#comment\r\n"
	words, stats, err := ParseWords(strings.NewReader(input), models.ParseWholeLine, models.MaxWordLen)
	if err != nil {
		t.Fatalf("ParseWords: %v", err)
	}
	if !words.Equal(models.NewWordList("aardvark", "abacus")) {
		t.Fatalf("words = %v", words.Sorted())
	}
	if stats.Rejected != 1 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestParseWordsDropsInvalidUTF8(t *testing.T) {
	// The stray 0xff byte is discarded rather than failing the whole list.
	input := "ca\xfft\ndog\n"
	words, _, err := ParseWords(strings.NewReader(input), models.ParseWholeLine, models.MaxWordLen)
	if err != nil {
		t.Fatalf("ParseWords: %v", err)
	}
	if !words.Equal(models.NewWordList("cat", "dog")) {
		t.Fatalf("words = %v", words.Sorted())
	}
}
