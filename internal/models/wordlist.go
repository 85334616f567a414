package models

import "sort"

// MaxWordLen is the longest word the game board accepts.
const MaxWordLen = 18

// WordList is a set of normalized words.
type WordList map[string]struct{}

// NewWordList builds a set from words as given; callers normalize first.
func NewWordList(words ...string) WordList {
	wl := make(WordList, len(words))
	for _, w := range words {
		wl[w] = struct{}{}
	}
	return wl
}

// Add inserts w.
func (wl WordList) Add(w string) { wl[w] = struct{}{} }

// Has reports whether w is in the set.
func (wl WordList) Has(w string) bool {
	_, ok := wl[w]
	return ok
}

// Len returns the number of words.
func (wl WordList) Len() int { return len(wl) }

// Sorted returns the words in ascending byte order.
func (wl WordList) Sorted() []string {
	out := make([]string, 0, len(wl))
	for w := range wl {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Union returns a new set holding every word of wl and other.
func (wl WordList) Union(other WordList) WordList {
	out := make(WordList, len(wl)+len(other))
	for w := range wl {
		out[w] = struct{}{}
	}
	for w := range other {
		out[w] = struct{}{}
	}
	return out
}

// Difference returns a new set of words in wl but not in other.
func (wl WordList) Difference(other WordList) WordList {
	out := make(WordList)
	for w := range wl {
		if !other.Has(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

// Equal reports whether both sets hold exactly the same words.
func (wl WordList) Equal(other WordList) bool {
	if len(wl) != len(other) {
		return false
	}
	for w := range wl {
		if !other.Has(w) {
			return false
		}
	}
	return true
}
