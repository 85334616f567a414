// Package models defines the data types shared by the Spellstacks server and merger.
package models

import "fmt"

// ParseMode selects how a word is taken from each line of a remote list.
type ParseMode string

const (
	// ParseFirstToken takes the first whitespace-delimited token ("WORD definition...").
	ParseFirstToken ParseMode = "first_token"
	// ParseWholeLine takes the entire trimmed line.
	ParseWholeLine ParseMode = "whole_line"
)

// Valid reports whether m is a known parse mode.
func (m ParseMode) Valid() bool {
	return m == ParseFirstToken || m == ParseWholeLine
}

// Source is a named remote plaintext word list.
type Source struct {
	Name string    `mapstructure:"name" yaml:"name"`
	URL  string    `mapstructure:"url" yaml:"url"`
	Mode ParseMode `mapstructure:"mode" yaml:"mode"`
}

func (s Source) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

// LineStats counts what happened to each line of a fetched list.
// Individual rejected lines are never reported, only these totals.
type LineStats struct {
	Lines    int `yaml:"lines"`    // total lines read
	Skipped  int `yaml:"skipped"`  // blank or '#' comment lines
	Rejected int `yaml:"rejected"` // tokens that failed normalization
}

// FetchResult is the outcome of downloading one Source: either Words on
// success or Err describing why the source contributed nothing.
type FetchResult struct {
	Source Source
	Words  WordList
	Stats  LineStats
	Err    error
}

// OK reports whether the fetch succeeded.
func (r FetchResult) OK() bool { return r.Err == nil }

// Failure returns the failure reason, or "" on success.
func (r FetchResult) Failure() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Failed builds a FetchResult for a source that could not be fetched.
func Failed(src Source, format string, args ...any) FetchResult {
	return FetchResult{Source: src, Words: WordList{}, Err: fmt.Errorf(format, args...)}
}
