package merge

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vesaa/spellstacks/internal/models"
)

// ReadDictionary loads the existing dictionary file. A missing file is an
// empty dictionary. Entries are trimmed and lower-cased; blank lines are skipped.
func ReadDictionary(path string) (models.WordList, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.WordList{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening dictionary: %w", err)
	}
	defer f.Close()

	words, err := readWords(f)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	return words, nil
}

func readWords(r io.Reader) (models.WordList, error) {
	words := models.WordList{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w != "" {
			words.Add(w)
		}
	}
	return words, sc.Err()
}

// FormatDictionary renders words one per line, sorted, newline-terminated.
func FormatDictionary(words models.WordList) []byte {
	var buf bytes.Buffer
	for _, w := range words.Sorted() {
		buf.WriteString(w)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteDictionary replaces the file at path with words. The content goes to a
// temporary file in the same directory which is then renamed over path, so a
// crash never leaves a truncated dictionary behind.
func WriteDictionary(path string, words models.WordList) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(FormatDictionary(words)); err != nil {
		return fmt.Errorf("writing dictionary: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing dictionary: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod dictionary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing dictionary: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
