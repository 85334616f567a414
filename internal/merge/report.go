package merge

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vesaa/spellstacks/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// SourceReport summarizes one fetched source.
type SourceReport struct {
	Name  string           `yaml:"name"`
	URL   string           `yaml:"url"`
	Words int              `yaml:"words"`
	Lines models.LineStats `yaml:"lines"`
	Error string           `yaml:"error,omitempty"`
}

// Report is the diagnostic summary of a merge run.
type Report struct {
	RunAt          time.Time      `yaml:"run_at"`
	Policy         string         `yaml:"policy"`
	DictionaryPath string         `yaml:"dictionary_path"`
	DryRun         bool           `yaml:"dry_run"`
	Sources        []SourceReport `yaml:"sources"`

	Existing             int      `yaml:"existing"`
	Vetted               int      `yaml:"vetted"`
	RejectedSingleSource int      `yaml:"rejected_single_source"`
	RejectedBelowQuorum  int      `yaml:"rejected_below_quorum"`
	Added                int      `yaml:"added"`
	Sample               []string `yaml:"sample,omitempty"`
	FinalCount           int      `yaml:"final_count"`
}

// Failed returns the number of sources that contributed nothing.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Sources {
		if s.Error != "" {
			n++
		}
	}
	return n
}

func newSourceReport(res models.FetchResult) SourceReport {
	return SourceReport{
		Name:  res.Source.String(),
		URL:   res.Source.URL,
		Words: res.Words.Len(),
		Lines: res.Stats,
		Error: res.Failure(),
	}
}

// sample returns the first n words of additions in sorted order.
func sample(additions models.WordList, n int) []string {
	sorted := additions.Sorted()
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(24)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Render writes a human-readable summary of r to w.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder
	p := message.NewPrinter(language.English)
	count := func(n int) string { return p.Sprintf("%d", n) }
	b.WriteString(titleStyle.Render("Dictionary merge") + "\n\n")

	for _, s := range r.Sources {
		if s.Error != "" {
			fmt.Fprintf(&b, "%s  %s\n", errStyle.Render("✗ "+s.Name), s.Error)
			continue
		}
		fmt.Fprintf(&b, "%s  got %s valid words\n", okStyle.Render("✓ "+s.Name), count(s.Words))
	}
	b.WriteString("\n")

	kv := func(label, v string) {
		b.WriteString(labelStyle.Render(label) + v + "\n")
	}
	kv("Policy", r.Policy)
	kv("Existing words", count(r.Existing))
	kv("Vetted", count(r.Vetted))
	if r.RejectedSingleSource > 0 {
		kv("Rejected, single-source", count(r.RejectedSingleSource))
	}
	if r.RejectedBelowQuorum > 0 {
		kv("Rejected, below quorum", count(r.RejectedBelowQuorum))
	}
	kv("Newly added", count(r.Added))
	if len(r.Sample) > 0 {
		kv("Sample", strings.Join(r.Sample, ", "))
	}
	kv("Final word count", count(r.FinalCount))
	if r.DryRun {
		kv("Dictionary", r.DictionaryPath+" (dry run, not written)")
	} else {
		kv("Dictionary", r.DictionaryPath)
	}

	_, err := fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
	return err
}

// WriteYAML stores r as YAML at path.
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
