package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/vesaa/spellstacks/internal/config"
	"github.com/vesaa/spellstacks/internal/fetch"
	"github.com/vesaa/spellstacks/internal/models"
)

// ErrAllSourcesFailed is returned when no configured source could be fetched.
// The dictionary is left untouched in that case.
var ErrAllSourcesFailed = errors.New("every word source failed")

// Run performs one merge: read the existing dictionary, fetch every
// configured source, apply the policy, write the result and report on it.
// The summary is rendered to out; the Report is returned either way once the
// fetch step has completed.
func Run(ctx context.Context, cfg *config.Config, out io.Writer) (*Report, error) {
	policy, err := PolicyFromConfig(cfg.Merge)
	if err != nil {
		return nil, err
	}
	if policy.Kind == Quorum && policy.MinSources > len(cfg.Sources) {
		log.Printf("[merge] warning: min_sources=%d but only %d sources configured; nothing can be vetted",
			policy.MinSources, len(cfg.Sources))
	}

	path, err := cfg.WordsPath()
	if err != nil {
		return nil, err
	}
	existing, err := ReadDictionary(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[merge] %s holds %d words", path, existing.Len())

	results := fetch.New(cfg).FetchAll(ctx, cfg.Sources)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("merge interrupted: %w", err)
	}

	report := &Report{
		RunAt:          time.Now().UTC(),
		Policy:         policy.String(),
		DictionaryPath: path,
		DryRun:         cfg.Merge.DryRun,
		Existing:       existing.Len(),
		FinalCount:     existing.Len(),
	}
	fetched := make([]models.WordList, 0, len(results))
	for _, res := range results {
		report.Sources = append(report.Sources, newSourceReport(res))
		// Failed sources count as empty lists so the quorum is always
		// measured against every configured source.
		fetched = append(fetched, res.Words)
	}
	if report.Failed() == len(results) {
		_ = report.Render(out)
		return report, ErrAllSourcesFailed
	}

	res, err := Merge(existing, fetched, policy)
	if err != nil {
		return report, err
	}
	report.Vetted = res.Vetted
	report.RejectedSingleSource = res.RejectedSingleSource
	report.RejectedBelowQuorum = res.RejectedBelowQuorum
	report.Added = res.Additions.Len()
	report.Sample = sample(res.Additions, cfg.Merge.SampleSize)
	report.FinalCount = res.Dictionary.Len()

	if !cfg.Merge.DryRun {
		if err := WriteDictionary(path, res.Dictionary); err != nil {
			return report, err
		}
		log.Printf("[merge] wrote %d words to %s (+%d)", report.FinalCount, path, report.Added)
	}

	if cfg.Merge.ReportFile != "" {
		if err := report.WriteYAML(cfg.Merge.ReportFile); err != nil {
			return report, err
		}
	}
	if err := report.Render(out); err != nil {
		return report, fmt.Errorf("rendering report: %w", err)
	}
	return report, nil
}
