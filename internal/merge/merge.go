// Package merge decides which fetched words enter the Spellstacks dictionary
// and persists the result.
//
// Two inclusion policies are supported:
//   - union:  any word seen in any successfully fetched source is admitted.
//   - quorum: a word must appear in at least MinSources sources. Words seen in
//     exactly one source are rejected and counted separately.
package merge

import (
	"errors"
	"fmt"

	"github.com/vesaa/spellstacks/internal/config"
	"github.com/vesaa/spellstacks/internal/models"
)

// ErrInvalidPolicy is returned when a Policy cannot be applied.
var ErrInvalidPolicy = errors.New("invalid merge policy")

// Kind names an inclusion rule.
type Kind string

const (
	Union  Kind = config.PolicyUnion
	Quorum Kind = config.PolicyQuorum
)

// Policy is an inclusion rule plus its threshold.
type Policy struct {
	Kind       Kind
	MinSources int // ignored for Union
}

// UnionPolicy admits every word seen at least once.
func UnionPolicy() Policy { return Policy{Kind: Union, MinSources: 1} }

// QuorumPolicy admits words seen in at least n sources.
func QuorumPolicy(n int) Policy { return Policy{Kind: Quorum, MinSources: n} }

// PolicyFromConfig maps merge.policy / merge.min_sources onto a Policy.
func PolicyFromConfig(c config.MergeConfig) (Policy, error) {
	p := Policy{Kind: Kind(c.Policy), MinSources: c.MinSources}
	if p.Kind == Union {
		p.MinSources = 1
	}
	return p, p.validate()
}

func (p Policy) threshold() int {
	if p.Kind == Union {
		return 1
	}
	return p.MinSources
}

func (p Policy) validate() error {
	switch p.Kind {
	case Union:
		return nil
	case Quorum:
		if p.MinSources < 1 {
			return fmt.Errorf("%w: quorum needs min_sources >= 1, got %d", ErrInvalidPolicy, p.MinSources)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPolicy, p.Kind)
	}
}

func (p Policy) String() string {
	if p.Kind == Union {
		return string(Union)
	}
	return fmt.Sprintf("%s(min %d)", p.Kind, p.MinSources)
}

// Result is the outcome of a merge.
type Result struct {
	Dictionary models.WordList // existing ∪ vetted
	Additions  models.WordList // vetted − existing
	Vetted     int             // words that passed the policy
	// RejectedSingleSource counts words seen in exactly one source that the
	// policy refused. Always zero under Union.
	RejectedSingleSource int
	// RejectedBelowQuorum counts words seen in two or more sources but fewer
	// than MinSources.
	RejectedBelowQuorum int
}

// Tally maps each word to the number of lists containing it.
func Tally(fetched []models.WordList) map[string]int {
	counts := make(map[string]int)
	for _, wl := range fetched {
		for w := range wl {
			counts[w]++
		}
	}
	return counts
}

// Merge applies p to fetched and folds the vetted words into existing.
// It does not modify its inputs, and its output depends only on the sets
// given, never on their order.
func Merge(existing models.WordList, fetched []models.WordList, p Policy) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}
	need := p.threshold()

	vetted := models.WordList{}
	res := Result{}
	for w, n := range Tally(fetched) {
		switch {
		case n >= need:
			vetted.Add(w)
		case n == 1:
			res.RejectedSingleSource++
		default:
			res.RejectedBelowQuorum++
		}
	}

	res.Vetted = vetted.Len()
	res.Additions = vetted.Difference(existing)
	res.Dictionary = existing.Union(vetted)
	return res, nil
}
