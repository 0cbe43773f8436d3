// Package patchdetect resolves which boundary patches carry the model
// geometry by fuzzy-matching patch names against a candidate vocabulary.
package patchdetect

import (
	"path"
	"sort"
	"strings"

	"github.com/okian/foamperf/internal/domain/model"
)

// Scoring constants.
const (
	// DefaultMinConfidence is the acceptance threshold below which a patch
	// is dropped from the result.
	DefaultMinConfidence = 0.6

	exactScore     = 1.0
	substringScore = 0.9
)

// Candidate vocabularies per domain, in preference order.
var (
	aeroCandidates      = []string{"model", "car", "wing", "body", "object"}
	propellerCandidates = []string{"propeller", "rotor", "blade", "prop"}
)

// DefaultExclusions are patch names never treated as model geometry.
// Entries may be glob patterns.
var DefaultExclusions = []string{
	"inlet", "outlet", "ground", "top", "bottom", "side*", "*AMI",
}

// CandidatesFor returns the default candidate vocabulary for a domain.
// The returned slice must not be mutated.
func CandidatesFor(d model.Domain) []string {
	if d == model.DomainPropeller {
		return propellerCandidates
	}
	return aeroCandidates
}

// Match is one detected patch with its confidence in [0,1].
type Match struct {
	Name       string
	Confidence float64
	// Reason records how the match was made: "exact", "substring" or "fuzzy".
	Reason string

	// candidate index used for tie-breaking
	candidate int
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithMinConfidence sets the acceptance threshold. Values outside (0,1]
// are ignored.
func WithMinConfidence(min float64) Option {
	return func(d *Detector) {
		if min > 0 && min <= 1 {
			d.minConfidence = min
		}
	}
}

// WithExclusions replaces the default exclusion list. Entries may be glob
// patterns matched case-insensitively against patch names.
func WithExclusions(excluded []string) Option {
	return func(d *Detector) {
		d.excluded = excluded
	}
}

// WithWallsOnly restricts detection to wall-type patches.
func WithWallsOnly(wallsOnly bool) Option {
	return func(d *Detector) {
		d.wallsOnly = wallsOnly
	}
}

// Detector scores available patches against a candidate vocabulary.
// It is pure: Detect has no side effects and no retained state.
type Detector struct {
	minConfidence float64
	excluded      []string
	wallsOnly     bool
}

// New creates a Detector with default configuration.
func New(opts ...Option) *Detector {
	d := &Detector{
		minConfidence: DefaultMinConfidence,
		excluded:      DefaultExclusions,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the patches matching the candidate vocabulary, sorted by
// confidence descending, ties broken by candidate order then patch name.
// An empty result means no geometry was detected; it is not an error.
func (d *Detector) Detect(available []model.Patch, candidates []string) []Match {
	matches := make([]Match, 0, len(available))
	for _, p := range available {
		if d.isExcluded(p.Name) {
			continue
		}
		if d.wallsOnly && !p.Wall() {
			continue
		}
		best, ok := d.score(p.Name, candidates)
		if !ok || best.Confidence < d.minConfidence {
			continue
		}
		best.Name = p.Name
		matches = append(matches, best)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		if matches[i].candidate != matches[j].candidate {
			return matches[i].candidate < matches[j].candidate
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// score computes the best similarity across candidates for one patch name.
func (d *Detector) score(name string, candidates []string) (Match, bool) {
	lower := strings.ToLower(name)
	best := Match{Confidence: -1}
	for i, cand := range candidates {
		lc := strings.ToLower(cand)
		var (
			score  float64
			reason string
		)
		switch {
		case lower == lc:
			score, reason = exactScore, "exact"
		case strings.Contains(lower, lc):
			score, reason = substringScore, "substring"
		default:
			score, reason = similarity(lower, lc), "fuzzy"
		}
		if score > best.Confidence {
			best = Match{Confidence: score, Reason: reason, candidate: i}
		}
	}
	return best, best.Confidence >= 0
}

func (d *Detector) isExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range d.excluded {
		if ok, err := path.Match(strings.ToLower(pat), lower); err == nil && ok {
			return true
		}
	}
	return false
}

// similarity is a normalized Levenshtein ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes the edit distance between two strings using a
// single-row dynamic programming table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur := min(row[j]+1, min(row[j-1]+1, prev+cost))
			prev = row[j]
			row[j] = cur
		}
	}
	return row[len(rb)]
}
