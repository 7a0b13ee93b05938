// Package ranking implements the deterministic lexical relevance ranker
// used by the retrieval engine. Scoring is term-frequency overlap with a
// title boost and an exact-phrase bonus, normalized to [0,1]. No embeddings
// are consulted; identical inputs always produce identical orderings.
package ranking

import (
	"sort"

	"github.com/aiohm/assistant/internal/core/domain"
)

// Config holds the ranker's scoring weights.
type Config struct {
	// TitleWeight is the share of a term's score carried by title hits.
	TitleWeight float64

	// ContentWeight is the share carried by body hits.
	ContentWeight float64

	// PhraseBonus is the fraction of remaining headroom granted when the
	// whole query appears verbatim in the title or content.
	PhraseBonus float64

	// TitleSaturation caps per-term title frequency credit.
	TitleSaturation int

	// ContentSaturation caps per-term body frequency credit.
	ContentSaturation int
}

// DefaultConfig returns the production scoring weights.
// TitleWeight exceeds ContentWeight so title hits outrank body hits.
func DefaultConfig() Config {
	return Config{
		TitleWeight:       0.6,
		ContentWeight:     0.4,
		PhraseBonus:       0.25,
		TitleSaturation:   2,
		ContentSaturation: 4,
	}
}

// Ranker scores candidate entries against a query.
type Ranker struct {
	cfg Config
}

// New creates a ranker. A zero config gets the defaults.
func New(cfg Config) *Ranker {
	if cfg.TitleWeight == 0 && cfg.ContentWeight == 0 {
		cfg = DefaultConfig()
	}
	if cfg.TitleSaturation <= 0 {
		cfg.TitleSaturation = 2
	}
	if cfg.ContentSaturation <= 0 {
		cfg.ContentSaturation = 4
	}
	return &Ranker{cfg: cfg}
}

// Rank scores the candidates against the query and returns up to k entries
// with score > 0, sorted by score descending. Ties break by CreatedAt
// descending, then ContentID ascending, so repeated calls over the same
// inputs yield identical orderings. An empty query or candidate set yields
// an empty list.
func (r *Ranker) Rank(query string, candidates []domain.Entry, k int) []domain.RankedEntry {
	if k <= 0 {
		return nil
	}
	queryTerms := UniqueTerms(Tokenize(query))
	if len(queryTerms) == 0 || len(candidates) == 0 {
		return nil
	}

	ranked := make([]domain.RankedEntry, 0, len(candidates))
	for i := range candidates {
		score := r.Score(query, queryTerms, &candidates[i])
		if score <= 0 {
			continue
		}
		ranked = append(ranked, domain.RankedEntry{Entry: candidates[i], Score: score})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}
		at, bt := ranked[a].Entry.CreatedAt, ranked[b].Entry.CreatedAt
		if !at.Equal(bt) {
			return at.After(bt)
		}
		return ranked[a].Entry.ContentID < ranked[b].Entry.ContentID
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Score computes the normalized relevance of one entry. queryTerms must be
// the deduplicated tokenization of query. More matching terms never lower
// the score; adding an occurrence of a matched term never lowers it either.
func (r *Ranker) Score(query string, queryTerms []string, entry *domain.Entry) float64 {
	if len(queryTerms) == 0 {
		return 0
	}

	titleFreq := TermFrequencies(Tokenize(entry.Title))
	contentFreq := TermFrequencies(Tokenize(entry.Content))

	var total float64
	for _, term := range queryTerms {
		total += r.termScore(term, titleFreq, contentFreq)
	}
	score := total / float64(len(queryTerms))

	if score > 0 && (ContainsPhrase(query, entry.Title) || ContainsPhrase(query, entry.Content)) {
		score += (1 - score) * r.cfg.PhraseBonus
	}

	if score > 1 {
		score = 1
	}
	return score
}

// termScore credits one query term with saturating frequency counts so a
// single spammed term cannot dominate.
func (r *Ranker) termScore(term string, titleFreq, contentFreq map[string]int) float64 {
	var s float64
	if tf := titleFreq[term]; tf > 0 {
		if tf > r.cfg.TitleSaturation {
			tf = r.cfg.TitleSaturation
		}
		s += r.cfg.TitleWeight * float64(tf) / float64(r.cfg.TitleSaturation)
	}
	if cf := contentFreq[term]; cf > 0 {
		if cf > r.cfg.ContentSaturation {
			cf = r.cfg.ContentSaturation
		}
		s += r.cfg.ContentWeight * float64(cf) / float64(r.cfg.ContentSaturation)
	}
	return s
}
