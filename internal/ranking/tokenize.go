package ranking

import (
	"strings"
	"unicode"
)

// minTermLength drops short stopword-like terms ("a", "an", "to", "is").
const minTermLength = 3

// Tokenize splits text into lowercase terms, stripping punctuation and
// dropping terms shorter than minTermLength runes. Deterministic: the same
// input always yields the same term sequence.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	terms := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTermLength {
			terms = append(terms, f)
		}
	}
	if len(terms) == 0 {
		return nil
	}
	return terms
}

// TermFrequencies counts term occurrences in a token list.
func TermFrequencies(tokens []string) map[string]int {
	if len(tokens) == 0 {
		return nil
	}
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

// UniqueTerms collapses a token list to its distinct terms, preserving
// first-seen order.
func UniqueTerms(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ContainsPhrase reports whether the normalized query appears verbatim in
// the normalized text. Both sides are tokenized so punctuation differences
// do not break the match.
func ContainsPhrase(query, text string) bool {
	queryTerms := Tokenize(query)
	if len(queryTerms) == 0 {
		return false
	}
	normQuery := strings.Join(queryTerms, " ")
	normText := strings.Join(Tokenize(text), " ")
	if normText == "" {
		return false
	}
	idx := strings.Index(normText, normQuery)
	for idx != -1 {
		// Require whole-term boundaries on both sides.
		startOK := idx == 0 || normText[idx-1] == ' '
		end := idx + len(normQuery)
		endOK := end == len(normText) || normText[end] == ' '
		if startOK && endOK {
			return true
		}
		next := strings.Index(normText[idx+1:], normQuery)
		if next == -1 {
			return false
		}
		idx += 1 + next
	}
	return false
}
