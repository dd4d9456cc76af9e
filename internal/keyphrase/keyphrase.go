// Package keyphrase extracts ranked key phrases from text.
//
// The extractor is intentionally simple and fully deterministic: candidate
// unigrams and bigrams are counted after stopword filtering, ranked by
// frequency with first occurrence breaking ties, and the top N survive.
// Topic display names derived from it are stable across runs as long as the
// underlying membership text has not changed.
package keyphrase

import (
	"strings"
	"unicode"
)

// Stopwords is a set of tokens excluded from candidate phrases.
type Stopwords map[string]struct{}

// NewStopwords builds a Stopwords set from a word list.
func NewStopwords(words ...string) Stopwords {
	s := make(Stopwords, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Contains reports whether the word is in the set.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// DefaultStopwords covers common English function words plus the boilerplate
// tokens that summarization tends to inject into every email summary.
var DefaultStopwords = NewStopwords(
	"the", "and", "to", "for", "of", "a", "an", "in", "on", "at", "is", "are",
	"was", "were", "be", "been", "with", "from", "by", "this", "that", "it",
	"as", "or", "your", "you", "we", "our", "has", "have", "will", "not",
	"email", "summary", "error", "generating", "overall", "aims", "key", "themes",
)

// Extractor produces ranked key phrases from a text corpus.
type Extractor interface {
	ExtractTopPhrases(text string, stopwords Stopwords, maxPhrases int) []string
}

// FrequencyExtractor ranks unigram and bigram candidates by occurrence count.
type FrequencyExtractor struct{}

// NewFrequencyExtractor creates a FrequencyExtractor.
func NewFrequencyExtractor() *FrequencyExtractor {
	return &FrequencyExtractor{}
}

type candidate struct {
	phrase string
	count  int
	first  int // token index of first occurrence, for stable tie-breaks
}

// minTokenLen drops one- and two-letter fragments left over from tokenizing.
const minTokenLen = 3

// ExtractTopPhrases returns up to maxPhrases ranked phrases from the text.
// Counts decide, earlier first occurrence breaks count ties, and a full tie
// (a bigram against its own head word) resolves to the longer phrase.
// Returns an empty slice when nothing qualifies.
func (x *FrequencyExtractor) ExtractTopPhrases(text string, stopwords Stopwords, maxPhrases int) []string {
	if maxPhrases <= 0 {
		return nil
	}
	if stopwords == nil {
		stopwords = DefaultStopwords
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	counts := make(map[string]*candidate)

	keep := func(tok string) bool {
		return len(tok) >= minTokenLen && !stopwords.Contains(tok) && !isNumeric(tok)
	}

	for i, tok := range tokens {
		if keep(tok) {
			bump(counts, tok, i)

			if i+1 < len(tokens) && keep(tokens[i+1]) {
				bump(counts, tok+" "+tokens[i+1], i)
			}
		}
	}

	if len(counts) == 0 {
		return nil
	}

	ranked := make([]*candidate, 0, len(counts))
	for _, c := range counts {
		ranked = append(ranked, c)
	}

	// Insertion sort by (count desc, first occurrence asc). Candidate sets
	// are small; stability of the order is what matters.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && less(ranked[j], ranked[j-1]); j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	// A bigram and its own head word often co-rank; prefer the longer phrase
	// and drop unigrams it subsumes.
	phrases := make([]string, 0, maxPhrases)
	for _, c := range ranked {
		if len(phrases) == maxPhrases {
			break
		}
		if subsumed(phrases, c.phrase) {
			continue
		}
		phrases = append(phrases, c.phrase)
	}

	return phrases
}

func bump(counts map[string]*candidate, phrase string, pos int) {
	if c, ok := counts[phrase]; ok {
		c.count++
		return
	}
	counts[phrase] = &candidate{phrase: phrase, count: 1, first: pos}
}

func less(a, b *candidate) bool {
	if a.count != b.count {
		return a.count > b.count
	}
	if a.first != b.first {
		return a.first < b.first
	}
	// A bigram ties its head word on count and position; the longer phrase
	// wins so ordering never depends on map iteration.
	if len(a.phrase) != len(b.phrase) {
		return len(a.phrase) > len(b.phrase)
	}
	return a.phrase < b.phrase
}

// subsumed reports whether phrase is a word of an already selected phrase.
func subsumed(selected []string, phrase string) bool {
	for _, s := range selected {
		for _, w := range strings.Fields(s) {
			if w == phrase {
				return true
			}
		}
	}
	return false
}

// tokenize lowercases the text and splits on any non-letter, non-digit rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
