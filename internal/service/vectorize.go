package service

import (
	"math"
	"strings"
	"unicode"
)

// Bag-of-words TF-IDF scoring used by similarity assignment. The corpus is
// tiny (topic names plus one email text), so everything is computed inline
// per call. Scoring is fully deterministic: the vocabulary never needs an
// order (cosine iterates one map against another) and ties resolve to the
// lowest candidate index.

// bestMatch scores the query text against each candidate and returns the
// index of the highest cosine similarity. With an empty candidate list it
// returns -1; ties, including the all-zero case, resolve to the first
// candidate in the given order.
func bestMatch(candidates []string, query string) int {
	if len(candidates) == 0 {
		return -1
	}

	corpus := make([]string, 0, len(candidates)+1)
	corpus = append(corpus, candidates...)
	corpus = append(corpus, query)

	vectors := tfidfVectors(corpus)
	queryVec := vectors[len(vectors)-1]

	best := 0
	bestScore := cosine(vectors[0], queryVec)

	for i := 1; i < len(candidates); i++ {
		if score := cosine(vectors[i], queryVec); score > bestScore {
			best = i
			bestScore = score
		}
	}

	return best
}

// tfidfVectors builds one sparse term-weight vector per document. Term
// frequency is the raw count; inverse document frequency is smoothed as
// ln((1+N)/(1+df)) + 1 so terms present in every document still contribute.
func tfidfVectors(docs []string) []map[string]float64 {
	n := float64(len(docs))

	counts := make([]map[string]float64, len(docs))
	df := make(map[string]float64)

	for i, doc := range docs {
		counts[i] = make(map[string]float64)
		for _, tok := range tokenizeWords(doc) {
			counts[i][tok]++
		}

		for tok := range counts[i] {
			df[tok]++
		}
	}

	vectors := make([]map[string]float64, len(docs))
	for i, c := range counts {
		vec := make(map[string]float64, len(c))
		for tok, tf := range c {
			vec[tok] = tf * (math.Log((1+n)/(1+df[tok])) + 1)
		}
		vectors[i] = vec
	}

	return vectors
}

// cosine computes cosine similarity between two sparse vectors. Either
// vector being zero yields 0.
func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64

	for tok, av := range a {
		normA += av * av
		if bv, ok := b[tok]; ok {
			dot += av * bv
		}
	}

	for _, bv := range b {
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// tokenizeWords lowercases and splits on non-alphanumeric runes.
func tokenizeWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
