package matching

import (
	"errors"
	"math"
	"slices"
	"strings"
)

// DefaultMaxVocabulary is the vocabulary cap applied when none is configured.
const DefaultMaxVocabulary = 4000

var errNoDocuments = errors.New("at least one document is required")

// TermVector maps a unigram or bigram to its tf-idf weight.
type TermVector map[string]float64

// Vectorizer builds L2-normalized tf-idf vectors over a small corpus.
// Document frequencies come only from the documents passed to FitTransform.
type Vectorizer struct {
	MaxFeatures int
}

// NewVectorizer returns a Vectorizer capped at maxFeatures terms.
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{MaxFeatures: maxFeatures}
}

// FitTransform learns the vocabulary and idf weights from docs and returns one
// vector per document, in order. Documents without any term yield empty vectors.
func (v *Vectorizer) FitTransform(docs ...string) ([]TermVector, error) {
	if len(docs) == 0 {
		return nil, errNoDocuments
	}
	if v.MaxFeatures <= 0 {
		return nil, configError("max vocabulary must be positive, got %d", v.MaxFeatures)
	}

	counts := make([]map[string]int, len(docs))
	totals := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, term := range analyze(doc) {
			counts[i][term]++
			totals[term]++
		}
		for term := range counts[i] {
			docFreq[term]++
		}
	}

	vocabulary := limitVocabulary(totals, v.MaxFeatures)

	n := float64(len(docs))
	vectors := make([]TermVector, len(docs))
	for i := range docs {
		vec := make(TermVector)
		for _, term := range vocabulary {
			tf, ok := counts[i][term]
			if !ok {
				continue
			}
			idf := math.Log((1+n)/(1+float64(docFreq[term]))) + 1
			vec[term] = float64(tf) * idf
		}
		vectors[i] = normalizeL2(vec)
	}

	return vectors, nil
}

// analyze drops single characters and stop words, then emits unigrams followed
// by bigrams of the surviving words.
func analyze(doc string) []string {
	words := make([]string, 0)
	for _, w := range Tokens(doc) {
		if len(w) < 2 {
			continue
		}
		if _, stop := englishStopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}

	terms := make([]string, 0, 2*len(words))
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

// limitVocabulary keeps the limit most frequent terms of the corpus, breaking
// ties lexicographically, and returns them sorted.
func limitVocabulary(totals map[string]int, limit int) []string {
	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}

	if len(terms) > limit {
		slices.SortFunc(terms, func(a, b string) int {
			if totals[a] != totals[b] {
				return totals[b] - totals[a]
			}
			return strings.Compare(a, b)
		})
		terms = terms[:limit]
	}

	slices.Sort(terms)
	return terms
}

func normalizeL2(vec TermVector) TermVector {
	norm := vectorNorm(vec)
	if norm == 0 {
		return vec
	}
	for term, w := range vec {
		vec[term] = w / norm
	}
	return vec
}

func vectorNorm(vec TermVector) float64 {
	sum := 0.0
	for _, term := range sortedTerms(vec) {
		sum += vec[term] * vec[term]
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|), or 0 when either vector has a
// zero norm. Terms are visited in sorted order so repeated calls agree bit for bit.
func CosineSimilarity(a, b TermVector) float64 {
	normA, normB := vectorNorm(a), vectorNorm(b)
	if normA == 0 || normB == 0 {
		return 0
	}

	dot := 0.0
	for _, term := range sortedTerms(a) {
		if w, ok := b[term]; ok {
			dot += a[term] * w
		}
	}

	return dot / (normA * normB)
}

func sortedTerms(vec TermVector) []string {
	terms := make([]string, 0, len(vec))
	for term := range vec {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return terms
}
