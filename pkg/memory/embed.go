package memory

import (
	"math"
	"strings"
	"unicode"
)

// TermVector is a sparse term to frequency mapping. It is the engine's
// embedding representation, not a trained vector.
type TermVector map[string]float64

// Tokenize splits text on non-alphanumeric boundaries, Unicode-aware, and
// lower-cases each token. Han characters are emitted as single-rune tokens
// since they carry word-level meaning without delimiters. No stemming or
// stopword removal is applied.
func Tokenize(text string) []string {
	var tokens []string
	var sb strings.Builder

	flush := func() {
		if sb.Len() > 0 {
			tokens = append(tokens, sb.String())
			sb.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// Embed converts free text into a sparse term-frequency vector.
func Embed(text string) TermVector {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return TermVector{}
	}

	vec := make(TermVector, len(tokens))
	for _, token := range tokens {
		vec[token]++
	}
	return vec
}

// CosineSimilarity computes the cosine of two sparse vectors, in [0, 1].
// Returns 0 if either vector is empty.
func CosineSimilarity(a, b TermVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Iterate the smaller vector for the dot product.
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot float64
	for term, av := range a {
		if bv, ok := b[term]; ok {
			dot += av * bv
		}
	}
	if dot == 0 {
		return 0
	}

	var normA, normB float64
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
