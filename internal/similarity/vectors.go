// Package similarity builds term-frequency vectors over clean course titles
// and ranks courses by cosine similarity.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// minTermLen mirrors a word-boundary tokenizer that ignores one-letter tokens.
const minTermLen = 2

type term struct {
	index int
	count float64
}

// Vector is a sparse term-frequency vector with entries ordered by term index.
type Vector struct {
	terms []term
	norm  float64
}

func (v Vector) IsZero() bool { return v.norm == 0 }

// Vectors is the vectorized corpus together with its vocabulary.
type Vectors struct {
	Vocabulary map[string]int
	Rows       []Vector
}

func tokenize(clean string) []string {
	fields := strings.Fields(clean)
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTermLen {
			out = append(out, f)
		}
	}
	return out
}

// BuildVectors vectorizes each course's clean title over a vocabulary built
// from the given courses. Terms are indexed in lexical order.
func BuildVectors(courses []domain.Course) Vectors {
	tokens := make([][]string, len(courses))
	seen := make(map[string]struct{})
	for i, c := range courses {
		tokens[i] = tokenize(c.CleanTitle)
		for _, t := range tokens[i] {
			seen[t] = struct{}{}
		}
	}

	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)

	vocab := make(map[string]int, len(words))
	for i, w := range words {
		vocab[w] = i
	}

	rows := make([]Vector, len(courses))
	for i, toks := range tokens {
		counts := make(map[int]float64, len(toks))
		for _, t := range toks {
			counts[vocab[t]]++
		}
		v := Vector{terms: make([]term, 0, len(counts))}
		var sq float64
		for idx, n := range counts {
			v.terms = append(v.terms, term{index: idx, count: n})
			sq += n * n
		}
		sort.Slice(v.terms, func(a, b int) bool { return v.terms[a].index < v.terms[b].index })
		v.norm = math.Sqrt(sq)
		rows[i] = v
	}

	return Vectors{Vocabulary: vocab, Rows: rows}
}

// Cosine returns the cosine similarity of a and b. A zero vector has
// similarity 0 with everything.
func Cosine(a, b Vector) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.terms) && j < len(b.terms) {
		switch {
		case a.terms[i].index == b.terms[j].index:
			dot += a.terms[i].count * b.terms[j].count
			i++
			j++
		case a.terms[i].index < b.terms[j].index:
			i++
		default:
			j++
		}
	}
	return dot / (a.norm * b.norm)
}
