package service

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxFeatures: предел размера словаря.
const DefaultMaxFeatures = 5000

// токен: две и более букв/цифр/подчёркиваний подряд
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vocabulary maps terms to vector positions. Terms are sorted alphabetically.
type Vocabulary struct {
	terms []string
	index map[string]int
}

func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Terms returns a copy of the vocabulary in position order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Index returns the position of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// FeatureVector is a term-count vector of logical length Dim, stored sparsely.
type FeatureVector struct {
	Dim     int
	Indices []int // по возрастанию
	Counts  []float64
}

// Dense materializes the full Dim-length vector.
func (v FeatureVector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for k, i := range v.Indices {
		out[i] = v.Counts[k]
	}
	return out
}

// Norm returns the Euclidean magnitude.
func (v FeatureVector) Norm() float64 {
	var s float64
	for _, c := range v.Counts {
		s += c * c
	}
	return math.Sqrt(s)
}

func tokenize(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if !isStopWord(t) {
			out = append(out, t)
		}
	}
	return out
}

// BuildFeatures derives the shared vocabulary and one vector per catalog entry.
func BuildFeatures(cat *Catalog, maxFeatures int) (*Vocabulary, []FeatureVector) {
	return vectorize(cat.CombinedTexts(), maxFeatures)
}

// vectorize: словарь = top-K терминов по суммарной частоте (при равенстве, по алфавиту),
// затем упорядоченный по алфавиту. maxFeatures <= 0, без ограничения.
func vectorize(texts []string, maxFeatures int) (*Vocabulary, []FeatureVector) {
	docs := make([]map[string]int, len(texts))
	total := make(map[string]int)
	for i, t := range texts {
		counts := make(map[string]int)
		for _, tok := range tokenize(t) {
			counts[tok]++
			total[tok]++
		}
		docs[i] = counts
	}

	terms := make([]string, 0, len(total))
	for t := range total {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if total[terms[i]] != total[terms[j]] {
			return total[terms[i]] > total[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	vocab := &Vocabulary{terms: terms, index: make(map[string]int, len(terms))}
	for i, t := range terms {
		vocab.index[t] = i
	}

	vectors := make([]FeatureVector, len(texts))
	for d, counts := range docs {
		v := FeatureVector{Dim: len(terms)}
		for term := range counts {
			if i, ok := vocab.index[term]; ok {
				v.Indices = append(v.Indices, i)
			}
		}
		sort.Ints(v.Indices)
		v.Counts = make([]float64, len(v.Indices))
		for k, i := range v.Indices {
			v.Counts[k] = float64(counts[terms[i]])
		}
		vectors[d] = v
	}
	return vocab, vectors
}
