package service

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SimilarityMatrix is a symmetric n×n cosine matrix stored as a packed upper triangle.
type SimilarityMatrix struct {
	n    int
	data []float32
}

func (m *SimilarityMatrix) offset(i int) int { return i*m.n - i*(i-1)/2 }

// Size returns n.
func (m *SimilarityMatrix) Size() int {
	if m == nil {
		return 0
	}
	return m.n
}

// At returns cos(i, j).
func (m *SimilarityMatrix) At(i, j int) float64 {
	if j < i {
		i, j = j, i
	}
	return float64(m.data[m.offset(i)+j-i])
}

// Row returns a fresh copy of row i.
func (m *SimilarityMatrix) Row(i int) []float64 {
	out := make([]float64, m.n)
	for j := 0; j < m.n; j++ {
		out[j] = m.At(i, j)
	}
	return out
}

// BuildMatrix computes all pairwise cosines. workers <= 0 selects GOMAXPROCS.
func BuildMatrix(ctx context.Context, vectors []FeatureVector, workers int) (*SimilarityMatrix, error) {
	n := len(vectors)
	m := &SimilarityMatrix{n: n, data: make([]float32, n*(n+1)/2)}
	if n == 0 {
		return m, nil
	}
	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = v.Norm()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := m.data[m.offset(i) : m.offset(i)+n-i]
			if norms[i] == 0 {
				return nil // нулевой вектор: вся строка, включая диагональ, = 0
			}
			row[0] = 1
			for j := i + 1; j < n; j++ {
				if norms[j] == 0 {
					continue
				}
				c := sparseDot(vectors[i], vectors[j]) / (norms[i] * norms[j])
				row[j-i] = float32(min(max(c, -1), 1))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// скалярное произведение слиянием отсортированных индексов
func sparseDot(a, b FeatureVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Counts[i] * b.Counts[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}
