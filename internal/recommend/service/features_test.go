package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorize(t *testing.T) {
	texts := []string{
		"the dark knight action crime drama",
		"dark city sci-fi",
		"the the the",
	}
	vocab, vecs := vectorize(texts, 0)

	assert.Equal(t, []string{"action", "city", "crime", "dark", "drama", "fi", "knight", "sci"}, vocab.Terms())
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Equal(t, vocab.Len(), v.Dim)
	}

	i, ok := vocab.Index("dark")
	require.True(t, ok)
	assert.Equal(t, 1.0, vecs[0].Dense()[i])
	assert.Empty(t, vecs[2].Indices)
	assert.Zero(t, vecs[2].Norm())
}

func TestVectorize_MaxFeatures(t *testing.T) {
	texts := []string{"drama drama comedy", "drama war", "comedy zombie"}
	vocab, vecs := vectorize(texts, 2)
	// самые частые: drama=3, comedy=2
	assert.Equal(t, []string{"comedy", "drama"}, vocab.Terms())
	assert.Equal(t, []float64{1, 2}, vecs[0].Dense())
	assert.Equal(t, []float64{1, 0}, vecs[2].Dense())
}

func TestBuildFeatures_Empty(t *testing.T) {
	vocab, vecs := BuildFeatures(nil, DefaultMaxFeatures)
	assert.Zero(t, vocab.Len())
	assert.Empty(t, vecs)
}
