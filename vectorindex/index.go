package vectorindex

import (
	"fmt"
	"math"
	"sort"
)

// normEpsilon replaces an exactly-zero norm as the division guard, so a zero
// vector normalizes to itself instead of NaN.
const normEpsilon = 1e-10

// Index is a flat inner-product index. Vectors are compared by dot product,
// which equals cosine similarity when all stored vectors and the query are
// L2-normalized. Ids are row positions: id i maps to metadata entry i.
type Index struct {
	dim     int
	vectors [][]float32
}

// New creates an empty index for vectors of the given dimensionality.
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Dim returns the index dimensionality.
func (ix *Index) Dim() int {
	return ix.dim
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	return len(ix.vectors)
}

// Add appends vectors to the index in order. Every vector must match the
// index dimensionality.
func (ix *Index) Add(vectors [][]float32) error {
	for i, vector := range vectors {
		if len(vector) != ix.dim {
			return fmt.Errorf("%w: vector %d has length %d, index dimension is %d",
				ErrDimensionMismatch, i, len(vector), ix.dim)
		}
	}
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// Search returns the top k rows by inner-product similarity to query,
// ordered by score descending. The returned ids are row positions into the
// aligned metadata sequence. Fewer than k results are returned when the
// index holds fewer vectors.
func (ix *Index) Search(query []float32, k int) (scores []float32, ids []int, err error) {
	if len(query) != ix.dim {
		return nil, nil, fmt.Errorf("%w: query has length %d, index dimension is %d",
			ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 || len(ix.vectors) == 0 {
		return []float32{}, []int{}, nil
	}

	type hit struct {
		id    int
		score float32
	}
	hits := make([]hit, len(ix.vectors))
	for i, vector := range ix.vectors {
		hits[i] = hit{id: i, score: dotProduct(query, vector)}
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if k > len(hits) {
		k = len(hits)
	}
	scores = make([]float32, k)
	ids = make([]int, k)
	for i := 0; i < k; i++ {
		scores[i] = hits[i].score
		ids[i] = hits[i].id
	}
	return scores, ids, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// NormalizeVector normalizes a vector to unit length in place and returns it.
// A zero vector is returned unchanged.
func NormalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		norm = normEpsilon
	}
	for i, val := range v {
		v[i] = float32(float64(val) / norm)
	}
	return v
}

// NormalizeVectors normalizes every vector in place and returns the slice.
// Normalization must run once over the whole corpus, not per batch, so that
// similarity scales stay consistent.
func NormalizeVectors(vectors [][]float32) [][]float32 {
	for i := range vectors {
		NormalizeVector(vectors[i])
	}
	return vectors
}
