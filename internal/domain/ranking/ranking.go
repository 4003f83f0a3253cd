// Package ranking orders corpus rows by cosine distance to a query vector.
package ranking

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// worstDistance is the largest cosine distance. Rows whose distance is not a
// number are given it so they rank after every comparable row.
const worstDistance = 2

// Ranked is a corpus row index paired with its cosine distance to the query.
type Ranked struct {
	Index    int
	Distance float64
}

// Rank returns the min(k, len(matrix)) rows closest to query, by ascending
// cosine distance with ties broken by ascending row index.
// An empty matrix yields an empty ranking regardless of the query.
// Accumulation is done in float64 whatever the stored precision.
// A query with a NaN or infinite component is rejected; a corpus row with one
// ranks last.
func Rank(query []float32, matrix [][]float32, k int) ([]Ranked, error) {
	if len(matrix) == 0 {
		return []Ranked{}, nil
	}

	dim := len(query)
	if dim == 0 {
		return nil, fmt.Errorf("%w: query vector has no dimensions, corpus has %d",
			domain.ErrDimensionMismatch, len(matrix[0]))
	}

	for i, x := range query {
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: query component %d is %v", domain.ErrProvider, i, x)
		}
	}

	qNorm := norm(query)
	ranked := make([]Ranked, len(matrix))
	for i, row := range matrix {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: query has %d dimensions, corpus row %d has %d",
				domain.ErrDimensionMismatch, dim, i, len(row))
		}
		ranked[i] = Ranked{Index: i, Distance: cosineDistance(query, row, qNorm)}
	}

	slices.SortFunc(ranked, func(a, b Ranked) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	return ranked[:min(max(k, 0), len(ranked))], nil
}

// CosineDistance returns 1 - cos(a, b). Vectors must have equal length.
// A zero vector has distance 1 to everything.
func CosineDistance(a, b []float32) float64 {
	return cosineDistance(a, b, norm(a))
}

func cosineDistance(q, row []float32, qNorm float64) float64 {
	rNorm := norm(row)
	if qNorm == 0 || rNorm == 0 {
		return 1
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(row[i])
	}
	sim := dot / (qNorm * rNorm)
	if math.IsNaN(sim) {
		return worstDistance
	}
	// rounding can push |sim| slightly past 1
	sim = math.Max(-1, math.Min(1, sim))
	return 1 - sim
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		f := float64(x)
		sum += f * f
	}
	return math.Sqrt(sum)
}
