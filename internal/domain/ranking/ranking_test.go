package ranking

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/kailas-cloud/lexai/internal/domain"
)

func indices(rs []Ranked) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.Index
	}
	return out
}

func TestRank_ClosestFirst(t *testing.T) {
	matrix := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	got, err := Rank([]float32{1, 0, 0}, matrix, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].Index != 0 || got[1].Index != 1 {
		t.Fatalf("expected rows 0 then 1 first, got %v", indices(got))
	}
	if math.Abs(got[0].Distance) > 1e-9 {
		t.Errorf("expected first distance ~0, got %g", got[0].Distance)
	}
	// rows 2 and 3 are both orthogonal to the query: the lower index wins.
	if got[2].Index != 2 {
		t.Errorf("expected tie broken by index (2), got %d", got[2].Index)
	}
}

func TestRank_EmptyCorpus(t *testing.T) {
	for _, q := range [][]float32{{1, 2, 3}, {}, nil} {
		got, err := Rank(q, nil, 3)
		if err != nil {
			t.Fatalf("unexpected error for query %v: %v", q, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil ranking, got %v", got)
		}
	}
}

func TestRank_DimensionMismatch(t *testing.T) {
	matrix := [][]float32{{1, 0, 0}, {0, 1, 0}}

	tests := []struct {
		name  string
		query []float32
	}{
		{"shorter", []float32{1, 0}},
		{"longer", []float32{1, 0, 0, 0}},
		{"scalar", []float32{}},
		{"nil", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Rank(tc.query, matrix, 3)
			if !errors.Is(err, domain.ErrDimensionMismatch) {
				t.Fatalf("expected ErrDimensionMismatch, got %v", err)
			}
		})
	}
}

func TestRank_RaggedRow(t *testing.T) {
	matrix := [][]float32{{1, 0, 0}, {0, 1}}
	if _, err := Rank([]float32{1, 0, 0}, matrix, 2); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRank_KBound(t *testing.T) {
	matrix := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	for _, k := range []int{-1, 0, 1, 2, 3, 4, 100} {
		got, err := Rank([]float32{1, 0}, matrix, k)
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		want := min(max(k, 0), len(matrix))
		if len(got) != want {
			t.Errorf("k=%d: expected %d results, got %d", k, want, len(got))
		}
	}
}

func TestRank_SortedAndDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	matrix := make([][]float32, 200)
	for i := range matrix {
		row := make([]float32, 8)
		for j := range row {
			// coarse values produce plenty of exact ties
			row[j] = float32(rng.Intn(3))
		}
		matrix[i] = row
	}
	query := []float32{1, 0, 1, 0, 1, 0, 1, 0}

	first, err := Rank(query, matrix, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if prev.Distance > cur.Distance {
			t.Fatalf("not sorted at %d: %g > %g", i, prev.Distance, cur.Distance)
		}
		if prev.Distance == cur.Distance && prev.Index > cur.Index {
			t.Fatalf("tie not broken by index at %d: %d > %d", i, prev.Index, cur.Index)
		}
	}

	second, _ := Rank(query, matrix, 50)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ranking not deterministic at %d", i)
		}
	}
}

func TestRank_DoesNotMutateInputs(t *testing.T) {
	matrix := [][]float32{{0, 1}, {1, 0}}
	query := []float32{1, 0}
	if _, err := Rank(query, matrix, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matrix[0][1] != 1 || matrix[1][0] != 1 || query[0] != 1 {
		t.Fatal("inputs mutated")
	}
}

func TestRank_ZeroVector(t *testing.T) {
	matrix := [][]float32{{0, 0}, {1, 0}}
	got, err := Rank([]float32{1, 0}, matrix, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Index != 1 {
		t.Errorf("expected non-zero row first, got %v", indices(got))
	}
	if got[1].Distance != 1 {
		t.Errorf("expected zero row distance 1, got %g", got[1].Distance)
	}
	for _, r := range got {
		if math.IsNaN(r.Distance) {
			t.Fatal("distance must never be NaN")
		}
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CosineDistance(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %g, want %g", got, tc.want)
			}
		})
	}
}

func TestRank_NonFiniteRowsRankLast(t *testing.T) {
	inf := float32(math.Inf(1))
	nan := float32(math.NaN())
	matrix := [][]float32{
		{inf, 1},
		{nan, 0},
		{1, 0},
		{0, inf},
		{0, 1},
	}
	got, err := Rank([]float32{1, 0}, matrix, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{2, 4, 0, 1, 3}
	for i, idx := range indices(got) {
		if idx != want[i] {
			t.Fatalf("order = %v, want %v", indices(got), want)
		}
	}
	for _, r := range got {
		if math.IsNaN(r.Distance) {
			t.Errorf("row %d has NaN distance", r.Index)
		}
	}
	if got[2].Distance != worstDistance {
		t.Errorf("non-finite row distance = %g, want %d", got[2].Distance, worstDistance)
	}
}

func TestRank_NonFiniteQuery(t *testing.T) {
	for _, q := range [][]float32{
		{float32(math.NaN()), 0},
		{1, float32(math.Inf(-1))},
	} {
		_, err := Rank(q, [][]float32{{1, 0}}, 1)
		if !errors.Is(err, domain.ErrProvider) {
			t.Errorf("Rank(%v): expected ErrProvider, got %v", q, err)
		}
	}
}
