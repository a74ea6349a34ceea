package tensor2d_test

import (
	"math"
	"slices"
	"testing"

	omwrand "github.com/sw965/omw/math/rand"
	"github.com/sw965/softmaxloss/blas64/tensor/2d"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

func TestTranspose(t *testing.T) {
	x := blas64.General{
		Rows:   3,
		Cols:   5,
		Stride: 5,
		Data: []float64{
			1, 2, 3, 4, 5,
			2, 5, 4, 1, 3,
			3, 1, 5, 2, 4,
		},
	}

	result := tensor2d.Transpose(x)
	expected := blas64.General{
		Rows:   5,
		Cols:   3,
		Stride: 3,
		Data: []float64{
			1, 2, 3,
			2, 5, 1,
			3, 4, 5,
			4, 1, 2,
			5, 3, 4,
		},
	}

	if result.Rows != expected.Rows || result.Cols != expected.Cols || result.Stride != expected.Stride {
		t.Errorf("テスト失敗")
	}
	if !slices.Equal(result.Data, expected.Data) {
		t.Errorf("テスト失敗")
	}
}

func TestDot(t *testing.T) {
	a := blas64.General{
		Rows:   2,
		Cols:   3,
		Stride: 3,
		Data: []float64{
			1, 2, 3,
			4, 5, 6,
		},
	}
	b := blas64.General{
		Rows:   3,
		Cols:   2,
		Stride: 2,
		Data: []float64{
			1, 0,
			0, 1,
			1, 1,
		},
	}

	result := tensor2d.Dot(blas.NoTrans, blas.NoTrans, a, b)
	if result.Rows != 2 || result.Cols != 2 {
		t.Fatalf("テスト失敗: %v", result)
	}
	if !slices.Equal(result.Data, []float64{4, 5, 10, 11}) {
		t.Errorf("テスト失敗: %v", result.Data)
	}

	// aᵗ・a
	result = tensor2d.Dot(blas.Trans, blas.NoTrans, a, a)
	expected := tensor2d.Dot(blas.NoTrans, blas.NoTrans, tensor2d.Transpose(a), a)
	if result.Rows != 3 || result.Cols != 3 || !slices.Equal(result.Data, expected.Data) {
		t.Errorf("テスト失敗: %v", result.Data)
	}

	empty := tensor2d.Dot(blas.NoTrans, blas.NoTrans, tensor2d.NewZeros(2, 0), tensor2d.NewZeros(0, 4))
	if empty.Rows != 2 || empty.Cols != 4 || !slices.Equal(empty.Data, make([]float64, 8)) {
		t.Errorf("テスト失敗: %v", empty)
	}
}

func TestRowReductions(t *testing.T) {
	// Stride 4 のうち末尾1列は使われない
	gen := blas64.General{
		Rows:   2,
		Cols:   3,
		Stride: 4,
		Data: []float64{
			1, 5, 2, 100,
			-3, -1, -2, 100,
		},
	}

	if sums := tensor2d.Sum1(gen); !slices.Equal(sums.Data, []float64{8, -6}) {
		t.Errorf("Sum1: %v", sums.Data)
	}
	if maxs := tensor2d.Max1(gen); !slices.Equal(maxs.Data, []float64{5, -1}) {
		t.Errorf("Max1: %v", maxs.Data)
	}
	if sq := tensor2d.SumSquares(gen); sq != 1+25+4+9+1+4 {
		t.Errorf("SumSquares: %v", sq)
	}

	clone := tensor2d.Clone(gen)
	if clone.Stride != 3 || !slices.Equal(clone.Data, []float64{1, 5, 2, -3, -1, -2}) {
		t.Errorf("Clone: %v", clone)
	}
}

func TestBroadcast(t *testing.T) {
	gen := blas64.General{
		Rows:   2,
		Cols:   2,
		Stride: 2,
		Data: []float64{
			3, 5,
			8, 4,
		},
	}
	vec := blas64.Vector{N: 2, Inc: 1, Data: []float64{1, 4}}

	tensor2d.BroadcastSub1(gen, vec)
	if !slices.Equal(gen.Data, []float64{2, 4, 4, 0}) {
		t.Errorf("BroadcastSub1: %v", gen.Data)
	}

	tensor2d.BroadcastDiv1(gen, blas64.Vector{N: 2, Inc: 1, Data: []float64{2, 4}})
	if !slices.Equal(gen.Data, []float64{1, 2, 1, 0}) {
		t.Errorf("BroadcastDiv1: %v", gen.Data)
	}
}

func TestGatherScatterAdd(t *testing.T) {
	gen := blas64.General{
		Rows:   3,
		Cols:   2,
		Stride: 2,
		Data: []float64{
			1, 2,
			3, 4,
			5, 6,
		},
	}
	cols := []int{1, 0, 1}

	if g := tensor2d.Gather(gen, cols); !slices.Equal(g.Data, []float64{2, 3, 6}) {
		t.Errorf("Gather: %v", g.Data)
	}

	tensor2d.ScatterAdd(-1.0, gen, cols)
	if !slices.Equal(gen.Data, []float64{1, 1, 2, 4, 5, 5}) {
		t.Errorf("ScatterAdd: %v", gen.Data)
	}
}

func TestExp(t *testing.T) {
	gen := blas64.General{Rows: 1, Cols: 3, Stride: 3, Data: []float64{0, 1, -1}}
	tensor2d.Exp(gen)
	expected := []float64{1, math.E, 1 / math.E}
	for i := range expected {
		if math.Abs(gen.Data[i]-expected[i]) > 1e-15 {
			t.Errorf("テスト失敗: %v", gen.Data)
		}
	}
}

func TestAxpyScalFrobenius(t *testing.T) {
	rng := omwrand.NewMt19937()
	a := tensor2d.NewNormal(4, 3, 1.0, rng)
	b := tensor2d.Clone(a)

	if d := tensor2d.FrobeniusDistance(a, b); d != 0 {
		t.Errorf("テスト失敗: %v", d)
	}

	// b = 2a
	tensor2d.Scal(2.0, b)
	// b = 2a - a = a
	tensor2d.Axpy(-1.0, a, b)
	if d := tensor2d.FrobeniusDistance(a, b); d > 1e-15 {
		t.Errorf("テスト失敗: %v", d)
	}

	c := tensor2d.NewZerosLike(a)
	expected := math.Sqrt(tensor2d.SumSquares(a))
	if d := tensor2d.FrobeniusDistance(a, c); math.Abs(d-expected) > 1e-12 {
		t.Errorf("テスト失敗: %v != %v", d, expected)
	}
}

func TestIsValid(t *testing.T) {
	testCases := []struct {
		gen      blas64.General
		expected bool
	}{
		{tensor2d.NewZeros(2, 3), true},
		{tensor2d.NewZeros(0, 3), true},
		{tensor2d.NewZeros(3, 0), true},
		{blas64.General{Rows: 2, Cols: 3, Stride: 5, Data: make([]float64, 8)}, true},
		{blas64.General{Rows: 2, Cols: 3, Stride: 5, Data: make([]float64, 7)}, false},
		{blas64.General{Rows: 2, Cols: 3, Stride: 2, Data: make([]float64, 6)}, false},
		{blas64.General{Rows: -1, Cols: 3, Stride: 3}, false},
	}
	for i, tc := range testCases {
		if got := tensor2d.IsValid(tc.gen); got != tc.expected {
			t.Errorf("%d: %v != %v", i, got, tc.expected)
		}
	}
}
