package tensor2d

import (
	"math"
	"math/rand"

	omwmath "github.com/sw965/omw/math"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

func NewZeros(rows, cols int) blas64.General {
	return blas64.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   make([]float64, rows*cols),
	}
}

func NewZerosLike(gen blas64.General) blas64.General {
	return NewZeros(gen.Rows, gen.Cols)
}

func NewNormal(rows, cols int, std float64, rng *rand.Rand) blas64.General {
	gen := NewZeros(rows, cols)
	for i := range gen.Data {
		gen.Data[i] = rng.NormFloat64() * std
	}
	return gen
}

func N(gen blas64.General) int {
	return gen.Rows * gen.Cols
}

// IsValid はDataが宣言された形状を保持できるかを返す。
func IsValid(gen blas64.General) bool {
	if gen.Rows < 0 || gen.Cols < 0 {
		return false
	}
	if gen.Rows == 0 || gen.Cols == 0 {
		return true
	}
	if gen.Stride < gen.Cols {
		return false
	}
	return len(gen.Data) >= (gen.Rows-1)*gen.Stride+gen.Cols
}

// Clone はStrideを詰めたコピーを返す。
func Clone(gen blas64.General) blas64.General {
	c := NewZerosLike(gen)
	for r := 0; r < gen.Rows; r++ {
		copy(Row(c, r).Data, Row(gen, r).Data)
	}
	return c
}

func At(gen blas64.General, row, col int) int {
	return row*gen.Stride + col
}

// Row は行rのビューを返す。書き込みは元の行列に反映される。
func Row(gen blas64.General, row int) blas64.Vector {
	offset := row * gen.Stride
	return blas64.Vector{
		N:    gen.Cols,
		Inc:  1,
		Data: gen.Data[offset : offset+gen.Cols],
	}
}

func Scal(alpha float64, gen blas64.General) {
	for r := 0; r < gen.Rows; r++ {
		blas64.Scal(alpha, Row(gen, r))
	}
}

func Axpy(alpha float64, x, y blas64.General) {
	for r := 0; r < x.Rows; r++ {
		blas64.Axpy(alpha, Row(x, r), Row(y, r))
	}
}

func SumSquares(gen blas64.General) float64 {
	sum := 0.0
	for r := 0; r < gen.Rows; r++ {
		row := Row(gen, r)
		sum += blas64.Dot(row, row)
	}
	return sum
}

func FrobeniusDistance(a, b blas64.General) float64 {
	diff := Clone(a)
	Axpy(-1.0, b, diff)
	return math.Sqrt(SumSquares(diff))
}

func Sum1(gen blas64.General) blas64.Vector {
	sums := make([]float64, gen.Rows)
	for r := 0; r < gen.Rows; r++ {
		offset := r * gen.Stride
		sum := 0.0
		for c := 0; c < gen.Cols; c++ {
			sum += gen.Data[offset+c]
		}
		sums[r] = sum
	}
	return blas64.Vector{
		N:    gen.Rows,
		Inc:  1,
		Data: sums,
	}
}

func Max1(gen blas64.General) blas64.Vector {
	maxs := make([]float64, gen.Rows)
	if gen.Cols == 0 {
		return blas64.Vector{N: gen.Rows, Inc: 1, Data: maxs}
	}
	for r := 0; r < gen.Rows; r++ {
		maxs[r] = omwmath.Max(Row(gen, r).Data...)
	}
	return blas64.Vector{
		N:    gen.Rows,
		Inc:  1,
		Data: maxs,
	}
}

// BroadcastSub1 は各行rからvec[r]を引く。
func BroadcastSub1(gen blas64.General, vec blas64.Vector) {
	for r := 0; r < gen.Rows; r++ {
		v := vec.Data[r*vec.Inc]
		row := Row(gen, r).Data
		for c := range row {
			row[c] -= v
		}
	}
}

// BroadcastDiv1 は各行rをvec[r]で割る。
func BroadcastDiv1(gen blas64.General, vec blas64.Vector) {
	for r := 0; r < gen.Rows; r++ {
		blas64.Scal(1.0/vec.Data[r*vec.Inc], Row(gen, r))
	}
}

func Exp(gen blas64.General) {
	for r := 0; r < gen.Rows; r++ {
		row := Row(gen, r).Data
		for c, e := range row {
			row[c] = math.Exp(e)
		}
	}
}

// Gather は各行rから列cols[r]の要素を取り出す。
func Gather(gen blas64.General, cols []int) blas64.Vector {
	y := make([]float64, gen.Rows)
	for r := range y {
		y[r] = gen.Data[At(gen, r, cols[r])]
	}
	return blas64.Vector{
		N:    gen.Rows,
		Inc:  1,
		Data: y,
	}
}

// ScatterAdd は各行rの列cols[r]にalphaを加える。
func ScatterAdd(alpha float64, gen blas64.General, cols []int) {
	for r := 0; r < gen.Rows; r++ {
		gen.Data[At(gen, r, cols[r])] += alpha
	}
}

func Transpose(gen blas64.General) blas64.General {
	t := NewZeros(gen.Cols, gen.Rows)
	for i := range t.Rows {
		for j := range t.Cols {
			t.Data[At(t, i, j)] = gen.Data[At(gen, j, i)]
		}
	}
	return t
}

func Dot(tA, tB blas.Transpose, a, b blas64.General) blas64.General {
	m, k := a.Rows, a.Cols
	if tA != blas.NoTrans {
		m, k = k, m
	}
	n := b.Cols
	if tB != blas.NoTrans {
		n = b.Rows
	}

	y := NewZeros(m, n)
	// Gemmは Stride 0 の空行列を受け付けない
	if m == 0 || n == 0 || k == 0 {
		return y
	}
	blas64.Gemm(tA, tB, 1.0, a, b, 0.0, y)
	return y
}
