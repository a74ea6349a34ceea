package tensor2d

import (
	"github.com/chewxy/math32"
	omwmath "github.com/sw965/omw/math"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

func NewZeros(rows, cols int) blas32.General {
	return blas32.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   make([]float32, rows*cols),
	}
}

// FromFloat64 は倍精度の行列を単精度に丸めて詰めたコピーを返す。
func FromFloat64(gen blas64.General) blas32.General {
	y := NewZeros(gen.Rows, gen.Cols)
	for r := 0; r < gen.Rows; r++ {
		for c := 0; c < gen.Cols; c++ {
			y.Data[At(y, r, c)] = float32(gen.Data[r*gen.Stride+c])
		}
	}
	return y
}

func IsValid(gen blas32.General) bool {
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

func At(gen blas32.General, row, col int) int {
	return row*gen.Stride + col
}

func Row(gen blas32.General, row int) blas32.Vector {
	offset := row * gen.Stride
	return blas32.Vector{
		N:    gen.Cols,
		Inc:  1,
		Data: gen.Data[offset : offset+gen.Cols],
	}
}

func Scal(alpha float32, gen blas32.General) {
	for r := 0; r < gen.Rows; r++ {
		blas32.Scal(alpha, Row(gen, r))
	}
}

func Axpy(alpha float32, x, y blas32.General) {
	for r := 0; r < x.Rows; r++ {
		blas32.Axpy(alpha, Row(x, r), Row(y, r))
	}
}

func SumSquares(gen blas32.General) float32 {
	var sum float32
	for r := 0; r < gen.Rows; r++ {
		row := Row(gen, r)
		sum += blas32.Dot(row, row)
	}
	return sum
}

func Sum1(gen blas32.General) blas32.Vector {
	sums := make([]float32, gen.Rows)
	for r := 0; r < gen.Rows; r++ {
		offset := r * gen.Stride
		var sum float32
		for c := 0; c < gen.Cols; c++ {
			sum += gen.Data[offset+c]
		}
		sums[r] = sum
	}
	return blas32.Vector{
		N:    gen.Rows,
		Inc:  1,
		Data: sums,
	}
}

func Max1(gen blas32.General) blas32.Vector {
	maxs := make([]float32, gen.Rows)
	if gen.Cols == 0 {
		return blas32.Vector{N: gen.Rows, Inc: 1, Data: maxs}
	}
	for r := 0; r < gen.Rows; r++ {
		maxs[r] = omwmath.Max(Row(gen, r).Data...)
	}
	return blas32.Vector{
		N:    gen.Rows,
		Inc:  1,
		Data: maxs,
	}
}

func BroadcastSub1(gen blas32.General, vec blas32.Vector) {
	for r := 0; r < gen.Rows; r++ {
		v := vec.Data[r*vec.Inc]
		row := Row(gen, r).Data
		for c := range row {
			row[c] -= v
		}
	}
}

func BroadcastDiv1(gen blas32.General, vec blas32.Vector) {
	for r := 0; r < gen.Rows; r++ {
		blas32.Scal(1.0/vec.Data[r*vec.Inc], Row(gen, r))
	}
}

func Exp(gen blas32.General) {
	for r := 0; r < gen.Rows; r++ {
		row := Row(gen, r).Data
		for c, e := range row {
			row[c] = math32.Exp(e)
		}
	}
}

func Gather(gen blas32.General, cols []int) blas32.Vector {
	y := make([]float32, gen.Rows)
	for r := range y {
		y[r] = gen.Data[At(gen, r, cols[r])]
	}
	return blas32.Vector{
		N:    gen.Rows,
		Inc:  1,
		Data: y,
	}
}

func ScatterAdd(alpha float32, gen blas32.General, cols []int) {
	for r := 0; r < gen.Rows; r++ {
		gen.Data[At(gen, r, cols[r])] += alpha
	}
}

func Dot(tA, tB blas.Transpose, a, b blas32.General) blas32.General {
	m, k := a.Rows, a.Cols
	if tA != blas.NoTrans {
		m, k = k, m
	}
	n := b.Cols
	if tB != blas.NoTrans {
		n = b.Rows
	}

	y := NewZeros(m, n)
	if m == 0 || n == 0 || k == 0 {
		return y
	}
	blas32.Gemm(tA, tB, 1.0, a, b, 0.0, y)
	return y
}
