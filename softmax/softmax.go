// Package softmax は線形分類器のソフトマックス交差エントロピー損失と、
// 重みWについての勾配を計算する。
//
// 同じ計算をループで素直に書いたNaiveと、行列演算でまとめて行うVectorizedの2つを持ち、
// 両者の出力は浮動小数点の誤差の範囲で一致する。
// どちらもスコアの行ごとの最大値を引いてから指数を取るため、スコアが大きくてもオーバーフローしない。
package softmax

import (
	"math"

	omwmath "github.com/sw965/omw/math"
	tensor2d32 "github.com/sw965/softmaxloss/blas32/tensor/2d"
	vector32 "github.com/sw965/softmaxloss/blas32/vector"
	"github.com/sw965/softmaxloss/blas64/tensor/2d"
	"github.com/sw965/softmaxloss/blas64/vector"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

// Func は w:(D, C), x:(N, D), y:(N) から平均損失と (D, C) の勾配を返す。
type Func func(w, x blas64.General, y []int, reg float64) (float64, blas64.General, error)

var (
	_ Func = Naive
	_ Func = Vectorized
)

func Naive(w, x blas64.General, y []int, reg float64) (float64, blas64.General, error) {
	if err := Validate(w, x, y, reg); err != nil {
		return 0.0, blas64.General{}, err
	}

	d := w.Rows
	c := w.Cols
	n := x.Rows
	grad := tensor2d.NewZeros(d, c)
	scores := make([]float64, c)
	probs := make([]float64, c)
	loss := 0.0

	for i := 0; i < n; i++ {
		xi := tensor2d.Row(x, i).Data
		for j := 0; j < c; j++ {
			s := 0.0
			for k, xik := range xi {
				s += xik * w.Data[tensor2d.At(w, k, j)]
			}
			scores[j] = s
		}

		maxScore := omwmath.Max(scores...) // オーバーフロー対策
		sumExp := 0.0
		for j, s := range scores {
			probs[j] = math.Exp(s - maxScore)
			sumExp += probs[j]
		}
		for j := range probs {
			probs[j] /= sumExp
		}

		// -log(p[y[i]]) を log(Σexp) - (s[y[i]] - max) として計算する
		loss += math.Log(sumExp) - (scores[y[i]] - maxScore)

		for j, p := range probs {
			for k, xik := range xi {
				grad.Data[tensor2d.At(grad, k, j)] += xik * p
			}
		}
		for k, xik := range xi {
			grad.Data[tensor2d.At(grad, k, y[i])] -= xik
		}
	}

	nf := float64(n)
	sqSum := 0.0
	for k := 0; k < d; k++ {
		for j := 0; j < c; j++ {
			wkj := w.Data[tensor2d.At(w, k, j)]
			sqSum += wkj * wkj
			idx := tensor2d.At(grad, k, j)
			grad.Data[idx] = grad.Data[idx]/nf + reg*wkj
		}
	}
	loss = loss/nf + 0.5*reg*sqSum
	return loss, grad, nil
}

func Vectorized(w, x blas64.General, y []int, reg float64) (float64, blas64.General, error) {
	if err := Validate(w, x, y, reg); err != nil {
		return 0.0, blas64.General{}, err
	}
	nf := float64(x.Rows)

	// (N, C)
	scores := tensor2d.Dot(blas.NoTrans, blas.NoTrans, x, w)
	tensor2d.BroadcastSub1(scores, tensor2d.Max1(scores))
	trueScores := tensor2d.Gather(scores, y)

	exps := scores
	tensor2d.Exp(exps)
	sums := tensor2d.Sum1(exps)

	losses := vector.Clone(sums)
	vector.Log(losses)
	blas64.Axpy(-1.0, trueScores, losses)
	loss := vector.Sum(losses)/nf + 0.5*reg*tensor2d.SumSquares(w)

	probs := exps
	tensor2d.BroadcastDiv1(probs, sums)
	tensor2d.ScatterAdd(-1.0, probs, y)

	// (D, C)
	grad := tensor2d.Dot(blas.Trans, blas.NoTrans, x, probs)
	tensor2d.Scal(1.0/nf, grad)
	tensor2d.Axpy(reg, w, grad)
	return loss, grad, nil
}

// Vectorized32 はVectorizedの単精度版。
func Vectorized32(w, x blas32.General, y []int, reg float32) (float32, blas32.General, error) {
	if err := Validate32(w, x, y, reg); err != nil {
		return 0.0, blas32.General{}, err
	}
	nf := float32(x.Rows)

	scores := tensor2d32.Dot(blas.NoTrans, blas.NoTrans, x, w)
	tensor2d32.BroadcastSub1(scores, tensor2d32.Max1(scores))
	trueScores := tensor2d32.Gather(scores, y)

	exps := scores
	tensor2d32.Exp(exps)
	sums := tensor2d32.Sum1(exps)

	losses := vector32.Clone(sums)
	vector32.Log(losses)
	blas32.Axpy(-1.0, trueScores, losses)
	loss := vector32.Sum(losses)/nf + 0.5*reg*tensor2d32.SumSquares(w)

	probs := exps
	tensor2d32.BroadcastDiv1(probs, sums)
	tensor2d32.ScatterAdd(-1.0, probs, y)

	grad := tensor2d32.Dot(blas.Trans, blas.NoTrans, x, probs)
	tensor2d32.Scal(1.0/nf, grad)
	tensor2d32.Axpy(reg, w, grad)
	return loss, grad, nil
}
