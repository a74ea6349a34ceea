package gradcheck

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/sw965/softmaxloss/blas64/tensor/2d"
	cmath "github.com/sw965/softmaxloss/math"
	"github.com/sw965/softmaxloss/softmax"
	"gonum.org/v1/gonum/blas/blas64"
)

var (
	ErrGradientMismatch = errors.New("解析的な勾配と数値微分が一致しません")
	ErrInvalidStep      = errors.New("差分の刻み幅 h は正である必要があります")
	ErrInvalidNumChecks = errors.New("NumChecks は0以上である必要があります")
)

// LossFunc は重みだけを引数に取る損失関数。数値微分の対象になる。
type LossFunc func(blas64.General) (float64, error)

// Bind は x, y, reg を固定して f を LossFunc にする。
func Bind(f softmax.Func, x blas64.General, y []int, reg float64) LossFunc {
	return func(w blas64.General) (float64, error) {
		loss, _, err := f(w, x, y, reg)
		return loss, err
	}
}

func partial(f LossFunc, w blas64.General, row, col int, h float64) (float64, error) {
	idx := tensor2d.At(w, row, col)
	tmp := w.Data[idx]
	defer func() { w.Data[idx] = tmp }()

	w.Data[idx] = tmp + h
	plusLoss, err := f(w)
	if err != nil {
		return 0.0, err
	}

	w.Data[idx] = tmp - h
	minusLoss, err := f(w)
	if err != nil {
		return 0.0, err
	}
	return cmath.CentralDifference(plusLoss, minusLoss, h), nil
}

// NumericalGradient は w の全要素について中心差分で勾配を求める。w は書き換えない。
func NumericalGradient(f LossFunc, w blas64.General, h float64) (blas64.General, error) {
	if !tensor2d.IsValid(w) {
		return blas64.General{}, fmt.Errorf("%w: Wのデータ長が形状(%d, %d)に足りません", softmax.ErrShapeMismatch, w.Rows, w.Cols)
	}
	if h <= 0 {
		return blas64.General{}, fmt.Errorf("%w: h = %v", ErrInvalidStep, h)
	}
	work := tensor2d.Clone(w)
	grad := tensor2d.NewZerosLike(w)
	for r := 0; r < work.Rows; r++ {
		for c := 0; c < work.Cols; c++ {
			g, err := partial(f, work, r, c, h)
			if err != nil {
				return blas64.General{}, err
			}
			grad.Data[tensor2d.At(grad, r, c)] = g
		}
	}
	return grad, nil
}

type Sample struct {
	Row           int
	Col           int
	Numerical     float64
	Analytic      float64
	RelativeError float64
}

type Report struct {
	Samples          []Sample
	MaxRelativeError float64
}

// Passed は全てのサンプルが相対誤差 relTol 以下、または絶対誤差 absTol 以下なら true を返す。
func (r *Report) Passed(relTol, absTol float64) bool {
	for _, s := range r.Samples {
		if s.RelativeError > relTol && math.Abs(s.Numerical-s.Analytic) > absTol {
			return false
		}
	}
	return true
}

type Checker struct {
	H                 float64
	NumChecks         int
	Tolerance         float64
	AbsoluteTolerance float64
	Logger            zerolog.Logger
}

func NewDefaultChecker() Checker {
	return Checker{
		H:                 1e-5,
		NumChecks:         10,
		Tolerance:         1e-5,
		AbsoluteTolerance: 1e-8,
		Logger:            zerolog.Nop(),
	}
}

func (c *Checker) validate(w, analytic blas64.General) error {
	if c.H <= 0 {
		return fmt.Errorf("%w: Checker.H = %v", ErrInvalidStep, c.H)
	}
	if c.NumChecks < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidNumChecks, c.NumChecks)
	}
	if !tensor2d.IsValid(w) {
		return fmt.Errorf("%w: Wのデータ長が形状(%d, %d)に足りません", softmax.ErrShapeMismatch, w.Rows, w.Cols)
	}
	if !tensor2d.IsValid(analytic) {
		return fmt.Errorf("%w: 勾配のデータ長が形状(%d, %d)に足りません", softmax.ErrShapeMismatch, analytic.Rows, analytic.Cols)
	}
	if w.Rows != analytic.Rows || w.Cols != analytic.Cols {
		return fmt.Errorf("%w: W(%d, %d) != grad(%d, %d)",
			softmax.ErrShapeMismatch, w.Rows, w.Cols, analytic.Rows, analytic.Cols)
	}
	return nil
}

func (c *Checker) sample(f LossFunc, work, analytic blas64.General, row, col int) (Sample, error) {
	num, err := partial(f, work, row, col, c.H)
	if err != nil {
		return Sample{}, err
	}
	ana := analytic.Data[tensor2d.At(analytic, row, col)]
	s := Sample{
		Row:           row,
		Col:           col,
		Numerical:     num,
		Analytic:      ana,
		RelativeError: cmath.RelativeError(num, ana),
	}
	c.Logger.Debug().
		Int("row", row).
		Int("col", col).
		Float64("numerical", num).
		Float64("analytic", ana).
		Float64("relative_error", s.RelativeError).
		Msg("gradient sample")
	return s, nil
}

func (c *Checker) report(samples []Sample) Report {
	r := Report{Samples: samples}
	for _, s := range samples {
		r.MaxRelativeError = max(r.MaxRelativeError, s.RelativeError)
	}
	c.Logger.Info().
		Int("samples", len(samples)).
		Float64("max_relative_error", r.MaxRelativeError).
		Bool("passed", r.Passed(c.Tolerance, c.AbsoluteTolerance)).
		Msg("gradient check")
	return r
}

// Sparse は w からランダムに NumChecks 個の要素を選び、数値微分と analytic を比べる。
func (c *Checker) Sparse(f LossFunc, w, analytic blas64.General, rng *rand.Rand) (Report, error) {
	if err := c.validate(w, analytic); err != nil {
		return Report{}, err
	}
	if tensor2d.N(w) == 0 {
		return c.report(nil), nil
	}

	work := tensor2d.Clone(w)
	samples := make([]Sample, 0, c.NumChecks)
	for i := 0; i < c.NumChecks; i++ {
		row := rng.Intn(w.Rows)
		col := rng.Intn(w.Cols)
		s, err := c.sample(f, work, analytic, row, col)
		if err != nil {
			return Report{}, err
		}
		samples = append(samples, s)
	}
	return c.report(samples), nil
}

func (c *Checker) Full(f LossFunc, w, analytic blas64.General) (Report, error) {
	if err := c.validate(w, analytic); err != nil {
		return Report{}, err
	}

	work := tensor2d.Clone(w)
	samples := make([]Sample, 0, tensor2d.N(w))
	for row := 0; row < w.Rows; row++ {
		for col := 0; col < w.Cols; col++ {
			s, err := c.sample(f, work, analytic, row, col)
			if err != nil {
				return Report{}, err
			}
			samples = append(samples, s)
		}
	}
	return c.report(samples), nil
}

// Check は f の解析的な勾配を Sparse で検査し、許容誤差を超えたら ErrGradientMismatch を返す。
func (c *Checker) Check(f softmax.Func, w, x blas64.General, y []int, reg float64, rng *rand.Rand) (Report, error) {
	_, analytic, err := f(w, x, y, reg)
	if err != nil {
		return Report{}, err
	}

	r, err := c.Sparse(Bind(f, x, y, reg), w, analytic, rng)
	if err != nil {
		return Report{}, err
	}
	if !r.Passed(c.Tolerance, c.AbsoluteTolerance) {
		return r, fmt.Errorf("%w: 最大相対誤差 %e > %e", ErrGradientMismatch, r.MaxRelativeError, c.Tolerance)
	}
	return r, nil
}

type Difference struct {
	Loss float64
	// 勾配の差のフロベニウスノルム
	Grad float64
}

// Compare は同じ入力に対する a と b の出力の差を返す。
func Compare(a, b softmax.Func, w, x blas64.General, y []int, reg float64) (Difference, error) {
	lossA, gradA, err := a(w, x, y, reg)
	if err != nil {
		return Difference{}, err
	}
	lossB, gradB, err := b(w, x, y, reg)
	if err != nil {
		return Difference{}, err
	}
	if gradA.Rows != gradB.Rows || gradA.Cols != gradB.Cols {
		return Difference{}, fmt.Errorf("%w: (%d, %d) != (%d, %d)",
			softmax.ErrShapeMismatch, gradA.Rows, gradA.Cols, gradB.Rows, gradB.Cols)
	}
	return Difference{
		Loss: math.Abs(lossA - lossB),
		Grad: tensor2d.FrobeniusDistance(gradA, gradB),
	}, nil
}

// Time は f を1回呼び出すのにかかった時間を返す。
func Time(f softmax.Func, w, x blas64.General, y []int, reg float64) (time.Duration, error) {
	start := time.Now()
	_, _, err := f(w, x, y, reg)
	return time.Since(start), err
}
