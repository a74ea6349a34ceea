package softmax

import (
	"errors"
	"fmt"

	tensor2d32 "github.com/sw965/softmaxloss/blas32/tensor/2d"
	"github.com/sw965/softmaxloss/blas64/tensor/2d"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

var (
	ErrShapeMismatch          = errors.New("行列の形状が一致しません")
	ErrEmptyBatch             = errors.New("バッチサイズが0です")
	ErrInvalidLabel           = errors.New("ラベルがクラス数の範囲外です")
	ErrNegativeRegularization = errors.New("正則化の強さが負です")
)

type shape struct {
	rows  int
	cols  int
	valid bool
}

func validate(w, x shape, y []int, reg float64) error {
	if !w.valid {
		return fmt.Errorf("%w: Wのデータ長が形状(%d, %d)に足りません", ErrShapeMismatch, w.rows, w.cols)
	}
	if !x.valid {
		return fmt.Errorf("%w: Xのデータ長が形状(%d, %d)に足りません", ErrShapeMismatch, x.rows, x.cols)
	}
	if w.rows != x.cols {
		return fmt.Errorf("%w: W.Rows(%d) != X.Cols(%d)", ErrShapeMismatch, w.rows, x.cols)
	}
	if x.rows != len(y) {
		return fmt.Errorf("%w: X.Rows(%d) != len(y)(%d)", ErrShapeMismatch, x.rows, len(y))
	}
	if x.rows == 0 {
		return ErrEmptyBatch
	}
	for i, yi := range y {
		if yi < 0 || yi >= w.cols {
			return fmt.Errorf("%w: y[%d] = %d, クラス数 = %d", ErrInvalidLabel, i, yi, w.cols)
		}
	}
	if reg < 0 {
		return fmt.Errorf("%w: reg = %v", ErrNegativeRegularization, reg)
	}
	return nil
}

// Validate は NaiveとVectorized が計算を始める前に行う検査と同じものを行う。
func Validate(w, x blas64.General, y []int, reg float64) error {
	return validate(
		shape{rows: w.Rows, cols: w.Cols, valid: tensor2d.IsValid(w)},
		shape{rows: x.Rows, cols: x.Cols, valid: tensor2d.IsValid(x)},
		y, reg,
	)
}

func Validate32(w, x blas32.General, y []int, reg float32) error {
	return validate(
		shape{rows: w.Rows, cols: w.Cols, valid: tensor2d32.IsValid(w)},
		shape{rows: x.Rows, cols: x.Cols, valid: tensor2d32.IsValid(x)},
		y, float64(reg),
	)
}
