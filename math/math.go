package math

import (
	"golang.org/x/exp/constraints"
)

func CentralDifference[F constraints.Float](plusY, minusY, h F) F {
	return (plusY - minusY) / (2.0 * h)
}

func abs[F constraints.Float](x F) F {
	if x < 0 {
		return -x
	}
	return x
}

// RelativeError は |a-b| / max(|a|+|b|, 1e-8) を返す。
func RelativeError[F constraints.Float](a, b F) F {
	den := abs(a) + abs(b)
	if den < 1e-8 {
		den = 1e-8
	}
	return abs(a-b) / den
}
