package vector

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/blas/blas64"
)

func Clone(vec blas64.Vector) blas64.Vector {
	return blas64.Vector{
		N:    vec.N,
		Inc:  vec.Inc,
		Data: slices.Clone(vec.Data),
	}
}

func Sum(vec blas64.Vector) float64 {
	sum := 0.0
	for i := 0; i < vec.N; i++ {
		sum += vec.Data[i*vec.Inc]
	}
	return sum
}

func Log(vec blas64.Vector) {
	for i := 0; i < vec.N; i++ {
		idx := i * vec.Inc
		vec.Data[idx] = math.Log(vec.Data[idx])
	}
}
