package vector

import (
	"slices"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/blas/blas32"
)

func Clone(vec blas32.Vector) blas32.Vector {
	return blas32.Vector{
		N:    vec.N,
		Inc:  vec.Inc,
		Data: slices.Clone(vec.Data),
	}
}

func Sum(vec blas32.Vector) float32 {
	var sum float32
	for i := 0; i < vec.N; i++ {
		sum += vec.Data[i*vec.Inc]
	}
	return sum
}

func Log(vec blas32.Vector) {
	for i := 0; i < vec.N; i++ {
		idx := i * vec.Inc
		vec.Data[idx] = math32.Log(vec.Data[idx])
	}
}
