package tensor

import (
	"math/rand"
	"time"
)

// dropoutRand is the package-level random source for dropout masks.
var dropoutRand *rand.Rand

// SetDropoutSeed sets the random seed for dropout (useful for testing).
func SetDropoutSeed(seed int64) {
	dropoutRand = rand.New(rand.NewSource(seed))
}

// Dropout randomly zeros elements with probability p during training, scaling
// the survivors by 1/(1-p) so activation magnitudes match inference (inverted
// dropout). With training=false or p=0 it returns an unchanged copy, so
// inference never depends on the random source.
func (t *Tensor) Dropout(p float32, training bool) *Tensor {
	if !training || p == 0 {
		return t.Clone()
	}

	if p < 0 || p > 1 {
		panic("dropout probability must be between 0 and 1")
	}

	if dropoutRand == nil {
		dropoutRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	result := NewTensor(t.Shape)
	scale := 1 / (1 - p)

	for i := range t.Data {
		if dropoutRand.Float32() >= p {
			result.Data[i] = t.Data[i] * scale
		}
	}

	return result
}

// ApplyDropout applies dropout to a tensor using the given probability and
// training mode. This is a convenience function that calls the Dropout method.
func ApplyDropout(t *Tensor, p float32, training bool) *Tensor {
	return t.Dropout(p, training)
}
