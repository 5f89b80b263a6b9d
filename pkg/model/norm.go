package model

import (
	"fmt"
	"math"

	"seq2seq/pkg/tensor"
)

// LayerNorm implements layer normalization with learnable scale and shift.
//
// LayerNorm normalizes across the last (feature) dimension and applies a
// learned scale (gamma) and shift (beta):
//
//	mean = mean(x, dim=-1)
//	var = var(x, dim=-1)
//	output = (x - mean) / sqrt(var + eps) * scale + shift
//
// Each position in the sequence is normalized independently.
type LayerNorm struct {
	Scale *tensor.Tensor // (embed_dim,) - gamma parameter
	Shift *tensor.Tensor // (embed_dim,) - beta parameter
	Eps   float32        // Small constant for numerical stability
}

// NewLayerNorm creates a LayerNorm layer with scale=1 and shift=0.
// eps is the stability constant, typically 1e-5.
func NewLayerNorm(embDim int, eps float32) *LayerNorm {
	scale := tensor.NewTensor([]int{embDim})
	for i := range scale.Data {
		scale.Data[i] = 1.0
	}
	shift := tensor.NewTensor([]int{embDim})

	return &LayerNorm{
		Scale: scale,
		Shift: shift,
		Eps:   eps,
	}
}

// Forward applies layer normalization to the input.
//
// Input shape: any shape whose last dimension is embed_dim
// Output shape: same as input
func (ln *LayerNorm) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Shape) == 0 {
		return nil, fmt.Errorf("cannot apply LayerNorm to 0D tensor")
	}

	lastDim := x.Shape[len(x.Shape)-1]
	if lastDim != len(ln.Scale.Data) {
		return nil, fmt.Errorf("input last dimension %d doesn't match LayerNorm dimension %d",
			lastDim, len(ln.Scale.Data))
	}

	numSlices := 1
	for i := 0; i < len(x.Shape)-1; i++ {
		numSlices *= x.Shape[i]
	}
	sliceSize := lastDim

	result := tensor.NewTensor(x.Shape)

	for sliceIdx := 0; sliceIdx < numSlices; sliceIdx++ {
		offset := sliceIdx * sliceSize

		mean := float32(0)
		for i := 0; i < sliceSize; i++ {
			mean += x.Data[offset+i]
		}
		mean /= float32(sliceSize)

		variance := float32(0)
		for i := 0; i < sliceSize; i++ {
			diff := x.Data[offset+i] - mean
			variance += diff * diff
		}
		variance /= float32(sliceSize)

		invStd := float32(1.0 / math.Sqrt(float64(variance+ln.Eps)))

		for i := 0; i < sliceSize; i++ {
			xNorm := (x.Data[offset+i] - mean) * invStd
			result.Data[offset+i] = xNorm*ln.Scale.Data[i] + ln.Shift.Data[i]
		}
	}

	return result, nil
}
