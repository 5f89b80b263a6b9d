package tensor

import "math"

// ReLU applies the rectified linear unit activation element-wise:
// ReLU(x) = max(0, x).
//
// Input: tensor of any shape
// Output: tensor of the same shape with ReLU applied element-wise
func (t *Tensor) ReLU() *Tensor {
	result := NewTensor(t.Shape)
	for i, x := range t.Data {
		if x > 0 {
			result.Data[i] = x
		}
	}
	return result
}

// ReLU is a standalone function that applies ReLU to a tensor.
// This is a convenience wrapper around the Tensor.ReLU method.
func ReLU(t *Tensor) *Tensor {
	return t.ReLU()
}

// GELU applies the Gaussian Error Linear Unit activation function.
//
// The GELU function is defined as:
//
//	GELU(x) = 0.5 * x * (1 + tanh(sqrt(2/π) * (x + 0.044715 * x^3)))
//
// This is the tanh approximation from the original paper and is more
// efficient to compute than the exact GELU formulation.
//
// Reference: https://arxiv.org/abs/1606.08415
//
// Input: tensor of any shape
// Output: tensor of the same shape with GELU applied element-wise
func (t *Tensor) GELU() *Tensor {
	result := NewTensor(t.Shape)

	// GELU approximation constants
	const (
		sqrt2OverPi = 0.7978845608 // sqrt(2/π)
		coeff       = 0.044715
	)

	for i := range t.Data {
		x := t.Data[i]
		x3 := x * x * x
		inner := x + coeff*x3
		tanhVal := float32(math.Tanh(float64(sqrt2OverPi * inner)))
		result.Data[i] = 0.5 * x * (1 + tanhVal)
	}

	return result
}

// GELU is a standalone function that applies GELU to a tensor.
// This is a convenience wrapper around the Tensor.GELU method.
func GELU(t *Tensor) *Tensor {
	return t.GELU()
}
