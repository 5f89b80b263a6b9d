package model

import (
	"fmt"
	"math/rand"

	"seq2seq/pkg/tensor"
)

// FeedForward implements the position-wise feed-forward network applied
// inside every encoder and decoder block.
//
// Architecture:
//  1. Linear projection: x @ FC1 + B1 -> (batch, seq, ffn_dim)
//  2. ReLU activation (GELU when configured)
//  3. Linear projection: @ FC2 + B2 -> (batch, seq, embed_dim)
type FeedForward struct {
	FC1     *tensor.Tensor // (embed_dim, ffn_dim)
	FC2     *tensor.Tensor // (ffn_dim, embed_dim)
	B1      *tensor.Tensor // (ffn_dim,)
	B2      *tensor.Tensor // (embed_dim,)
	UseGELU bool
}

// NewFeedForward creates a feed-forward layer with Xavier-uniform weights
// and zero biases.
func NewFeedForward(embDim, ffnDim int, useGELU bool, rng *rand.Rand) *FeedForward {
	ff := &FeedForward{
		FC1:     tensor.NewTensor([]int{embDim, ffnDim}),
		FC2:     tensor.NewTensor([]int{ffnDim, embDim}),
		B1:      tensor.NewTensor([]int{ffnDim}),
		B2:      tensor.NewTensor([]int{embDim}),
		UseGELU: useGELU,
	}
	tensor.XavierUniform(ff.FC1, rng)
	tensor.XavierUniform(ff.FC2, rng)
	return ff
}

// Forward computes the feed-forward transformation.
//
// Input shape: (batch, seq, embed_dim)
// Output shape: (batch, seq, embed_dim)
func (ff *FeedForward) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Shape) < 2 {
		return nil, fmt.Errorf("expected at least 2D input, got %dD", len(x.Shape))
	}

	lastDim := x.Shape[len(x.Shape)-1]
	if lastDim != ff.FC1.Shape[0] {
		return nil, fmt.Errorf("input dimension %d doesn't match FC1 input dimension %d",
			lastDim, ff.FC1.Shape[0])
	}

	// x: (batch, seq, embed_dim) @ FC1: (embed_dim, ffn_dim) -> (batch, seq, ffn_dim)
	hidden, err := tensor.Matmul(x, ff.FC1)
	if err != nil {
		return nil, fmt.Errorf("failed to compute FC1 projection: %w", err)
	}
	hidden, err = tensor.Add(hidden, ff.B1)
	if err != nil {
		return nil, fmt.Errorf("failed to add FC1 bias: %w", err)
	}

	var activated *tensor.Tensor
	if ff.UseGELU {
		activated = hidden.GELU()
	} else {
		activated = hidden.ReLU()
	}

	// activated: (batch, seq, ffn_dim) @ FC2: (ffn_dim, embed_dim) -> (batch, seq, embed_dim)
	output, err := tensor.Matmul(activated, ff.FC2)
	if err != nil {
		return nil, fmt.Errorf("failed to compute FC2 projection: %w", err)
	}
	output, err = tensor.Add(output, ff.B2)
	if err != nil {
		return nil, fmt.Errorf("failed to add FC2 bias: %w", err)
	}

	return output, nil
}
