package model

import (
	"fmt"

	"seq2seq/pkg/tensor"
)

// EncoderLayer is the interface a block must satisfy to sit in the encoder
// stack. attention.EncoderBlock is the standard implementation.
type EncoderLayer interface {
	Forward(x, mask *tensor.Tensor, training bool) (*tensor.Tensor, error)
	ForwardWithWeights(x, mask *tensor.Tensor, training bool) (*tensor.Tensor, *tensor.Tensor, error)
}

// Encoder applies a stack of encoder layers in order. The layers are
// independent: each holds its own parameters.
type Encoder struct {
	Layers []EncoderLayer
}

// NewEncoder creates an encoder stack from the given layers.
func NewEncoder(layers ...EncoderLayer) *Encoder {
	return &Encoder{Layers: layers}
}

// Forward threads x through every layer. With zero layers the input is
// returned unchanged.
//
// Input shapes:
//   - x: (batch, seq, embed_dim)
//   - mask: nil, or a mask gating self-attention in every layer
//
// Output shape: (batch, seq, embed_dim)
func (e *Encoder) Forward(x, mask *tensor.Tensor, training bool) (*tensor.Tensor, error) {
	var err error
	for i, layer := range e.Layers {
		x, err = layer.Forward(x, mask, training)
		if err != nil {
			return nil, fmt.Errorf("failed in encoder layer %d: %w", i, err)
		}
	}
	return x, nil
}

// AttentionMaps runs the stack in inference mode and collects every layer's
// self-attention weights, one (batch, heads, seq, seq) tensor per layer.
func (e *Encoder) AttentionMaps(x, mask *tensor.Tensor) ([]*tensor.Tensor, error) {
	maps := make([]*tensor.Tensor, 0, len(e.Layers))
	for i, layer := range e.Layers {
		out, weights, err := layer.ForwardWithWeights(x, mask, false)
		if err != nil {
			return nil, fmt.Errorf("failed in encoder layer %d: %w", i, err)
		}
		maps = append(maps, weights)
		x = out
	}
	return maps, nil
}
