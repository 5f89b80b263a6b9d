package model

import (
	"fmt"

	"seq2seq/pkg/tensor"
)

// DecoderLayer is the interface a block must satisfy to sit in the decoder
// stack. attention.DecoderBlock is the standard implementation.
type DecoderLayer interface {
	Forward(x, encOutput, mask *tensor.Tensor, training bool) (*tensor.Tensor, error)
}

// Decoder applies a stack of decoder layers in order. Every layer receives
// the same encoder output for cross-attention.
type Decoder struct {
	Layers []DecoderLayer
}

// NewDecoder creates a decoder stack from the given layers.
func NewDecoder(layers ...DecoderLayer) *Decoder {
	return &Decoder{Layers: layers}
}

// Forward threads x through every layer. With zero layers the input is
// returned unchanged.
//
// Input shapes:
//   - x: (batch, tgt_seq, embed_dim)
//   - encOutput: (batch, src_seq, embed_dim)
//   - mask: nil, or a mask gating self-attention in every layer
//
// Output shape: (batch, tgt_seq, embed_dim)
func (d *Decoder) Forward(x, encOutput, mask *tensor.Tensor, training bool) (*tensor.Tensor, error) {
	var err error
	for i, layer := range d.Layers {
		x, err = layer.Forward(x, encOutput, mask, training)
		if err != nil {
			return nil, fmt.Errorf("failed in decoder layer %d: %w", i, err)
		}
	}
	return x, nil
}
