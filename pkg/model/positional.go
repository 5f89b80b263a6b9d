// This file implements the fixed sinusoidal positional encoding added to the
// token embeddings before the encoder and decoder stacks.
//
// Positions are encoded with interleaved sine and cosine waves of
// geometrically increasing wavelength:
//
//	pe[pos, 2i]   = sin(pos / 10000^(2i/embed_dim))
//	pe[pos, 2i+1] = cos(pos / 10000^(2i/embed_dim))
//
// The table is computed once at construction for every position up to the
// maximum sequence length and reused for all forward passes.

package model

import (
	"fmt"
	"math"

	"seq2seq/pkg/model/attention"
	"seq2seq/pkg/tensor"
)

// PositionalEncoding holds the precomputed sinusoidal position table.
// It has no learned parameters.
type PositionalEncoding struct {
	Table     *tensor.Tensor // (max_seq_len, embed_dim)
	MaxSeqLen int
	EmbedDim  int
}

// NewPositionalEncoding precomputes the position table for all positions in
// [0, maxSeqLen).
func NewPositionalEncoding(embDim, maxSeqLen int) (*PositionalEncoding, error) {
	if embDim <= 0 {
		return nil, &attention.ConfigError{Field: "EmbedDim", Msg: fmt.Sprintf("must be positive, got %d", embDim)}
	}
	if maxSeqLen <= 0 {
		return nil, &attention.ConfigError{Field: "MaxSeqLen", Msg: fmt.Sprintf("must be positive, got %d", maxSeqLen)}
	}

	table := tensor.NewTensor([]int{maxSeqLen, embDim})
	for pos := 0; pos < maxSeqLen; pos++ {
		base := pos * embDim
		for i := 0; i < embDim; i += 2 {
			// 1 / 10000^(i/embed_dim), computed in log space
			freq := math.Exp(-math.Log(10000.0) * float64(i) / float64(embDim))
			angle := float64(pos) * freq

			table.Data[base+i] = float32(math.Sin(angle))
			if i+1 < embDim {
				table.Data[base+i+1] = float32(math.Cos(angle))
			}
		}
	}

	return &PositionalEncoding{
		Table:     table,
		MaxSeqLen: maxSeqLen,
		EmbedDim:  embDim,
	}, nil
}

// Forward adds the position rows for positions [0, seq) to x.
//
// Input shape: (batch, seq, embed_dim) with seq <= MaxSeqLen
// Output shape: same as input
func (pe *PositionalEncoding) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if x.NumDims() != 3 {
		return nil, &tensor.ShapeError{
			Op:  "positional encoding",
			Msg: fmt.Sprintf("expected 3D input (batch, seq, embed_dim), got shape %v", x.Shape),
		}
	}
	if x.Shape[2] != pe.EmbedDim {
		return nil, &tensor.ShapeError{
			Op:  "positional encoding",
			Msg: fmt.Sprintf("embedding dimension %d does not match table dimension %d", x.Shape[2], pe.EmbedDim),
		}
	}
	seqLen := x.Shape[1]
	if seqLen > pe.MaxSeqLen {
		return nil, &tensor.ShapeError{
			Op:  "positional encoding",
			Msg: fmt.Sprintf("sequence length %d exceeds maximum %d", seqLen, pe.MaxSeqLen),
		}
	}

	rows, err := pe.Table.SliceN([]int{0, 0}, []int{seqLen, pe.EmbedDim})
	if err != nil {
		return nil, fmt.Errorf("failed to slice position table: %w", err)
	}

	// (batch, seq, embed_dim) + (seq, embed_dim) broadcasts over the batch.
	output, err := tensor.Add(x, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to add positional encoding: %w", err)
	}
	return output, nil
}

// Row returns a copy of the encoding for a single position.
// Useful for debugging and testing.
func (pe *PositionalEncoding) Row(pos int) []float32 {
	start := pos * pe.EmbedDim
	result := make([]float32, pe.EmbedDim)
	copy(result, pe.Table.Data[start:start+pe.EmbedDim])
	return result
}
