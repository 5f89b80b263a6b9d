// Package model assembles the encoder-decoder transformer: token embedding
// with sinusoidal positional encoding, the encoder and decoder stacks, and
// the tied vocabulary projection that turns decoder states into logits.
//
// Key properties:
//   - LayerNorm with scale (gamma) and shift (beta), applied post-residual
//   - Multi-head attention over a combined QKV projection
//   - Fixed sinusoidal positional encoding (not learned)
//   - Output projection shares the token embedding table (weight tying)
package model

import (
	"fmt"

	"seq2seq/pkg/model/attention"
)

// Config holds the model hyperparameters for the encoder-decoder transformer.
type Config struct {
	// VocabSize is the size of the shared source/target token vocabulary
	VocabSize int

	// MaxSeqLen is the maximum sequence length the model can process
	MaxSeqLen int

	// EmbedDim is the dimension of token embeddings and all hidden states
	EmbedDim int

	// NumHeads is the number of attention heads; must divide EmbedDim
	NumHeads int

	// NumEncoderLayers is the number of encoder blocks
	NumEncoderLayers int

	// NumDecoderLayers is the number of decoder blocks
	NumDecoderLayers int

	// FFNDim is the hidden dimension of the position-wise feed-forward layers
	FFNDim int

	// Dropout is the dropout rate applied inside blocks and after the
	// positional encoding (active only in training mode)
	Dropout float32

	// UseBias adds bias terms to the attention projections
	UseBias bool

	// UseGELU selects GELU instead of ReLU in the feed-forward layers
	UseGELU bool

	// BOSTokenID is the begin-of-sequence token prepended when target
	// sequences are shifted right
	BOSTokenID int

	// Seed drives parameter initialization; the same seed yields the same
	// parameters
	Seed int64
}

// DefaultConfig returns the base configuration: a 512-dimensional model with
// 8 heads and 6 layers per stack.
func DefaultConfig(vocabSize int) Config {
	return Config{
		VocabSize:        vocabSize,
		MaxSeqLen:        512,
		EmbedDim:         512,
		NumHeads:         8,
		NumEncoderLayers: 6,
		NumDecoderLayers: 6,
		FFNDim:           2048,
		Dropout:          0.1,
		UseBias:          true,
		BOSTokenID:       1,
		Seed:             42,
	}
}

// SmallConfig returns a scaled-down configuration suitable for tests and
// CPU experiments.
func SmallConfig(vocabSize int) Config {
	return Config{
		VocabSize:        vocabSize,
		MaxSeqLen:        128,
		EmbedDim:         64,
		NumHeads:         4,
		NumEncoderLayers: 2,
		NumDecoderLayers: 2,
		FFNDim:           256,
		Dropout:          0.1,
		UseBias:          true,
		BOSTokenID:       1,
		Seed:             42,
	}
}

// Validate checks if the configuration is valid and consistent.
// Returns a ConfigError describing the first incompatible parameter.
func (c Config) Validate() error {
	if c.VocabSize <= 0 {
		return &attention.ConfigError{Field: "VocabSize", Msg: fmt.Sprintf("must be positive, got %d", c.VocabSize)}
	}
	if c.MaxSeqLen <= 0 {
		return &attention.ConfigError{Field: "MaxSeqLen", Msg: fmt.Sprintf("must be positive, got %d", c.MaxSeqLen)}
	}
	if c.EmbedDim <= 0 {
		return &attention.ConfigError{Field: "EmbedDim", Msg: fmt.Sprintf("must be positive, got %d", c.EmbedDim)}
	}
	if c.NumHeads <= 0 {
		return &attention.ConfigError{Field: "NumHeads", Msg: fmt.Sprintf("must be positive, got %d", c.NumHeads)}
	}
	if c.EmbedDim%c.NumHeads != 0 {
		return &attention.ConfigError{
			Field: "NumHeads",
			Msg:   fmt.Sprintf("embedding dimension %d is not divisible by %d heads", c.EmbedDim, c.NumHeads),
		}
	}
	if c.NumEncoderLayers < 0 || c.NumDecoderLayers < 0 {
		return &attention.ConfigError{
			Field: "NumEncoderLayers",
			Msg: fmt.Sprintf("layer counts must be non-negative, got %d encoder and %d decoder",
				c.NumEncoderLayers, c.NumDecoderLayers),
		}
	}
	if c.FFNDim <= 0 {
		return &attention.ConfigError{Field: "FFNDim", Msg: fmt.Sprintf("must be positive, got %d", c.FFNDim)}
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return &attention.ConfigError{Field: "Dropout", Msg: fmt.Sprintf("must be in [0, 1), got %g", c.Dropout)}
	}
	if c.BOSTokenID < 0 || c.BOSTokenID >= c.VocabSize {
		return &attention.ConfigError{
			Field: "BOSTokenID",
			Msg:   fmt.Sprintf("token id %d outside vocabulary of size %d", c.BOSTokenID, c.VocabSize),
		}
	}
	return nil
}

// HeadDimension returns the dimension per attention head.
func (c Config) HeadDimension() int {
	return c.EmbedDim / c.NumHeads
}
