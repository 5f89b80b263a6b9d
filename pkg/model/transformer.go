package model

import (
	"fmt"
	"math/rand"

	"seq2seq/pkg/model/attention"
	"seq2seq/pkg/tensor"
)

// Transformer implements the complete encoder-decoder model.
//
// Architecture:
//  1. Shared token embedding, scaled by sqrt(embed_dim)
//  2. Sinusoidal positional encoding, with dropout in training mode
//  3. Encoder stack over the source sequence
//  4. Decoder stack over the right-shifted target sequence, with causal
//     self-attention and cross-attention into the encoder output
//  5. Vocabulary projection through the embedding table (weight tying)
//
// Source and target share one vocabulary and one embedding table. The output
// projection multiplies against that same table storage rather than a copy,
// so the model has no separate output weight matrix.
type Transformer struct {
	Config   Config
	Embed    *Embedding
	PosEnc   *PositionalEncoding
	Encoder  *Encoder
	Decoder  *Decoder
	Training bool
}

// NewTransformer creates a transformer from the given configuration. All
// parameters are initialized from a rand source seeded with Config.Seed, so
// equal configs produce identical models.
func NewTransformer(config Config) (*Transformer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(config.Seed))

	embed, err := NewEmbedding(config.VocabSize, config.EmbedDim, rng)
	if err != nil {
		return nil, err
	}
	posEnc, err := NewPositionalEncoding(config.EmbedDim, config.MaxSeqLen)
	if err != nil {
		return nil, err
	}

	encLayers := make([]EncoderLayer, config.NumEncoderLayers)
	for i := range encLayers {
		block, err := newEncoderBlock(config, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to build encoder layer %d: %w", i, err)
		}
		encLayers[i] = block
	}

	decLayers := make([]DecoderLayer, config.NumDecoderLayers)
	for i := range decLayers {
		block, err := newDecoderBlock(config, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to build decoder layer %d: %w", i, err)
		}
		decLayers[i] = block
	}

	return &Transformer{
		Config:   config,
		Embed:    embed,
		PosEnc:   posEnc,
		Encoder:  NewEncoder(encLayers...),
		Decoder:  NewDecoder(decLayers...),
		Training: false,
	}, nil
}

func newEncoderBlock(config Config, rng *rand.Rand) (*attention.EncoderBlock, error) {
	selfAttn, err := attention.NewMultiHeadAttention(attentionConfig(config), rng)
	if err != nil {
		return nil, err
	}
	ff := NewFeedForward(config.EmbedDim, config.FFNDim, config.UseGELU, rng)
	return attention.NewEncoderBlock(
		selfAttn,
		ff,
		NewLayerNorm(config.EmbedDim, 1e-5),
		NewLayerNorm(config.EmbedDim, 1e-5),
		config.Dropout,
	), nil
}

func newDecoderBlock(config Config, rng *rand.Rand) (*attention.DecoderBlock, error) {
	selfAttn, err := attention.NewMultiHeadAttention(attentionConfig(config), rng)
	if err != nil {
		return nil, err
	}
	crossAttn, err := attention.NewMultiHeadAttention(attentionConfig(config), rng)
	if err != nil {
		return nil, err
	}
	ff := NewFeedForward(config.EmbedDim, config.FFNDim, config.UseGELU, rng)
	return attention.NewDecoderBlock(
		selfAttn,
		crossAttn,
		ff,
		NewLayerNorm(config.EmbedDim, 1e-5),
		NewLayerNorm(config.EmbedDim, 1e-5),
		NewLayerNorm(config.EmbedDim, 1e-5),
		config.Dropout,
	), nil
}

func attentionConfig(config Config) attention.Config {
	return attention.Config{
		EmbedDim: config.EmbedDim,
		NumHeads: config.NumHeads,
		UseBias:  config.UseBias,
	}
}

// SetTraining sets the training mode for the model.
// When training=false, dropout is disabled everywhere.
func (t *Transformer) SetTraining(training bool) {
	t.Training = training
}

// Forward runs a source/target batch through the model and returns logits.
//
// Input shapes:
//   - src: (batch, src_seq) source token ids
//   - tgt: (batch, tgt_seq) target token ids, unshifted; the model prepends
//     the BOS token and drops the last position internally, so the logits at
//     position i are predictions for tgt position i
//
// Output shape: (batch, tgt_seq, vocab_size)
//
// Steps:
//  1. encoded = Encode(src, nil)
//  2. shifted = ShiftRight(tgt)
//  3. logits = Decode(shifted, encoded)
func (t *Transformer) Forward(src, tgt *tensor.Tensor) (*tensor.Tensor, error) {
	encoded, err := t.Encode(src, nil)
	if err != nil {
		return nil, err
	}

	shifted, err := t.ShiftRight(tgt)
	if err != nil {
		return nil, err
	}

	return t.Decode(shifted, encoded)
}

// Encode embeds the source ids and runs the encoder stack.
//
// srcMask may be nil or e.g. a PaddingMask blocking attention into padded
// positions.
//
// Input shape: (batch, src_seq)
// Output shape: (batch, src_seq, embed_dim)
func (t *Transformer) Encode(src, srcMask *tensor.Tensor) (*tensor.Tensor, error) {
	x, err := t.embed(src, t.Training)
	if err != nil {
		return nil, fmt.Errorf("failed to embed source: %w", err)
	}

	encoded, err := t.Encoder.Forward(x, srcMask, t.Training)
	if err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}
	return encoded, nil
}

// Decode embeds already-shifted target ids, runs the decoder stack against
// the encoder output under a causal mask, and projects the result to
// vocabulary logits through the embedding table.
//
// Input shapes:
//   - tgt: (batch, tgt_seq) shifted target ids
//   - encOutput: (batch, src_seq, embed_dim)
//
// Output shape: (batch, tgt_seq, vocab_size)
func (t *Transformer) Decode(tgt, encOutput *tensor.Tensor) (*tensor.Tensor, error) {
	x, err := t.embed(tgt, t.Training)
	if err != nil {
		return nil, fmt.Errorf("failed to embed target: %w", err)
	}

	mask := attention.CausalMask(tgt.Shape[1])
	x, err = t.Decoder.Forward(x, encOutput, mask, t.Training)
	if err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}

	// Tied projection: the embedding table doubles as the output matrix,
	// (batch, tgt_seq, embed_dim) @ (vocab, embed_dim)^T -> (batch, tgt_seq, vocab).
	logits, err := tensor.MatmulTransposed(x, t.Embed.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to compute output logits: %w", err)
	}
	return logits, nil
}

// ShiftRight prepends the BOS token to each target sequence and drops the
// final position, keeping the length unchanged: position i of the result
// holds token i-1 of the input.
//
// Input shape: (batch, seq)
// Output shape: (batch, seq)
func (t *Transformer) ShiftRight(tgt *tensor.Tensor) (*tensor.Tensor, error) {
	if tgt.NumDims() != 2 {
		return nil, &tensor.ShapeError{
			Op:  "shift right",
			Msg: fmt.Sprintf("expected 2D token ids (batch, seq), got shape %v", tgt.Shape),
		}
	}

	batch, seqLen := tgt.Shape[0], tgt.Shape[1]
	result := tensor.NewTensor([]int{batch, seqLen})
	for b := 0; b < batch; b++ {
		result.Data[b*seqLen] = float32(t.Config.BOSTokenID)
		copy(result.Data[b*seqLen+1:(b+1)*seqLen], tgt.Data[b*seqLen:b*seqLen+seqLen-1])
	}
	return result, nil
}

// AttentionMaps returns every encoder layer's self-attention weights for the
// given source batch, computed without dropout.
func (t *Transformer) AttentionMaps(src *tensor.Tensor) ([]*tensor.Tensor, error) {
	x, err := t.embed(src, false)
	if err != nil {
		return nil, fmt.Errorf("failed to embed source: %w", err)
	}
	return t.Encoder.AttentionMaps(x, nil)
}

// embed turns token ids into position-aware embeddings: scaled lookup,
// positional encoding, then dropout when training.
func (t *Transformer) embed(ids *tensor.Tensor, training bool) (*tensor.Tensor, error) {
	x, err := t.Embed.Forward(ids)
	if err != nil {
		return nil, err
	}
	x, err = t.PosEnc.Forward(x)
	if err != nil {
		return nil, err
	}
	if t.Config.Dropout > 0 {
		x = x.Dropout(t.Config.Dropout, training)
	}
	return x, nil
}
