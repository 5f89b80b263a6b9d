package attention

import (
	"fmt"

	"seq2seq/pkg/tensor"
)

// FeedForward is an interface for position-wise feed-forward layers.
type FeedForward interface {
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)
}

// LayerNorm is an interface for layer normalization.
type LayerNorm interface {
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)
}

// EncoderBlock is a single encoder layer.
//
// Architecture (post-norm, per block):
//  1. x = Norm1(x + Dropout(SelfAttn(x, mask)))
//  2. x = Norm2(x + Dropout(FF(x)))
//
// Normalization runs after each residual sum, following the original
// encoder-decoder formulation.
type EncoderBlock struct {
	SelfAttn *MultiHeadAttention
	FF       FeedForward
	Norm1    LayerNorm // after attention residual
	Norm2    LayerNorm // after feed-forward residual
	Dropout  float32
}

// NewEncoderBlock assembles an encoder block from its sublayers.
func NewEncoderBlock(attn *MultiHeadAttention, ff FeedForward, norm1, norm2 LayerNorm, dropout float32) *EncoderBlock {
	return &EncoderBlock{
		SelfAttn: attn,
		FF:       ff,
		Norm1:    norm1,
		Norm2:    norm2,
		Dropout:  dropout,
	}
}

// Forward computes one encoder block.
//
// Input shapes:
//   - x: (batch, seq, embed_dim)
//   - mask: nil, or a mask of rank 2 to 4 gating self-attention
//   - training: if true, apply dropout
//
// Output shape: (batch, seq, embed_dim)
func (b *EncoderBlock) Forward(x, mask *tensor.Tensor, training bool) (*tensor.Tensor, error) {
	output, _, err := b.forward(x, mask, training)
	return output, err
}

// ForwardWithWeights is Forward but additionally returns the self-attention
// weights with shape (batch, heads, seq, seq).
func (b *EncoderBlock) ForwardWithWeights(x, mask *tensor.Tensor, training bool) (*tensor.Tensor, *tensor.Tensor, error) {
	return b.forward(x, mask, training)
}

func (b *EncoderBlock) forward(x, mask *tensor.Tensor, training bool) (*tensor.Tensor, *tensor.Tensor, error) {
	// Attention sublayer: x = Norm1(x + Dropout(SelfAttn(x)))
	attnOut, weights, err := b.SelfAttn.ForwardWithWeights(x, mask)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute self-attention: %w", err)
	}
	if b.Dropout > 0 && training {
		attnOut = attnOut.Dropout(b.Dropout, training)
	}
	x, err = tensor.Add(x, attnOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add attention residual: %w", err)
	}
	x, err = b.Norm1.Forward(x)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply Norm1: %w", err)
	}

	// Feed-forward sublayer: x = Norm2(x + Dropout(FF(x)))
	ffOut, err := b.FF.Forward(x)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute feed-forward: %w", err)
	}
	if b.Dropout > 0 && training {
		ffOut = ffOut.Dropout(b.Dropout, training)
	}
	x, err = tensor.Add(x, ffOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add feed-forward residual: %w", err)
	}
	output, err := b.Norm2.Forward(x)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply Norm2: %w", err)
	}

	return output, weights, nil
}

// DecoderBlock is a single decoder layer.
//
// Architecture (post-norm, per block):
//  1. x = Norm1(x + Dropout(SelfAttn(x, mask)))
//  2. x = Norm2(x + Dropout(CrossAttn(x, encOutput)))
//  3. x = Norm3(x + Dropout(FF(x)))
//
// The mask gates self-attention only; cross-attention reads the full encoder
// output. Cross-attention projects its queries from the decoder state and
// its keys and values from encOutput through the same combined matrix.
type DecoderBlock struct {
	SelfAttn  *MultiHeadAttention
	CrossAttn *MultiHeadAttention
	FF        FeedForward
	Norm1     LayerNorm // after self-attention residual
	Norm2     LayerNorm // after cross-attention residual
	Norm3     LayerNorm // after feed-forward residual
	Dropout   float32
}

// NewDecoderBlock assembles a decoder block from its sublayers.
func NewDecoderBlock(selfAttn, crossAttn *MultiHeadAttention, ff FeedForward, norm1, norm2, norm3 LayerNorm, dropout float32) *DecoderBlock {
	return &DecoderBlock{
		SelfAttn:  selfAttn,
		CrossAttn: crossAttn,
		FF:        ff,
		Norm1:     norm1,
		Norm2:     norm2,
		Norm3:     norm3,
		Dropout:   dropout,
	}
}

// Forward computes one decoder block.
//
// Input shapes:
//   - x: (batch, tgt_seq, embed_dim)
//   - encOutput: (batch, src_seq, embed_dim)
//   - mask: nil, or a mask of rank 2 to 4 gating self-attention
//   - training: if true, apply dropout
//
// Output shape: (batch, tgt_seq, embed_dim)
func (b *DecoderBlock) Forward(x, encOutput, mask *tensor.Tensor, training bool) (*tensor.Tensor, error) {
	// Self-attention sublayer: x = Norm1(x + Dropout(SelfAttn(x, mask)))
	attnOut, err := b.SelfAttn.Forward(x, mask)
	if err != nil {
		return nil, fmt.Errorf("failed to compute self-attention: %w", err)
	}
	if b.Dropout > 0 && training {
		attnOut = attnOut.Dropout(b.Dropout, training)
	}
	x, err = tensor.Add(x, attnOut)
	if err != nil {
		return nil, fmt.Errorf("failed to add self-attention residual: %w", err)
	}
	x, err = b.Norm1.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("failed to apply Norm1: %w", err)
	}

	// Cross-attention sublayer: x = Norm2(x + Dropout(CrossAttn(x, encOutput)))
	crossOut, err := b.CrossAttn.ForwardKV(x, encOutput, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compute cross-attention: %w", err)
	}
	if b.Dropout > 0 && training {
		crossOut = crossOut.Dropout(b.Dropout, training)
	}
	x, err = tensor.Add(x, crossOut)
	if err != nil {
		return nil, fmt.Errorf("failed to add cross-attention residual: %w", err)
	}
	x, err = b.Norm2.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("failed to apply Norm2: %w", err)
	}

	// Feed-forward sublayer: x = Norm3(x + Dropout(FF(x)))
	ffOut, err := b.FF.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("failed to compute feed-forward: %w", err)
	}
	if b.Dropout > 0 && training {
		ffOut = ffOut.Dropout(b.Dropout, training)
	}
	x, err = tensor.Add(x, ffOut)
	if err != nil {
		return nil, fmt.Errorf("failed to add feed-forward residual: %w", err)
	}
	output, err := b.Norm3.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("failed to apply Norm3: %w", err)
	}

	return output, nil
}
