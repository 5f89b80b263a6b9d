// Package attention implements the attention machinery of the
// encoder-decoder transformer:
//   - ScaledDotProduct: the core similarity-weighted value mixing
//   - CausalMask / PaddingMask / ExpandMask: mask construction
//   - MultiHeadAttention: parallel heads over a combined QKV projection
//   - EncoderBlock / DecoderBlock: residual blocks built on the above
package attention

import (
	"fmt"
	"math"

	"seq2seq/pkg/tensor"
)

// ScaledDotProduct computes attention over query, key and value tensors whose
// trailing two axes are (seq, head_dim); any leading batch or head axes are
// carried through unchanged, so the same call serves a single sequence, a
// batch, or a batch split into heads.
//
// Steps:
//  1. logits = query @ key^T / sqrt(d_k)
//  2. positions where mask == 0 are filled with -inf
//  3. weights = softmax(logits) along the key axis
//  4. output = weights @ value
//
// mask may be nil (no masking) or any tensor broadcastable to the logits
// shape (..., query_len, key_len). Both the output (..., query_len, head_dim)
// and the weights (..., query_len, key_len) are returned. A query row whose
// positions are all blocked softmaxes to NaN; callers must leave at least one
// position visible per query.
func ScaledDotProduct(query, key, value, mask *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor, error) {
	if query.NumDims() < 2 || key.NumDims() < 2 || value.NumDims() < 2 {
		return nil, nil, &tensor.ShapeError{
			Op: "scaled dot-product attention",
			Msg: fmt.Sprintf("query, key and value must be at least 2D, got shapes %v, %v and %v",
				query.Shape, key.Shape, value.Shape),
		}
	}

	dK := query.Shape[query.NumDims()-1]
	if key.Shape[key.NumDims()-1] != dK {
		return nil, nil, &tensor.ShapeError{
			Op: "scaled dot-product attention",
			Msg: fmt.Sprintf("query feature dimension %d does not match key feature dimension %d",
				dK, key.Shape[key.NumDims()-1]),
		}
	}
	if key.Shape[key.NumDims()-2] != value.Shape[value.NumDims()-2] {
		return nil, nil, &tensor.ShapeError{
			Op: "scaled dot-product attention",
			Msg: fmt.Sprintf("key sequence length %d does not match value sequence length %d",
				key.Shape[key.NumDims()-2], value.Shape[value.NumDims()-2]),
		}
	}

	// logits: (..., query_len, key_len)
	keyT, err := key.Transpose(key.NumDims()-2, key.NumDims()-1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to transpose key: %w", err)
	}
	logits, err := tensor.Matmul(query, keyT)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute attention logits: %w", err)
	}
	logits = logits.Scale(float32(1.0 / math.Sqrt(float64(dK))))

	if mask != nil {
		logits, err = tensor.MaskedFill(logits, mask, float32(math.Inf(-1)))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to apply attention mask: %w", err)
		}
	}

	weights, err := tensor.Softmax(logits, logits.NumDims()-1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply softmax: %w", err)
	}

	output, err := tensor.Matmul(weights, value)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute attention output: %w", err)
	}

	return output, weights, nil
}
