package attention

import (
	"fmt"

	"seq2seq/pkg/tensor"
)

// Masks use 1 for positions that may be attended to and 0 for blocked
// positions. Scaled dot-product attention fills the logits of blocked
// positions with -inf before the softmax, so they receive zero weight.

// CausalMask returns a (seqLen, seqLen) mask whose entry (i, j) is 1 when
// j <= i: each position sees itself and everything before it, nothing after.
func CausalMask(seqLen int) *tensor.Tensor {
	mask := tensor.NewTensor([]int{seqLen, seqLen})
	for i := 0; i < seqLen; i++ {
		for j := 0; j <= i; j++ {
			mask.Data[i*seqLen+j] = 1
		}
	}
	return mask
}

// PaddingMask builds a (batch, queryLen, srcLen) mask from a 2D tensor of
// token ids: entry (b, q, j) is 1 when ids[b][j] != padID, so no query
// position attends to padding.
func PaddingMask(ids *tensor.Tensor, padID, queryLen int) (*tensor.Tensor, error) {
	if ids.NumDims() != 2 {
		return nil, &tensor.ShapeError{
			Op:  "padding mask",
			Msg: fmt.Sprintf("token ids must be 2D (batch, seq), got shape %v", ids.Shape),
		}
	}

	batch, srcLen := ids.Shape[0], ids.Shape[1]
	mask := tensor.NewTensor([]int{batch, queryLen, srcLen})
	for b := 0; b < batch; b++ {
		for j := 0; j < srcLen; j++ {
			if int(ids.Data[b*srcLen+j]) == padID {
				continue
			}
			for q := 0; q < queryLen; q++ {
				mask.Data[(b*queryLen+q)*srcLen+j] = 1
			}
		}
	}
	return mask, nil
}

// ExpandMask normalizes a mask to the rank-4 (batch, heads, query, key)
// layout of the attention logits. A 2D (query, key) mask gains batch and
// head axes of size 1, a 3D (batch, query, key) mask gains a head axis,
// and a 4D mask passes through unchanged. Any other rank is rejected.
func ExpandMask(mask *tensor.Tensor) (*tensor.Tensor, error) {
	switch mask.NumDims() {
	case 2:
		return mask.View([]int{1, 1, mask.Shape[0], mask.Shape[1]})
	case 3:
		return mask.View([]int{mask.Shape[0], 1, mask.Shape[1], mask.Shape[2]})
	case 4:
		return mask, nil
	default:
		return nil, &tensor.ShapeError{
			Op:  "expand mask",
			Msg: fmt.Sprintf("mask must have 2 to 4 dimensions, got shape %v", mask.Shape),
		}
	}
}
