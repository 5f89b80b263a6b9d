package model

import (
	"fmt"
	"math"

	"seq2seq/pkg/tensor"
)

// Translate greedily decodes a target sequence for a single source sequence.
//
// The source is encoded once. Decoding starts from the BOS token and feeds
// the growing target back through the decoder each step, appending the
// argmax token until eosID is produced, maxNewTokens have been generated,
// or the target reaches the model's maximum sequence length.
//
// Parameters:
//   - model: the transformer to decode with
//   - src: source token ids, shape (1, src_seq)
//   - maxNewTokens: upper bound on generated tokens
//   - eosID: token id that ends decoding (not included in the result)
//
// Returns:
//   - Generated token ids, shape (1, n) with n <= maxNewTokens, without the
//     leading BOS token
func Translate(model *Transformer, src *tensor.Tensor, maxNewTokens, eosID int) (*tensor.Tensor, error) {
	if len(src.Shape) != 2 {
		return nil, fmt.Errorf("expected 2D input (batch, seq), got %dD with shape %v", len(src.Shape), src.Shape)
	}
	if src.Shape[0] != 1 {
		return nil, fmt.Errorf("greedy translation decodes one sequence at a time, got batch size %d", src.Shape[0])
	}

	// Ensure we're in inference mode
	wasTraining := model.Training
	model.SetTraining(false)
	defer model.SetTraining(wasTraining)

	// Step 1: Encode the source once; every decode step reuses it.
	encoded, err := model.Encode(src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encode source: %w", err)
	}

	// Step 2: Start the target from the BOS token.
	out := tensor.NewTensor([]int{1, 1})
	out.Data[0] = float32(model.Config.BOSTokenID)

	for i := 0; i < maxNewTokens; i++ {
		if out.Shape[1] >= model.Config.MaxSeqLen {
			break
		}

		// Step 3: Get predictions for the current target prefix.
		// logits shape: (1, tgt_seq, vocab_size)
		logits, err := model.Decode(out, encoded)
		if err != nil {
			return nil, fmt.Errorf("decode failed at step %d: %w", i, err)
		}

		// Step 4: Focus only on the last position.
		logitsLast, err := extractLastToken(logits)
		if err != nil {
			return nil, fmt.Errorf("failed to extract last token at step %d: %w", i, err)
		}

		// Step 5: Pick the vocab entry with the highest logit.
		next, err := argmax(logitsLast)
		if err != nil {
			return nil, fmt.Errorf("failed to compute argmax at step %d: %w", i, err)
		}
		if int(next.Data[0]) == eosID {
			break
		}

		// Step 6: Append the token to the running target.
		out, err = tensor.Concatenate([]*tensor.Tensor{out, next}, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to concatenate at step %d: %w", i, err)
		}
	}

	// Drop the leading BOS token.
	return out.SliceN([]int{0, 1}, []int{1, out.Shape[1]})
}

// extractLastToken extracts the logits for the last token position.
//
// Input shape: (batch, seq, vocab_size)
// Output shape: (batch, vocab_size)
func extractLastToken(logits *tensor.Tensor) (*tensor.Tensor, error) {
	if len(logits.Shape) != 3 {
		return nil, fmt.Errorf("expected 3D input (batch, seq, vocab_size), got %dD", len(logits.Shape))
	}

	batchSize := logits.Shape[0]
	seqLen := logits.Shape[1]
	vocabSize := logits.Shape[2]

	// logits[:, -1, :]
	result, err := logits.SliceN(
		[]int{0, seqLen - 1, 0},
		[]int{batchSize, seqLen, vocabSize},
	)
	if err != nil {
		return nil, err
	}

	// SliceN returns (batch, 1, vocab_size); squeeze to (batch, vocab_size).
	return result.View([]int{batchSize, vocabSize})
}

// argmax returns the index of the maximum value along the last dimension.
//
// Input shape: (batch, vocab_size)
// Output shape: (batch, 1)
func argmax(logits *tensor.Tensor) (*tensor.Tensor, error) {
	if len(logits.Shape) != 2 {
		return nil, fmt.Errorf("expected 2D input (batch, vocab_size), got %dD", len(logits.Shape))
	}

	batchSize := logits.Shape[0]
	vocabSize := logits.Shape[1]

	result := tensor.NewTensor([]int{batchSize, 1})
	for b := 0; b < batchSize; b++ {
		maxIdx := 0
		maxVal := float32(math.Inf(-1))

		for v := 0; v < vocabSize; v++ {
			val := logits.Data[b*vocabSize+v]
			if val > maxVal {
				maxVal = val
				maxIdx = v
			}
		}

		result.Data[b] = float32(maxIdx)
	}

	return result, nil
}
