package model

import (
	"fmt"
	"math"
	"math/rand"

	"seq2seq/pkg/model/attention"
	"seq2seq/pkg/tensor"
)

// Embedding maps token ids to dense vectors via a lookup table.
//
// The table is shared with the model's output projection (weight tying):
// Transformer.Decode multiplies decoder states against this same storage to
// produce vocabulary logits, so updating Table changes both the input
// embeddings and the logits.
type Embedding struct {
	Table     *tensor.Tensor // (vocab_size, embed_dim)
	VocabSize int
	EmbedDim  int

	scale float32 // sqrt(embed_dim), applied on lookup
}

// NewEmbedding creates an embedding table initialized from N(0, 0.02).
func NewEmbedding(vocabSize, embDim int, rng *rand.Rand) (*Embedding, error) {
	if vocabSize <= 0 {
		return nil, &attention.ConfigError{Field: "VocabSize", Msg: fmt.Sprintf("must be positive, got %d", vocabSize)}
	}
	if embDim <= 0 {
		return nil, &attention.ConfigError{Field: "EmbedDim", Msg: fmt.Sprintf("must be positive, got %d", embDim)}
	}

	table := tensor.NewTensor([]int{vocabSize, embDim})
	tensor.FillNormal(table, 0, 0.02, rng)

	return &Embedding{
		Table:     table,
		VocabSize: vocabSize,
		EmbedDim:  embDim,
		scale:     float32(math.Sqrt(float64(embDim))),
	}, nil
}

// Forward looks up the embedding row for every token id and scales it by
// sqrt(embed_dim), so embeddings and positional encodings arrive at a
// comparable magnitude.
//
// Input shape: (batch, seq) of token ids
// Output shape: (batch, seq, embed_dim)
func (e *Embedding) Forward(ids *tensor.Tensor) (*tensor.Tensor, error) {
	if ids.NumDims() != 2 {
		return nil, &tensor.ShapeError{
			Op:  "embedding lookup",
			Msg: fmt.Sprintf("expected 2D token ids (batch, seq), got shape %v", ids.Shape),
		}
	}

	batchSize, seqLen := ids.Shape[0], ids.Shape[1]
	output := tensor.NewTensor([]int{batchSize, seqLen, e.EmbedDim})

	for b := 0; b < batchSize; b++ {
		for s := 0; s < seqLen; s++ {
			tokenID := int(ids.Data[b*seqLen+s])
			if tokenID < 0 || tokenID >= e.VocabSize {
				return nil, fmt.Errorf("invalid token id %d at position (%d, %d), vocab size is %d",
					tokenID, b, s, e.VocabSize)
			}

			srcOffset := tokenID * e.EmbedDim
			dstOffset := (b*seqLen + s) * e.EmbedDim
			for j := 0; j < e.EmbedDim; j++ {
				output.Data[dstOffset+j] = e.Table.Data[srcOffset+j] * e.scale
			}
		}
	}

	return output, nil
}
