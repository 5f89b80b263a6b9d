package attention

import (
	"fmt"
	"math/rand"

	"seq2seq/pkg/tensor"
)

// ConfigError reports an invalid configuration rejected at construction
// time, before any parameters are allocated.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + e.Field + ": " + e.Msg
}

// Config holds the configuration for a MultiHeadAttention layer.
type Config struct {
	EmbedDim int  // model embedding dimension
	NumHeads int  // number of attention heads; must divide EmbedDim
	UseBias  bool // add bias terms to the projections
}

// MultiHeadAttention implements multi-head attention with a single combined
// QKV projection.
//
// The query, key and value projections are stored as one (embed_dim,
// 3*embed_dim) matrix whose column blocks are, in order, query, key and
// value. Self-attention projects the input once through the whole matrix and
// splits the activations; cross-attention projects queries and keys/values
// from different inputs through the corresponding column blocks of the same
// matrix, so both paths share one set of parameters.
type MultiHeadAttention struct {
	EmbedDim int
	NumHeads int
	HeadDim  int // EmbedDim / NumHeads

	WQKV    *tensor.Tensor // (embed_dim, 3*embed_dim), column blocks q|k|v
	WOut    *tensor.Tensor // (embed_dim, embed_dim)
	BiasQKV *tensor.Tensor // (3*embed_dim), nil when bias is disabled
	BiasOut *tensor.Tensor // (embed_dim), nil when bias is disabled
}

// NewMultiHeadAttention creates a multi-head attention layer. The projection
// weights are Xavier-uniform initialized from rng and the biases, when
// enabled, start at zero. Returns a ConfigError if the embedding dimension
// is not positive or not divisible by the head count.
func NewMultiHeadAttention(cfg Config, rng *rand.Rand) (*MultiHeadAttention, error) {
	if cfg.EmbedDim <= 0 {
		return nil, &ConfigError{Field: "EmbedDim", Msg: fmt.Sprintf("must be positive, got %d", cfg.EmbedDim)}
	}
	if cfg.NumHeads <= 0 {
		return nil, &ConfigError{Field: "NumHeads", Msg: fmt.Sprintf("must be positive, got %d", cfg.NumHeads)}
	}
	if cfg.EmbedDim%cfg.NumHeads != 0 {
		return nil, &ConfigError{
			Field: "NumHeads",
			Msg:   fmt.Sprintf("embedding dimension %d is not divisible by %d heads", cfg.EmbedDim, cfg.NumHeads),
		}
	}

	m := &MultiHeadAttention{
		EmbedDim: cfg.EmbedDim,
		NumHeads: cfg.NumHeads,
		HeadDim:  cfg.EmbedDim / cfg.NumHeads,
		WQKV:     tensor.NewTensor([]int{cfg.EmbedDim, 3 * cfg.EmbedDim}),
		WOut:     tensor.NewTensor([]int{cfg.EmbedDim, cfg.EmbedDim}),
	}
	tensor.XavierUniform(m.WQKV, rng)
	tensor.XavierUniform(m.WOut, rng)

	if cfg.UseBias {
		m.BiasQKV = tensor.NewTensor([]int{3 * cfg.EmbedDim})
		m.BiasOut = tensor.NewTensor([]int{cfg.EmbedDim})
	}

	return m, nil
}

// Forward computes self-attention over x.
//
// Input shapes:
//   - x: (batch, seq, embed_dim)
//   - mask: nil, or a mask of rank 2 to 4 as accepted by ExpandMask
//
// Output shape: (batch, seq, embed_dim)
func (m *MultiHeadAttention) Forward(x, mask *tensor.Tensor) (*tensor.Tensor, error) {
	output, _, err := m.attend(x, x, mask)
	return output, err
}

// ForwardWithWeights is Forward but additionally returns the attention
// weights with shape (batch, heads, seq, seq) for inspection.
func (m *MultiHeadAttention) ForwardWithWeights(x, mask *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor, error) {
	return m.attend(x, x, mask)
}

// ForwardKV computes cross-attention: queries are projected from x while
// keys and values are projected from context. The two inputs may have
// different sequence lengths.
//
// Input shapes:
//   - x: (batch, query_len, embed_dim)
//   - context: (batch, key_len, embed_dim)
//   - mask: nil, or a mask of rank 2 to 4 as accepted by ExpandMask
//
// Output shape: (batch, query_len, embed_dim)
func (m *MultiHeadAttention) ForwardKV(x, context, mask *tensor.Tensor) (*tensor.Tensor, error) {
	output, _, err := m.attend(x, context, mask)
	return output, err
}

// attend runs the shared attention pipeline. src supplies the queries, ctx
// the keys and values; for self-attention both are the same tensor.
func (m *MultiHeadAttention) attend(src, ctx, mask *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor, error) {
	if err := m.checkInput("query input", src); err != nil {
		return nil, nil, err
	}
	if err := m.checkInput("key/value input", ctx); err != nil {
		return nil, nil, err
	}

	// Step 1: project to q, k, v through the combined matrix.
	q, k, v, err := m.projectQKV(src, ctx)
	if err != nil {
		return nil, nil, err
	}

	// Step 2: split heads, (batch, seq, embed_dim) -> (batch, heads, seq, head_dim).
	batch := src.Shape[0]
	q, err = m.splitHeads(q, batch)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split query heads: %w", err)
	}
	k, err = m.splitHeads(k, batch)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split key heads: %w", err)
	}
	v, err = m.splitHeads(v, batch)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split value heads: %w", err)
	}

	// Step 3: normalize the mask to (batch, heads, query, key) rank.
	if mask != nil {
		mask, err = ExpandMask(mask)
		if err != nil {
			return nil, nil, err
		}
	}

	// Step 4: scaled dot-product attention per head.
	attnOut, weights, err := ScaledDotProduct(q, k, v, mask)
	if err != nil {
		return nil, nil, err
	}

	// Step 5: merge heads, (batch, heads, seq, head_dim) -> (batch, seq, embed_dim).
	attnOut, err = attnOut.Transpose(1, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge heads: %w", err)
	}
	queryLen := src.Shape[1]
	attnOut = attnOut.Reshape([]int{batch, queryLen, m.EmbedDim})

	// Step 6: output projection.
	output, err := tensor.Matmul(attnOut, m.WOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply output projection: %w", err)
	}
	if m.BiasOut != nil {
		output, err = tensor.Add(output, m.BiasOut)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to add output bias: %w", err)
		}
	}

	return output, weights, nil
}

// projectQKV computes the query, key and value activations. When src and ctx
// are the same tensor, the input goes through the full combined matrix once
// and the result is chunked. Otherwise each input goes through just the
// column blocks it needs, read from the same combined matrix at call time,
// so both paths use one set of parameters.
func (m *MultiHeadAttention) projectQKV(src, ctx *tensor.Tensor) (q, k, v *tensor.Tensor, err error) {
	if src == ctx {
		qkv, err := tensor.Matmul(src, m.WQKV)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to compute qkv projection: %w", err)
		}
		if m.BiasQKV != nil {
			qkv, err = tensor.Add(qkv, m.BiasQKV)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("failed to add qkv bias: %w", err)
			}
		}
		parts, err := tensor.Chunk(qkv, 3)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to split qkv projection: %w", err)
		}
		return parts[0], parts[1], parts[2], nil
	}

	wBlocks, err := tensor.Chunk(m.WQKV, 3)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to split qkv weights: %w", err)
	}
	var bBlocks []*tensor.Tensor
	if m.BiasQKV != nil {
		bBlocks, err = tensor.Chunk(m.BiasQKV, 3)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to split qkv bias: %w", err)
		}
	}

	project := func(x, w *tensor.Tensor, bias *tensor.Tensor, name string) (*tensor.Tensor, error) {
		out, err := tensor.Matmul(x, w)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s projection: %w", name, err)
		}
		if bias != nil {
			out, err = tensor.Add(out, bias)
			if err != nil {
				return nil, fmt.Errorf("failed to add %s bias: %w", name, err)
			}
		}
		return out, nil
	}

	biasAt := func(i int) *tensor.Tensor {
		if bBlocks == nil {
			return nil
		}
		return bBlocks[i]
	}

	if q, err = project(src, wBlocks[0], biasAt(0), "query"); err != nil {
		return nil, nil, nil, err
	}
	if k, err = project(ctx, wBlocks[1], biasAt(1), "key"); err != nil {
		return nil, nil, nil, err
	}
	if v, err = project(ctx, wBlocks[2], biasAt(2), "value"); err != nil {
		return nil, nil, nil, err
	}
	return q, k, v, nil
}

// splitHeads reshapes (batch, seq, embed_dim) to (batch, heads, seq, head_dim).
func (m *MultiHeadAttention) splitHeads(x *tensor.Tensor, batch int) (*tensor.Tensor, error) {
	seqLen := x.Shape[1]
	return x.Reshape([]int{batch, seqLen, m.NumHeads, m.HeadDim}).Transpose(1, 2)
}

func (m *MultiHeadAttention) checkInput(name string, x *tensor.Tensor) error {
	if x.NumDims() != 3 {
		return &tensor.ShapeError{
			Op:  "multi-head attention",
			Msg: fmt.Sprintf("%s must be 3D (batch, seq, embed_dim), got shape %v", name, x.Shape),
		}
	}
	if x.Shape[2] != m.EmbedDim {
		return &tensor.ShapeError{
			Op:  "multi-head attention",
			Msg: fmt.Sprintf("%s embedding dimension %d does not match layer dimension %d", name, x.Shape[2], m.EmbedDim),
		}
	}
	return nil
}
