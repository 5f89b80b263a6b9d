// Package tensor provides the numeric array substrate for the transformer
// implementation: an N-dimensional float32 tensor with the operations the
// attention computation needs (batched matrix multiplication, softmax,
// broadcasting elementwise arithmetic, mask fill).
//
// Shapes follow the (batch, heads, seq, feature) layout used throughout the
// model packages; most operations accept any rank and treat the trailing
// axes as the matrix part.
package tensor

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// ShapeError reports a violated shape precondition: mismatched axes between
// operands, an unsupported rank, or a range outside a dimension. Operations
// return it before touching any data, so a failed call has no partial result.
type ShapeError struct {
	Op  string // operation that rejected its inputs
	Msg string
}

func (e *ShapeError) Error() string {
	return e.Op + ": " + e.Msg
}

func shapeErrorf(op, format string, args ...interface{}) *ShapeError {
	return &ShapeError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Tensor represents a multi-dimensional array of float32 values.
// It stores data in a flat slice with shape information for indexing.
type Tensor struct {
	Data    []float32 // Flattened data storage
	Shape   []int     // Dimensions (e.g., [batch, heads, seq, dim])
	Strides []int     // Precomputed strides for indexing
}

// NewTensor creates a new tensor with the given shape, initialized to zeros.
func NewTensor(shape []int) *Tensor {
	size := 1
	for _, dim := range shape {
		size *= dim
	}

	return &Tensor{
		Data:    make([]float32, size),
		Shape:   copyShape(shape),
		Strides: computeStrides(shape),
	}
}

// FromSlice creates a tensor from existing data with the given shape.
// Returns an error if data size doesn't match the shape.
func FromSlice(data []float32, shape []int) (*Tensor, error) {
	expectedSize := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, shapeErrorf("from slice", "invalid dimension %d in shape %v", dim, shape)
		}
		expectedSize *= dim
	}
	if len(data) != expectedSize {
		return nil, shapeErrorf("from slice", "data size %d does not match shape %v (expected %d elements)",
			len(data), shape, expectedSize)
	}

	dataCopy := make([]float32, len(data))
	copy(dataCopy, data)

	return &Tensor{
		Data:    dataCopy,
		Shape:   copyShape(shape),
		Strides: computeStrides(shape),
	}, nil
}

// NewTensorFromData creates a tensor from existing data with the given shape.
// It copies the data to ensure the tensor owns its memory, and panics on a
// size mismatch; use FromSlice when the caller should handle the error.
func NewTensorFromData(data []float32, shape []int) *Tensor {
	t, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// View returns a new tensor with a different shape but sharing the same
// underlying data. Returns an error if total size doesn't match.
func (t *Tensor) View(newShape []int) (*Tensor, error) {
	newSize := 1
	for _, dim := range newShape {
		if dim < 0 {
			return nil, shapeErrorf("view", "invalid dimension %d in shape %v", dim, newShape)
		}
		newSize *= dim
	}

	if newSize != len(t.Data) {
		return nil, shapeErrorf("view", "cannot view tensor of size %d as shape %v (total size %d)",
			len(t.Data), newShape, newSize)
	}

	return &Tensor{
		Data:    t.Data,
		Shape:   copyShape(newShape),
		Strides: computeStrides(newShape),
	}, nil
}

// Reshape returns a view with a different shape (same underlying data).
// It panics where View would return an error.
func (t *Tensor) Reshape(newShape []int) *Tensor {
	result, err := t.View(newShape)
	if err != nil {
		panic(err)
	}
	return result
}

// Transpose exchanges two dimensions of the tensor, copying the data into
// the new layout.
func (t *Tensor) Transpose(dim1, dim2 int) (*Tensor, error) {
	if dim1 < 0 || dim1 >= len(t.Shape) || dim2 < 0 || dim2 >= len(t.Shape) {
		return nil, shapeErrorf("transpose", "invalid dimensions %d and %d for tensor with %d dimensions",
			dim1, dim2, len(t.Shape))
	}

	if dim1 == dim2 {
		return t.Clone(), nil
	}

	newShape := copyShape(t.Shape)
	newShape[dim1], newShape[dim2] = newShape[dim2], newShape[dim1]
	result := NewTensor(newShape)

	srcIndices := make([]int, len(t.Shape))
	dstIndices := make([]int, len(t.Shape))
	var walk func(pos int)
	walk = func(pos int) {
		if pos == len(t.Shape) {
			copy(dstIndices, srcIndices)
			dstIndices[dim1], dstIndices[dim2] = dstIndices[dim2], dstIndices[dim1]
			result.Data[result.FlatIndex(dstIndices)] = t.Data[t.FlatIndex(srcIndices)]
			return
		}
		for i := 0; i < t.Shape[pos]; i++ {
			srcIndices[pos] = i
			walk(pos + 1)
		}
	}
	walk(0)

	return result, nil
}

// Size returns the total number of elements in the tensor.
func (t *Tensor) Size() int {
	size := 1
	for _, dim := range t.Shape {
		size *= dim
	}
	return size
}

// NumDims returns the number of dimensions (rank) of the tensor.
func (t *Tensor) NumDims() int {
	return len(t.Shape)
}

// FlatIndex converts multi-dimensional indices to a flat index.
func (t *Tensor) FlatIndex(indices []int) int {
	if len(indices) != len(t.Shape) {
		panic(fmt.Sprintf("indices length %d does not match shape dimensions %d",
			len(indices), len(t.Shape)))
	}

	idx := 0
	for i := 0; i < len(t.Shape); i++ {
		if indices[i] < 0 || indices[i] >= t.Shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d with size %d",
				indices[i], i, t.Shape[i]))
		}
		idx += indices[i] * t.Strides[i]
	}
	return idx
}

// Get retrieves a value at the specified indices.
func (t *Tensor) Get(indices []int) float32 {
	return t.Data[t.FlatIndex(indices)]
}

// Set sets a value at the specified indices.
func (t *Tensor) Set(indices []int, value float32) {
	t.Data[t.FlatIndex(indices)] = value
}

// GetFlat retrieves a value at a flat index.
func (t *Tensor) GetFlat(idx int) float32 {
	if idx < 0 || idx >= len(t.Data) {
		panic(fmt.Sprintf("flat index %d out of bounds [0, %d)", idx, len(t.Data)))
	}
	return t.Data[idx]
}

// SetFlat sets a value at a flat index.
func (t *Tensor) SetFlat(idx int, value float32) {
	if idx < 0 || idx >= len(t.Data) {
		panic(fmt.Sprintf("flat index %d out of bounds [0, %d)", idx, len(t.Data)))
	}
	t.Data[idx] = value
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	return NewTensorFromData(t.Data, t.Shape)
}

// SliceN extracts a sub-tensor from the given ranges for all dimensions.
// The result owns its data.
func (t *Tensor) SliceN(starts, ends []int) (*Tensor, error) {
	if len(starts) != len(t.Shape) || len(ends) != len(t.Shape) {
		return nil, shapeErrorf("slice", "starts and ends must have same length as tensor dimensions (%d), got %d and %d",
			len(t.Shape), len(starts), len(ends))
	}

	newShape := make([]int, len(t.Shape))
	for i := 0; i < len(t.Shape); i++ {
		if starts[i] < 0 || starts[i] > t.Shape[i] {
			return nil, shapeErrorf("slice", "invalid start index %d for dimension %d with size %d", starts[i], i, t.Shape[i])
		}
		if ends[i] < starts[i] || ends[i] > t.Shape[i] {
			return nil, shapeErrorf("slice", "invalid end index %d for dimension %d (start=%d, size=%d)", ends[i], i, starts[i], t.Shape[i])
		}
		newShape[i] = ends[i] - starts[i]
	}

	result := NewTensor(newShape)

	srcIndices := make([]int, len(t.Shape))
	dstIndices := make([]int, len(t.Shape))
	var copyData func(dim int)
	copyData = func(dim int) {
		if dim == len(t.Shape) {
			result.Data[result.FlatIndex(dstIndices)] = t.Data[t.FlatIndex(srcIndices)]
			return
		}
		for i := 0; i < newShape[dim]; i++ {
			srcIndices[dim] = starts[dim] + i
			dstIndices[dim] = i
			copyData(dim + 1)
		}
	}
	copyData(0)

	return result, nil
}

// Chunk splits the tensor into n equal parts along the last axis, in order.
// Each part owns its data. Returns an error if the last axis is not evenly
// divisible by n.
func Chunk(t *Tensor, n int) ([]*Tensor, error) {
	if len(t.Shape) == 0 {
		return nil, shapeErrorf("chunk", "cannot chunk a scalar tensor")
	}
	last := t.Shape[len(t.Shape)-1]
	if n <= 0 || last%n != 0 {
		return nil, shapeErrorf("chunk", "cannot split axis of size %d into %d equal parts", last, n)
	}

	part := last / n
	rows := len(t.Data) / last

	parts := make([]*Tensor, n)
	for c := 0; c < n; c++ {
		shape := copyShape(t.Shape)
		shape[len(shape)-1] = part
		out := NewTensor(shape)
		for r := 0; r < rows; r++ {
			copy(out.Data[r*part:(r+1)*part], t.Data[r*last+c*part:r*last+(c+1)*part])
		}
		parts[c] = out
	}

	return parts, nil
}

// Matmul performs matrix multiplication on the last two dimensions.
// For tensors of shape (..., m, n) and (..., n, p), returns (..., m, p);
// the leading batch dimensions must agree. If one operand is 2D and the
// other 3D, the 2D operand is broadcast over the batch.
func Matmul(a, b *Tensor) (*Tensor, error) {
	if len(a.Shape) < 2 || len(b.Shape) < 2 {
		return nil, shapeErrorf("matmul", "requires at least 2D tensors, got %dD and %dD",
			len(a.Shape), len(b.Shape))
	}

	kA := a.Shape[len(a.Shape)-1]
	kB := b.Shape[len(b.Shape)-2]
	if kA != kB {
		return nil, shapeErrorf("matmul", "incompatible shapes %v and %v (inner dimensions %d and %d don't match)",
			a.Shape, b.Shape, kA, kB)
	}

	if len(a.Shape) == 2 && len(b.Shape) == 3 {
		return matmul2D3D(a, b)
	}
	if len(a.Shape) == 3 && len(b.Shape) == 2 {
		return matmul3D2D(a, b)
	}

	return matmulBatched(a, b)
}

// matmul3D2D handles (batch, m, n) @ (n, p) -> (batch, m, p)
func matmul3D2D(a, b *Tensor) (*Tensor, error) {
	batch, m, n := a.Shape[0], a.Shape[1], a.Shape[2]
	p := b.Shape[1]

	result := NewTensor([]int{batch, m, p})
	for bi := 0; bi < batch; bi++ {
		matmulSlab(result.Data[bi*m*p:(bi+1)*m*p], a.Data[bi*m*n:(bi+1)*m*n], b.Data, m, n, p)
	}
	return result, nil
}

// matmul2D3D handles (m, n) @ (batch, n, p) -> (batch, m, p)
func matmul2D3D(a, b *Tensor) (*Tensor, error) {
	m, n := a.Shape[0], a.Shape[1]
	batch, p := b.Shape[0], b.Shape[2]

	result := NewTensor([]int{batch, m, p})
	for bi := 0; bi < batch; bi++ {
		matmulSlab(result.Data[bi*m*p:(bi+1)*m*p], a.Data, b.Data[bi*n*p:(bi+1)*n*p], m, n, p)
	}
	return result, nil
}

// matmulBatched handles same-rank batched matrix multiplication. The batch
// slabs are independent, so each runs on its own goroutine.
func matmulBatched(a, b *Tensor) (*Tensor, error) {
	if len(a.Shape) != len(b.Shape) {
		return nil, shapeErrorf("matmul", "rank mismatch between %v and %v", a.Shape, b.Shape)
	}

	m := a.Shape[len(a.Shape)-2]
	n := a.Shape[len(a.Shape)-1]
	p := b.Shape[len(b.Shape)-1]

	batchDims := a.Shape[:len(a.Shape)-2]
	batchSize := 1
	for i, dim := range batchDims {
		if b.Shape[i] != dim {
			return nil, shapeErrorf("matmul", "batch dimensions of %v and %v don't match", a.Shape, b.Shape)
		}
		batchSize *= dim
	}

	resultShape := append([]int{}, batchDims...)
	resultShape = append(resultShape, m, p)
	result := NewTensor(resultShape)

	if batchSize <= 1 {
		matmulSlab(result.Data, a.Data, b.Data, m, n, p)
		return result, nil
	}

	var wg sync.WaitGroup
	wg.Add(batchSize)
	for batch := 0; batch < batchSize; batch++ {
		go func(batch int) {
			defer wg.Done()
			matmulSlab(
				result.Data[batch*m*p:(batch+1)*m*p],
				a.Data[batch*m*n:(batch+1)*m*n],
				b.Data[batch*n*p:(batch+1)*n*p],
				m, n, p,
			)
		}(batch)
	}
	wg.Wait()

	return result, nil
}

// matmulSlab computes one (m, n) @ (n, p) product into dst.
func matmulSlab(dst, a, b []float32, m, n, p int) {
	for i := 0; i < m; i++ {
		for k := 0; k < p; k++ {
			var sum float32
			for j := 0; j < n; j++ {
				sum += a[i*n+j] * b[j*p+k]
			}
			dst[i*p+k] = sum
		}
	}
}

// MatmulTransposed computes a @ bᵀ for a of shape (..., m, k) and b of shape
// (n, k), returning (..., m, n). The transpose is implicit: b's rows are read
// as columns without materializing a transposed copy, so b's storage stays
// shared with whoever else holds it.
func MatmulTransposed(a, b *Tensor) (*Tensor, error) {
	if len(a.Shape) < 2 || len(b.Shape) != 2 {
		return nil, shapeErrorf("matmul transposed", "requires (..., m, k) and (n, k) operands, got %v and %v",
			a.Shape, b.Shape)
	}

	k := a.Shape[len(a.Shape)-1]
	if b.Shape[1] != k {
		return nil, shapeErrorf("matmul transposed", "incompatible shapes %v and %v (inner dimensions %d and %d don't match)",
			a.Shape, b.Shape, k, b.Shape[1])
	}
	n := b.Shape[0]

	rows := len(a.Data) / k
	shape := copyShape(a.Shape)
	shape[len(shape)-1] = n
	result := NewTensor(shape)

	for r := 0; r < rows; r++ {
		aRow := a.Data[r*k : (r+1)*k]
		for j := 0; j < n; j++ {
			bRow := b.Data[j*k : (j+1)*k]
			var sum float32
			for i := range aRow {
				sum += aRow[i] * bRow[i]
			}
			result.Data[r*n+j] = sum
		}
	}

	return result, nil
}

// Scale multiplies all elements by a scalar.
func Scale(t *Tensor, scalar float32) *Tensor {
	result := NewTensor(t.Shape)
	for i := range t.Data {
		result.Data[i] = t.Data[i] * scalar
	}
	return result
}

// Scale multiplies all elements by a scalar (tensor method version).
func (t *Tensor) Scale(s float32) *Tensor {
	return Scale(t, s)
}

// Softmax normalizes the tensor to a probability distribution along the
// specified dimension, with the usual max subtraction for numerical
// stability. Each slice along dim sums to 1.
func Softmax(t *Tensor, dim int) (*Tensor, error) {
	if dim < 0 || dim >= len(t.Shape) {
		return nil, shapeErrorf("softmax", "invalid dimension %d for tensor with %d dimensions", dim, len(t.Shape))
	}

	size := t.Shape[dim]
	inner := 1
	for i := dim + 1; i < len(t.Shape); i++ {
		inner *= t.Shape[i]
	}
	outer := len(t.Data) / (size * inner)

	result := NewTensor(t.Shape)
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in

			maxVal := float32(math.Inf(-1))
			for i := 0; i < size; i++ {
				if v := t.Data[base+i*inner]; v > maxVal {
					maxVal = v
				}
			}

			var expSum float32
			for i := 0; i < size; i++ {
				e := float32(math.Exp(float64(t.Data[base+i*inner] - maxVal)))
				result.Data[base+i*inner] = e
				expSum += e
			}

			for i := 0; i < size; i++ {
				result.Data[base+i*inner] /= expSum
			}
		}
	}

	return result, nil
}

// SoftmaxLast applies softmax along the last dimension (convenience function).
func SoftmaxLast(t *Tensor) *Tensor {
	result, err := Softmax(t, len(t.Shape)-1)
	if err != nil {
		panic(err)
	}
	return result
}

// Add performs element-wise addition with broadcasting.
func Add(a, b *Tensor) (*Tensor, error) {
	return elementWiseOp("add", a, b, func(x, y float32) float32 { return x + y })
}

// Mul performs element-wise multiplication with broadcasting.
func Mul(a, b *Tensor) (*Tensor, error) {
	return elementWiseOp("mul", a, b, func(x, y float32) float32 { return x * y })
}

// elementWiseOp performs an element-wise operation with broadcasting.
func elementWiseOp(op string, a, b *Tensor, fn func(float32, float32) float32) (*Tensor, error) {
	outShape, err := broadcastShapes(a.Shape, b.Shape)
	if err != nil {
		return nil, shapeErrorf(op, "cannot broadcast shapes %v and %v: %v", a.Shape, b.Shape, err)
	}

	result := NewTensor(outShape)

	indices := make([]int, len(outShape))
	var iterate func(dim int)
	iterate = func(dim int) {
		if dim == len(outShape) {
			aVal := a.Data[broadcastIndex(indices, outShape, a.Shape)]
			bVal := b.Data[broadcastIndex(indices, outShape, b.Shape)]
			result.Data[result.FlatIndex(indices)] = fn(aVal, bVal)
			return
		}
		for i := 0; i < outShape[dim]; i++ {
			indices[dim] = i
			iterate(dim + 1)
		}
	}
	iterate(0)

	return result, nil
}

// broadcastShapes computes the broadcasted shape of two shapes.
func broadcastShapes(a, b []int) ([]int, error) {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	result := make([]int, maxLen)
	for i := 0; i < maxLen; i++ {
		dimA := 1
		if i < len(a) {
			dimA = a[len(a)-1-i]
		}
		dimB := 1
		if i < len(b) {
			dimB = b[len(b)-1-i]
		}

		if dimA != dimB && dimA != 1 && dimB != 1 {
			return nil, fmt.Errorf("incompatible dimensions %d and %d", dimA, dimB)
		}

		if dimA > dimB {
			result[maxLen-1-i] = dimA
		} else {
			result[maxLen-1-i] = dimB
		}
	}

	return result, nil
}

// broadcastIndex maps output indices to the flat index of a broadcast
// operand. inShape must already be broadcast-compatible with outShape.
func broadcastIndex(outIndices []int, outShape, inShape []int) int {
	if len(inShape) == 0 {
		return 0
	}

	diff := len(outShape) - len(inShape)
	strides := computeStrides(inShape)

	idx := 0
	for i := 0; i < len(inShape); i++ {
		// inShape[i] == 1 broadcasts: the index stays 0 along that axis.
		if inShape[i] == outShape[i+diff] {
			idx += outIndices[i+diff] * strides[i]
		}
	}
	return idx
}

// MaskedFill returns a copy of t where every position whose broadcast-matched
// mask entry equals 0 is replaced by value. The mask's rank may be lower than
// t's; missing leading axes and axes of size 1 broadcast.
func MaskedFill(t, mask *Tensor, value float32) (*Tensor, error) {
	if len(mask.Shape) > len(t.Shape) {
		return nil, shapeErrorf("masked fill", "mask rank %d exceeds tensor rank %d", len(mask.Shape), len(t.Shape))
	}
	diff := len(t.Shape) - len(mask.Shape)
	for i, dim := range mask.Shape {
		if dim != 1 && dim != t.Shape[i+diff] {
			return nil, shapeErrorf("masked fill", "mask shape %v is not broadcastable to %v", mask.Shape, t.Shape)
		}
	}

	result := NewTensor(t.Shape)
	copy(result.Data, t.Data)

	indices := make([]int, len(t.Shape))
	var walk func(dim int)
	walk = func(dim int) {
		if dim == len(t.Shape) {
			if mask.Data[broadcastIndex(indices, t.Shape, mask.Shape)] == 0 {
				result.Data[result.FlatIndex(indices)] = value
			}
			return
		}
		for i := 0; i < t.Shape[dim]; i++ {
			indices[dim] = i
			walk(dim + 1)
		}
	}
	walk(0)

	return result, nil
}

// Concatenate concatenates tensors along a dimension. All shapes must agree
// outside the concatenation axis.
func Concatenate(tensors []*Tensor, dim int) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, shapeErrorf("concatenate", "cannot concatenate empty list of tensors")
	}
	if dim < 0 || dim >= len(tensors[0].Shape) {
		return nil, shapeErrorf("concatenate", "invalid dimension %d for tensor with %d dimensions", dim, len(tensors[0].Shape))
	}

	outShape := copyShape(tensors[0].Shape)
	concatSize := tensors[0].Shape[dim]
	for i := 1; i < len(tensors); i++ {
		t := tensors[i]
		if len(t.Shape) != len(outShape) {
			return nil, shapeErrorf("concatenate", "tensor %d has %d dimensions, expected %d", i, len(t.Shape), len(outShape))
		}
		for j := 0; j < len(outShape); j++ {
			if j == dim {
				continue
			}
			if t.Shape[j] != outShape[j] {
				return nil, shapeErrorf("concatenate", "tensor %d has shape %v, incompatible with %v at dimension %d", i, t.Shape, outShape, j)
			}
		}
		concatSize += t.Shape[dim]
	}
	outShape[dim] = concatSize

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= outShape[i]
	}
	inner := 1
	for i := dim + 1; i < len(outShape); i++ {
		inner *= outShape[i]
	}

	result := NewTensor(outShape)
	rowLen := concatSize * inner

	offset := 0
	for _, t := range tensors {
		chunk := t.Shape[dim] * inner
		for o := 0; o < outer; o++ {
			copy(result.Data[o*rowLen+offset:o*rowLen+offset+chunk], t.Data[o*chunk:(o+1)*chunk])
		}
		offset += chunk
	}

	return result, nil
}

// Equals checks if two tensors have the same shape and approximately equal values.
func (t *Tensor) Equals(other *Tensor, tolerance float32) bool {
	if !t.ShapeEquals(other) {
		return false
	}
	for i := range t.Data {
		if math.Abs(float64(t.Data[i]-other.Data[i])) > float64(tolerance) {
			return false
		}
	}
	return true
}

// ShapeEquals checks if two tensors have the same shape.
func (t *Tensor) ShapeEquals(other *Tensor) bool {
	if len(t.Shape) != len(other.Shape) {
		return false
	}
	for i := range t.Shape {
		if t.Shape[i] != other.Shape[i] {
			return false
		}
	}
	return true
}

// ShapeString returns a string representation of the shape.
func (t *Tensor) ShapeString() string {
	return fmt.Sprintf("%v", t.Shape)
}

// String returns a truncated string representation of the tensor.
func (t *Tensor) String() string {
	var sb strings.Builder
	sb.WriteString("Tensor[")
	for i, dim := range t.Shape {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", dim))
	}
	sb.WriteString("]: ")
	sb.WriteString(t.formatData(t.Shape, t.Data, 0))
	return sb.String()
}

// formatData recursively formats tensor data, truncating long axes.
func (t *Tensor) formatData(shape []int, data []float32, offset int) string {
	if len(shape) == 0 {
		return fmt.Sprintf("%g", data[offset])
	}

	if len(shape) == 1 {
		var sb strings.Builder
		sb.WriteString("[")
		for i := 0; i < shape[0] && i < 6; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%g", data[offset+i]))
		}
		if shape[0] > 6 {
			sb.WriteString(", ...")
		}
		sb.WriteString("]")
		return sb.String()
	}

	var sb strings.Builder
	sb.WriteString("[")
	subSize := 1
	for i := 1; i < len(shape); i++ {
		subSize *= shape[i]
	}
	for i := 0; i < shape[0] && i < 3; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.formatData(shape[1:], data, offset+i*subSize))
	}
	if shape[0] > 3 {
		sb.WriteString(", ...")
	}
	sb.WriteString("]")
	return sb.String()
}

// copyShape creates a copy of a shape slice.
func copyShape(shape []int) []int {
	result := make([]int, len(shape))
	copy(result, shape)
	return result
}

// computeStrides returns row-major strides for a shape.
func computeStrides(shape []int) []int {
	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}
