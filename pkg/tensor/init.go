package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// XavierUniform fills a 2D weight tensor in place with samples from
// U(-limit, limit) where limit = sqrt(6 / (fanIn + fanOut)). The fan sizes
// are taken from the tensor's shape (fanIn, fanOut).
func XavierUniform(t *Tensor, rng *rand.Rand) {
	if len(t.Shape) != 2 {
		panic(fmt.Sprintf("xavier init requires a 2D weight tensor, got shape %v", t.Shape))
	}

	fanIn, fanOut := t.Shape[0], t.Shape[1]
	limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))

	for i := range t.Data {
		t.Data[i] = (rng.Float32()*2 - 1) * limit
	}
}

// FillNormal fills a tensor in place with samples from N(mean, std).
func FillNormal(t *Tensor, mean, std float32, rng *rand.Rand) {
	for i := range t.Data {
		t.Data[i] = float32(rng.NormFloat64())*std + mean
	}
}
