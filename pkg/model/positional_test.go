package model

import (
	"errors"
	"math"
	"strings"
	"testing"

	"seq2seq/pkg/model/attention"
	"seq2seq/pkg/tensor"
)

// TestNewPositionalEncoding_Validation tests construction checks.
func TestNewPositionalEncoding_Validation(t *testing.T) {
	pe, err := NewPositionalEncoding(4, 8)
	if err != nil {
		t.Fatalf("NewPositionalEncoding failed: %v", err)
	}
	if !shapeOf(pe.Table, 8, 4) {
		t.Errorf("Expected table shape (8, 4), got %v", pe.Table.Shape)
	}

	_, err = NewPositionalEncoding(0, 8)
	var cfgErr *attention.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *attention.ConfigError, got %T", err)
	}
	if cfgErr.Field != "EmbedDim" {
		t.Errorf("Expected Field 'EmbedDim', got %q", cfgErr.Field)
	}

	_, err = NewPositionalEncoding(4, 0)
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *attention.ConfigError, got %T", err)
	}
	if cfgErr.Field != "MaxSeqLen" {
		t.Errorf("Expected Field 'MaxSeqLen', got %q", cfgErr.Field)
	}
}

// TestPositionalEncoding_KnownValues tests table entries against the
// sinusoid formula.
func TestPositionalEncoding_KnownValues(t *testing.T) {
	pe, err := NewPositionalEncoding(4, 8)
	if err != nil {
		t.Fatalf("NewPositionalEncoding failed: %v", err)
	}

	// Position 0: sin(0)=0 at even dims, cos(0)=1 at odd dims, exactly.
	row0 := pe.Row(0)
	for i, v := range row0 {
		expected := float32(0)
		if i%2 == 1 {
			expected = 1
		}
		if v != expected {
			t.Errorf("Row(0)[%d] = %f, expected %f", i, v, expected)
		}
	}

	// Position 1: dim pair 0 oscillates at frequency 1, dim pair 2 at
	// 10000^(-1/2) = 0.01.
	row1 := pe.Row(1)
	expected := []float32{0.8414710, 0.5403023, 0.0099998, 0.9999500}
	for i, want := range expected {
		if math.Abs(float64(row1[i]-want)) > 1e-5 {
			t.Errorf("Row(1)[%d] = %f, expected %f", i, row1[i], want)
		}
	}

	// Rows differ between positions.
	row2 := pe.Row(2)
	same := true
	for i := range row1 {
		if row1[i] != row2[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Expected distinct encodings for positions 1 and 2")
	}

	// Row returns a copy, not a view into the table.
	row1[0] = -99
	if pe.Table.Get([]int{1, 0}) == -99 {
		t.Error("Row should copy the table data")
	}
}

// TestPositionalEncoding_OddDimension tests the interleaving guard when
// embed_dim is odd and the last sine has no cosine partner.
func TestPositionalEncoding_OddDimension(t *testing.T) {
	pe, err := NewPositionalEncoding(3, 4)
	if err != nil {
		t.Fatalf("NewPositionalEncoding failed: %v", err)
	}
	if !shapeOf(pe.Table, 4, 3) {
		t.Fatalf("Expected table shape (4, 3), got %v", pe.Table.Shape)
	}

	// freq for the trailing dim is 10000^(-2/3).
	row1 := pe.Row(1)
	freq := math.Exp(-math.Log(10000.0) * 2.0 / 3.0)
	expected := []float32{
		float32(math.Sin(1)),
		float32(math.Cos(1)),
		float32(math.Sin(freq)),
	}
	for i, want := range expected {
		if math.Abs(float64(row1[i]-want)) > 1e-6 {
			t.Errorf("Row(1)[%d] = %f, expected %f", i, row1[i], want)
		}
	}
}

// TestPositionalEncoding_Forward tests that position rows are added across
// the whole batch.
func TestPositionalEncoding_Forward(t *testing.T) {
	pe, err := NewPositionalEncoding(4, 8)
	if err != nil {
		t.Fatalf("NewPositionalEncoding failed: %v", err)
	}

	// Zero input makes the output equal the table rows for every batch.
	x := tensor.NewTensor([]int{2, 3, 4})
	output, err := pe.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if !output.ShapeEquals(x) {
		t.Fatalf("Expected shape %v, got %v", x.Shape, output.Shape)
	}

	for b := 0; b < 2; b++ {
		for s := 0; s < 3; s++ {
			for d := 0; d < 4; d++ {
				got := output.Get([]int{b, s, d})
				want := pe.Table.Get([]int{s, d})
				if got != want {
					t.Errorf("Output[%d,%d,%d] = %f, expected %f", b, s, d, got, want)
				}
			}
		}
	}
}

// TestPositionalEncoding_ForwardValidation tests input shape checks.
func TestPositionalEncoding_ForwardValidation(t *testing.T) {
	pe, err := NewPositionalEncoding(4, 8)
	if err != nil {
		t.Fatalf("NewPositionalEncoding failed: %v", err)
	}

	tests := []struct {
		name      string
		shape     []int
		errString string
	}{
		{
			name:      "2d_input",
			shape:     []int{3, 4},
			errString: "expected 3D input",
		},
		{
			name:      "wrong_embed_dim",
			shape:     []int{1, 3, 8},
			errString: "embedding dimension 8 does not match table dimension 4",
		},
		{
			name:      "sequence_too_long",
			shape:     []int{1, 9, 4},
			errString: "sequence length 9 exceeds maximum 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pe.Forward(tensor.NewTensor(tt.shape))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errString) {
				t.Errorf("Expected error containing %q, got %q", tt.errString, err.Error())
			}

			var shapeErr *tensor.ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("Expected *tensor.ShapeError, got %T", err)
			}
			if shapeErr.Op != "positional encoding" {
				t.Errorf("Expected Op 'positional encoding', got %q", shapeErr.Op)
			}
		})
	}
}
