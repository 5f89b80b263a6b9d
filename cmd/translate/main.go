package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"seq2seq/pkg/model"
	"seq2seq/pkg/tensor"
	"seq2seq/pkg/tokenizer"
)

// corpus is the built-in text used to fit the vocabulary when no vocabulary
// file is given. It only needs to cover the demo inputs; real runs load a
// vocabulary with -vocab.
var corpus = []string{
	"the cat sat on the mat",
	"a dog chased the cat across the yard",
	"the bird flew over the house",
	"she reads a book in the garden",
	"he writes a letter to his friend",
	"the sun rises in the east",
	"rain falls on the quiet street",
	"children play near the old bridge",
}

func main() {
	// Define command line flags
	text := flag.String("text", "the cat sat on the mat", "Source text to translate")
	maxTokens := flag.Int("max-tokens", 20, "Maximum number of tokens to generate")
	seed := flag.Int64("seed", 42, "Parameter initialization seed")
	full := flag.Bool("full", false, "Use the full-size model configuration")
	vocabPath := flag.String("vocab", "", "Load vocabulary from this file instead of the built-in corpus")
	saveVocab := flag.String("save-vocab", "", "Write the fitted vocabulary to this file")

	flag.Parse()

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("       Sequence-to-Sequence Translation")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	// Build the tokenizer
	var tok *tokenizer.Tokenizer
	if *vocabPath != "" {
		var err error
		tok, err = tokenizer.LoadTokenizer(*vocabPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading vocabulary: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded vocabulary from %s\n", *vocabPath)
	} else {
		tok = tokenizer.NewTokenizer()
		tok.Fit(corpus)
		fmt.Println("Fitted vocabulary from the built-in corpus")
	}
	fmt.Printf("Vocabulary size: %d\n", tok.VocabSize())
	fmt.Println()

	if *saveVocab != "" {
		if err := tok.Save(*saveVocab); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving vocabulary: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved vocabulary to %s\n", *saveVocab)
		fmt.Println()
	}

	// Create model configuration
	config := model.SmallConfig(tok.VocabSize())
	if *full {
		config = model.DefaultConfig(tok.VocabSize())
	}
	config.Seed = *seed
	config.BOSTokenID = tokenizer.BosID

	fmt.Printf("Model Configuration:\n")
	fmt.Printf("  Vocab Size: %d\n", config.VocabSize)
	fmt.Printf("  Max Seq Len: %d\n", config.MaxSeqLen)
	fmt.Printf("  Embedding Dim: %d\n", config.EmbedDim)
	fmt.Printf("  Num Heads: %d\n", config.NumHeads)
	fmt.Printf("  Encoder Layers: %d\n", config.NumEncoderLayers)
	fmt.Printf("  Decoder Layers: %d\n", config.NumDecoderLayers)
	fmt.Printf("  Dropout: %.1f\n", config.Dropout)
	fmt.Println()

	// Create the model
	fmt.Println("Initializing transformer...")
	transformer, err := model.NewTransformer(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating model: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Model initialized successfully!")
	fmt.Println("Note: Parameters are randomly initialized (model is untrained)")
	fmt.Println()

	// Encode the source text
	fmt.Printf("Source text: %q\n", *text)
	encoded := tok.Encode(*text, true)
	fmt.Printf("Encoded source: %v\n", encoded)
	fmt.Printf("Number of tokens: %d\n", len(encoded))
	fmt.Println()

	// Convert to tensor
	srcData := make([]float32, len(encoded))
	for i, id := range encoded {
		srcData[i] = float32(id)
	}
	src, err := tensor.FromSlice(srcData, []int{1, len(encoded)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating source tensor: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("              Translating...")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	result, err := model.Translate(transformer, src, *maxTokens, tokenizer.EosID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error translating: %v\n", err)
		os.Exit(1)
	}

	// Convert result to token ids
	outputTokens := make([]int, result.Shape[1])
	for i := range outputTokens {
		outputTokens[i] = int(result.Data[i])
	}
	outputText := tok.Decode(outputTokens)

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                Output")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()
	fmt.Printf("Generated tokens: %v\n", outputTokens)
	fmt.Printf("Translated text:\n%s\n", outputText)
	fmt.Println()

	// Print statistics
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("              Statistics")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("  Source tokens:    %d\n", len(encoded))
	fmt.Printf("  Generated tokens: %d\n", len(outputTokens))
}
