package tokenizer

import (
	"bufio"
	"fmt"
	"os"
)

// Save writes the vocabulary to a file, one word per line in id order.
// The special tokens occupy the first four lines, so a saved file can be
// loaded back into a tokenizer with identical id assignments.
func (t *Tokenizer) Save(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for id, word := range t.inverseVocab {
		if _, err := fmt.Fprintln(writer, word); err != nil {
			return fmt.Errorf("failed to write token %d: %w", id, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// LoadTokenizer reads a vocabulary file written by Save. The first four
// lines must be the special tokens in their reserved order.
func LoadTokenizer(filepath string) (*Tokenizer, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary file: %w", err)
	}
	defer file.Close()

	t := NewTokenizer()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		word := scanner.Text()
		switch {
		case line < len(t.inverseVocab):
			if word != t.inverseVocab[line] {
				return nil, fmt.Errorf("line %d: expected special token %q, got %q",
					line, t.inverseVocab[line], word)
			}
		case word == "":
			return nil, fmt.Errorf("line %d: empty token", line)
		default:
			if _, ok := t.vocab[word]; ok {
				return nil, fmt.Errorf("line %d: duplicate token %q", line, word)
			}
			t.add(word)
		}
		line++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	if line < len(t.inverseVocab) {
		return nil, fmt.Errorf("vocabulary file too short: %d lines", line)
	}

	return t, nil
}
