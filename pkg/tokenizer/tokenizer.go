// Package tokenizer implements the word-level tokenization used by the
// translation model.
//
// Text is lowercased and split into word and punctuation tokens; every
// distinct token becomes one vocabulary entry. This favors transparency over
// compression: ids map one-to-one to words, which keeps encoder and decoder
// behavior easy to inspect.
//
// The first four ids are reserved for special tokens shared with the model:
// padding, begin-of-sequence, end-of-sequence and unknown.
package tokenizer

import (
	"fmt"
	"regexp"
	"strings"
)

// Reserved token ids. PadID must stay 0 so padding masks can treat id 0 as
// blocked by convention.
const (
	PadID = 0
	BosID = 1
	EosID = 2
	UnkID = 3

	PadToken = "<pad>"
	BosToken = "<bos>"
	EosToken = "<eos>"
	UnkToken = "<unk>"
)

// wordPattern matches runs of letters/digits or single punctuation marks on
// lowercased input.
const wordPattern = `[a-z0-9]+|[^a-z0-9\s]`

// Tokenizer maps words to ids and back.
type Tokenizer struct {
	// vocab maps each word to its id; inverseVocab is the reverse lookup
	// indexed by id. Ids are assigned densely in first-seen order after the
	// reserved specials.
	vocab        map[string]int
	inverseVocab []string

	pattern *regexp.Regexp
}

// NewTokenizer creates a tokenizer containing only the special tokens.
func NewTokenizer() *Tokenizer {
	pattern, err := regexp.Compile(wordPattern)
	if err != nil {
		panic(fmt.Sprintf("failed to compile word pattern: %v", err))
	}

	t := &Tokenizer{
		vocab:        make(map[string]int),
		inverseVocab: make([]string, 0, 4),
		pattern:      pattern,
	}
	for _, special := range []string{PadToken, BosToken, EosToken, UnkToken} {
		t.add(special)
	}
	return t
}

// Fit extends the vocabulary with every distinct word in the corpus, in
// first-seen order. Repeated calls keep existing assignments stable, so a
// tokenizer can be grown without invalidating previously encoded ids.
func (t *Tokenizer) Fit(corpus []string) {
	for _, text := range corpus {
		for _, word := range t.split(text) {
			t.add(word)
		}
	}
}

// VocabSize returns the number of known tokens, special tokens included.
func (t *Tokenizer) VocabSize() int {
	return len(t.inverseVocab)
}

// Encode splits text into words and maps each to its id, substituting UnkID
// for words outside the vocabulary. When addEOS is true the end-of-sequence
// id is appended.
func (t *Tokenizer) Encode(text string, addEOS bool) []int {
	words := t.split(text)
	ids := make([]int, 0, len(words)+1)
	for _, word := range words {
		if id, ok := t.vocab[word]; ok {
			ids = append(ids, id)
		} else {
			ids = append(ids, UnkID)
		}
	}
	if addEOS {
		ids = append(ids, EosID)
	}
	return ids
}

// Decode maps ids back to words and joins them with spaces. Padding and
// sequence markers are dropped; ids outside the vocabulary render as the
// unknown token.
func (t *Tokenizer) Decode(ids []int) string {
	words := make([]string, 0, len(ids))
	for _, id := range ids {
		switch {
		case id == PadID || id == BosID || id == EosID:
			continue
		case id < 0 || id >= len(t.inverseVocab):
			words = append(words, UnkToken)
		default:
			words = append(words, t.inverseVocab[id])
		}
	}
	return strings.Join(words, " ")
}

// Pad returns ids brought to exactly length n: shorter sequences gain
// trailing PadID entries, longer ones are truncated. The input is not
// modified.
func (t *Tokenizer) Pad(ids []int, n int) []int {
	result := make([]int, n)
	for i := range result {
		if i < len(ids) {
			result[i] = ids[i]
		} else {
			result[i] = PadID
		}
	}
	return result
}

// add assigns the next free id to word if it is not already known.
func (t *Tokenizer) add(word string) {
	if _, ok := t.vocab[word]; ok {
		return
	}
	t.vocab[word] = len(t.inverseVocab)
	t.inverseVocab = append(t.inverseVocab, word)
}

// split lowercases text and returns its word and punctuation tokens.
func (t *Tokenizer) split(text string) []string {
	return t.pattern.FindAllString(strings.ToLower(text), -1)
}
